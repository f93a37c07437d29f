package extraction

// Config holds configuration for the remote marketplace account.
type Config struct {
	// BaseURL is the marketplace root URL.
	BaseURL string `mapstructure:"base_url" default:"https://www.vinted.fr"`
	// UserID is the remote account id whose listings are extracted.
	UserID string `mapstructure:"user_id" default:""`
	// SessionCookie is the name of the session cookie.
	SessionCookie string `mapstructure:"session_cookie" default:"_vinted_fr_session"`
	// SessionToken is the value of the session cookie.
	SessionToken string `mapstructure:"session_token" default:""`
	// CSRFToken is sent as x-csrf-token on mutating calls.
	CSRFToken string `mapstructure:"csrf_token" default:""`
	// AnonID is sent as x-anon-id on mutating calls.
	AnonID string `mapstructure:"anon_id" default:""`
	// PerPage is the page size requested from the listings endpoint.
	PerPage int `mapstructure:"per_page" default:"20"`
	// TimeoutSeconds is the HTTP client timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
