package archive

// Config holds configuration for archive export/import.
type Config struct {
	// Dir is the local directory exported archives are written to.
	Dir string `mapstructure:"dir" default:"exports"`
	// Upload enables uploading exported archives to object storage. The
	// returned artifact handle is then an s3:// URL instead of a file path.
	Upload bool `mapstructure:"upload" default:"false"`
}
