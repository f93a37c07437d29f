package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Publication status values for a listing. A listing starts published and
// can only move to unpublished; there is currently no reverse transition.
const (
	StatusPublished   = "published"
	StatusUnpublished = "unpublished"
)

// Price is the monetary value of a listing. Amount is kept as a decimal
// string to avoid float rounding on currencies.
type Price struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// UnmarshalJSON accepts the amount as either a JSON string or a number;
// the remote API is not consistent about which one it sends.
func (p *Price) UnmarshalJSON(data []byte) error {
	var raw struct {
		Amount       any    `json:"amount"`
		CurrencyCode string `json:"currency_code"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.Amount.(type) {
	case string:
		p.Amount = v
	case float64:
		p.Amount = strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		p.Amount = ""
	default:
		return fmt.Errorf("unsupported price amount type %T", v)
	}
	p.CurrencyCode = raw.CurrencyCode

	return nil
}

// Photo describes one remote image of a listing.
// FullSizeURL is preferred for downloads, URL is the thumbnail fallback.
type Photo struct {
	URL         string `json:"url"`
	FullSizeURL string `json:"full_size_url,omitempty"`
}

// Photos is the ordered photo sequence of a listing. The slice index is
// significant: it is the blob key for the stored image bytes.
type Photos []Photo

// Listing represents one remote marketplace item plus local tracking fields.
// It is the unit of persistence in the vault.
type Listing struct {
	// LocalID is the engine-assigned primary key, never reassigned.
	LocalID string `gorm:"column:local_id;primaryKey" json:"localId"`
	// ExternalID is the remote platform's identifier. NULL for records that
	// were never published remotely or whose remote copy was deleted.
	ExternalID *string `gorm:"column:external_id;uniqueIndex" json:"externalId,omitempty"`

	Title       string `gorm:"column:title" json:"title"`
	Description string `gorm:"column:description" json:"description"`
	Price       Price  `gorm:"column:price;serializer:json" json:"price"`
	Photos      Photos `gorm:"column:photos;serializer:json" json:"photos"`

	URL            string `gorm:"column:url" json:"url,omitempty"`
	Size           string `gorm:"column:size" json:"size,omitempty"`
	Brand          string `gorm:"column:brand" json:"brand,omitempty"`
	ViewCount      int    `gorm:"column:view_count" json:"viewCount"`
	FavouriteCount int    `gorm:"column:favourite_count" json:"favouriteCount"`

	// CreatedAtRemote is the remote creation time, normalized to epoch millis.
	CreatedAtRemote int64 `gorm:"column:created_at_remote" json:"createdAtRemote"`
	// AddedAt is the epoch millis when the record was first created locally.
	AddedAt int64 `gorm:"column:added_at" json:"addedAt"`
	// UpdatedAt is the epoch millis of the last merge, nil until the first one.
	UpdatedAt *int64 `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt,omitempty"`

	PublicationStatus string `gorm:"column:publication_status" json:"publicationStatus"`
	// DeletionDate is set only when the status becomes unpublished.
	DeletionDate *int64 `gorm:"column:deletion_date" json:"deletionDate,omitempty"`
}

// TableName overrides the table name.
func (Listing) TableName() string {
	return "listings"
}

// ImageBlob holds the downloaded bytes of one listing photo, keyed by the
// structured pair (listing, photo index). A blob never outlives its listing.
type ImageBlob struct {
	ListingID   string `gorm:"column:listing_id;primaryKey"`
	PhotoIndex  int    `gorm:"column:photo_index;primaryKey"`
	ContentType string `gorm:"column:content_type"`
	Data        []byte `gorm:"column:data"`
}

// TableName overrides the table name.
func (ImageBlob) TableName() string {
	return "image_blobs"
}
