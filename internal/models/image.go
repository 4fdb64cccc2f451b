package models

import "time"

// ServiceImage is one picture in a service's gallery.
type ServiceImage struct {
	ID           string    `json:"id" bson:"id"`
	URL          string    `json:"url" bson:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
	Filename     string    `json:"filename" bson:"filename"`
	Size         int64     `json:"size" bson:"size"` // in bytes
	Type         string    `json:"type" bson:"type"` // MIME type
	AltText      string    `json:"alt_text,omitempty" bson:"alt_text,omitempty"`
	IsPrimary    bool      `json:"is_primary" bson:"is_primary"`
	UploadDate   time.Time `json:"upload_date" bson:"upload_date"`
}
