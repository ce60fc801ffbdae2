package domain

import "time"

// Photo is a gallery record. It is never edited in place.
type Photo struct {
	ID         int64     `json:"id"`
	ImageURL   string    `json:"image_url"`
	Caption    string    `json:"caption"`
	Date       string    `json:"date"`
	Weekday    string    `json:"weekday"`
	UploaderID int64     `json:"uploader_id"`
	CreatedAt  time.Time `json:"created_at"`
}
