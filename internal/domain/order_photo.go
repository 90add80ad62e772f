package domain

import "time"

// OrderPhoto is evidence metadata; the image itself lives in external storage.
type OrderPhoto struct {
	ID           string
	OrderID      string
	StorageKey   string
	ImageURL     string
	UploadedByID *string
	LocationID   *string
	UploadedAt   time.Time

	// Populated on reads.
	UploaderName string
	LocationName string
}
