package models

import "time"

// FileRecord is the bookkeeping document written to the files collection
// after an upload.
type FileRecord struct {
	ID        string    `json:"-"`
	FileType  string    `json:"fileType"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}
