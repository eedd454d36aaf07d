package domain

import "time"

const (
	FileTypeDocument = "document"
	FileTypeVideo    = "video"
)

// Resource is a shared knowledge item. It carries either an external Link, or
// an uploaded file (FileName + FileBlob, base64), or neither. FileType tags
// which viewer applies.
type Resource struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	FileBlob    string    `json:"file_blob,omitempty"`
	FileType    string    `json:"file_type"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
