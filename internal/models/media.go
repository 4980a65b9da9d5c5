package models

import "time"

const (
	MediaKindImage      = "image"
	MediaKindAttachment = "attachment"
)

type Media struct {
	ID          string     `json:"id"`
	ArticleID   *string    `json:"article_id,omitempty"`
	FileName    string     `json:"file_name"`
	FileType    string     `json:"file_type"`
	MimeType    string     `json:"mime_type"`
	FileSize    int64      `json:"file_size"`
	FileURL     string     `json:"file_url"`
	StoragePath string     `json:"storage_path"`
	UploadedBy  string     `json:"uploaded_by"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// swagger:model LinkMediaRequest
type LinkMediaRequest struct {
	MediaIDs  []string `json:"media_ids"  validate:"required,min=1,dive,uuid"`
	ArticleID string   `json:"article_id" validate:"required,uuid"`
}
