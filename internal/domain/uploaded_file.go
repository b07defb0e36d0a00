package domain

import "time"

// FileStatus is the lifecycle state of an uploaded form.
type FileStatus string

const (
	StatusProcessing  FileStatus = "processing"
	StatusCompleted   FileStatus = "completed"
	StatusNoDataFound FileStatus = "no_data_found"
	StatusError       FileStatus = "error"
)

// IsTerminal reports whether the status will never change again.
func (s FileStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusNoDataFound || s == StatusError
}

// UploadedFile is one scanned volunteer form accepted for extraction.
// The row is written twice: once at intake (status=processing) and once
// when the extraction pipeline resolves it to a terminal status.
type UploadedFile struct {
	ID           int64      `gorm:"column:id;primaryKey" json:"id"`
	FileName     string     `gorm:"column:file_name" json:"file_name"`
	ContentType  string     `gorm:"column:content_type" json:"content_type"`
	FileSize     int64      `gorm:"column:file_size" json:"file_size"`
	UploadedBy   int64      `gorm:"column:uploaded_by;index" json:"uploaded_by"`
	UploaderName string     `gorm:"column:uploader_name" json:"-"`
	Status       FileStatus `gorm:"column:status;index" json:"status"`
	ErrorMessage *string    `gorm:"column:error_message" json:"error_message,omitempty"`
	RawPayload   *string    `gorm:"column:raw_payload" json:"-"`
	Attempts     int        `gorm:"column:attempts" json:"-"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	ProcessedAt  *time.Time `gorm:"column:processed_at" json:"processed_at,omitempty"`
}

func (UploadedFile) TableName() string { return "uploaded_files" }
