package forms

import (
	"time"

	"volunteerhub/internal/domain"
)

// ListQuery is bound from the status listing's query string.
type ListQuery struct {
	Limit int `form:"limit" binding:"omitempty,gte=1,lte=200"`
}

// FileResponse is the row shape both endpoints return. UploadedBy (the
// uploader's display name) is only populated for privileged callers.
type FileResponse struct {
	ID           int64             `json:"id"`
	FileName     string            `json:"file_name"`
	ContentType  string            `json:"content_type"`
	FileSize     int64             `json:"file_size"`
	Status       domain.FileStatus `json:"status"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	UploadedBy   string            `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	ProcessedAt  *time.Time        `json:"processed_at,omitempty"`
}

func toFileResponse(f *domain.UploadedFile, includeUploader bool) FileResponse {
	resp := FileResponse{
		ID:           f.ID,
		FileName:     f.FileName,
		ContentType:  f.ContentType,
		FileSize:     f.FileSize,
		Status:       f.Status,
		ErrorMessage: f.ErrorMessage,
		CreatedAt:    f.CreatedAt,
		ProcessedAt:  f.ProcessedAt,
	}
	if includeUploader {
		resp.UploadedBy = f.UploaderName
	}
	return resp
}

func toFileResponses(files []*domain.UploadedFile, includeUploader bool) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, toFileResponse(f, includeUploader))
	}
	return out
}
