package forms

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/repository"
	"volunteerhub/internal/worker"
)

const (
	// MaxFileSize is the intake limit per file.
	MaxFileSize = 10 << 20 // 10 MiB

	defaultListLimit = 50
	maxListLimit     = 200
)

// AllowedContentTypes is the intake whitelist: PDFs and the raster image
// types the extraction service can read.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Enqueuer schedules a detached unit of extraction work. Satisfied by
// worker.Pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, job worker.Job) error
}

// Service is the upload intake: it validates the whole batch, registers one
// processing row per file, and hands each file to the worker pool. The
// caller gets its response as soon as the rows exist; extraction is only
// observable through List afterwards.
type Service struct {
	files repository.UploadedFileRepository
	queue Enqueuer
	log   zerolog.Logger
}

func NewService(files repository.UploadedFileRepository, queue Enqueuer, log zerolog.Logger) *Service {
	return &Service{
		files: files,
		queue: queue,
		log:   log.With().Str("component", "forms").Logger(),
	}
}

type acceptedFile struct {
	name        string
	contentType string
	data        []byte
}

// Upload validates every file before creating any row (atomic intake), then
// registers the batch and enqueues extraction jobs.
func (s *Service) Upload(ctx context.Context, principal domain.Principal, headers []*multipart.FileHeader) ([]*domain.UploadedFile, error) {
	if len(headers) == 0 {
		return nil, ErrNoFiles
	}

	accepted := make([]acceptedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := validateFile(fh)
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, *f)
	}

	rows := make([]*domain.UploadedFile, 0, len(accepted))
	for _, f := range accepted {
		rows = append(rows, &domain.UploadedFile{
			FileName:     f.name,
			ContentType:  f.contentType,
			FileSize:     int64(len(f.data)),
			UploadedBy:   principal.ID,
			UploaderName: principal.Name,
			Status:       domain.StatusProcessing,
		})
	}
	if err := s.files.CreateBatch(ctx, rows); err != nil {
		return nil, err
	}

	for i, row := range rows {
		job := worker.Job{
			FileID:      row.ID,
			FileName:    row.FileName,
			ContentType: row.ContentType,
			Data:        accepted[i].data,
			TraceID:     uuid.New().String(),
			SubmittedAt: time.Now(),
		}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			// The row stays visible in processing; the listing surface makes
			// the stall observable rather than silent.
			s.log.Error().Int64("file_id", row.ID).Err(err).Msg("failed to enqueue extraction job")
		}
	}

	s.log.Info().
		Int("files", len(rows)).
		Int64("uploaded_by", principal.ID).
		Msg("batch accepted")
	return rows, nil
}

// List returns uploads newest-first. Non-privileged principals only see
// their own rows; admins see everything.
func (s *Service) List(ctx context.Context, principal domain.Principal, limit int) ([]*domain.UploadedFile, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var scope *int64
	if !principal.IsPrivileged() {
		id := principal.ID
		scope = &id
	}
	return s.files.List(ctx, scope, limit)
}

// validateFile enforces the intake constraints and reads the file into
// memory. The declared content type must be whitelisted and the sniffed
// type must agree, so a renamed spreadsheet doesn't sneak through as a PDF.
func validateFile(fh *multipart.FileHeader) (*acceptedFile, error) {
	if fh.Size == 0 {
		return nil, &ValidationError{FileName: fh.Filename, Err: ErrEmptyFile}
	}
	if fh.Size > MaxFileSize {
		return nil, &ValidationError{FileName: fh.Filename, Err: ErrFileTooLarge}
	}

	declared := strings.TrimSpace(strings.Split(fh.Header.Get("Content-Type"), ";")[0])
	if !AllowedContentTypes[declared] {
		return nil, &ValidationError{FileName: fh.Filename, Err: ErrInvalidFileType}
	}

	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &ValidationError{FileName: fh.Filename, Err: ErrEmptyFile}
	}
	if len(data) > MaxFileSize {
		return nil, &ValidationError{FileName: fh.Filename, Err: ErrFileTooLarge}
	}

	sniffed := strings.Split(http.DetectContentType(head(data)), ";")[0]
	if !AllowedContentTypes[sniffed] {
		return nil, &ValidationError{FileName: fh.Filename, Err: ErrInvalidFileType}
	}

	return &acceptedFile{name: fh.Filename, contentType: declared, data: data}, nil
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}
