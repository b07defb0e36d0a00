package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"volunteerhub/internal/domain"
)

var (
	ErrFileNotFound = errors.New("uploaded file not found")

	// ErrAlreadyResolved means a terminal transition was attempted on a row
	// that is no longer in the processing state. Terminal states are set
	// exactly once; callers treat this as a no-op worth logging.
	ErrAlreadyResolved = errors.New("uploaded file already resolved")
)

type UploadedFileRepository interface {
	CreateBatch(ctx context.Context, files []*domain.UploadedFile) error
	GetByID(ctx context.Context, id int64) (*domain.UploadedFile, error)
	List(ctx context.Context, userID *int64, limit int) ([]*domain.UploadedFile, error)
	RecordAttempt(ctx context.Context, id int64) error
	MarkCompleted(ctx context.Context, id int64, rawPayload []byte) error
	MarkNoData(ctx context.Context, id int64, message string) error
	MarkError(ctx context.Context, id int64, message string) error
}

type uploadedFileRepo struct {
	db *gorm.DB
}

func NewUploadedFileRepository(db *gorm.DB) UploadedFileRepository {
	return &uploadedFileRepo{db: db}
}

// CreateBatch inserts all rows in one transaction: either every file in the
// batch gets a processing row, or none does.
func (r *uploadedFileRepo) CreateBatch(ctx context.Context, files []*domain.UploadedFile) error {
	if len(files) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, f := range files {
			if err := tx.Create(f).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *uploadedFileRepo) GetByID(ctx context.Context, id int64) (*domain.UploadedFile, error) {
	var f domain.UploadedFile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns rows newest-first. A nil userID lists every row (privileged
// callers); otherwise only the given uploader's rows.
func (r *uploadedFileRepo) List(ctx context.Context, userID *int64, limit int) ([]*domain.UploadedFile, error) {
	q := r.db.WithContext(ctx).Model(&domain.UploadedFile{})
	if userID != nil {
		q = q.Where("uploaded_by = ?", *userID)
	}

	var files []*domain.UploadedFile
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&files).Error
	return files, err
}

func (r *uploadedFileRepo) RecordAttempt(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.UploadedFile{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *uploadedFileRepo) MarkCompleted(ctx context.Context, id int64, rawPayload []byte) error {
	raw := string(rawPayload)
	return r.resolve(ctx, id, map[string]any{
		"status":      domain.StatusCompleted,
		"raw_payload": &raw,
	})
}

func (r *uploadedFileRepo) MarkNoData(ctx context.Context, id int64, message string) error {
	return r.resolve(ctx, id, map[string]any{
		"status":        domain.StatusNoDataFound,
		"error_message": &message,
	})
}

func (r *uploadedFileRepo) MarkError(ctx context.Context, id int64, message string) error {
	return r.resolve(ctx, id, map[string]any{
		"status":        domain.StatusError,
		"error_message": &message,
	})
}

// resolve performs a terminal transition. The status=processing predicate is
// the single-writer guard: once a row is terminal, further transitions match
// zero rows and surface as ErrAlreadyResolved.
func (r *uploadedFileRepo) resolve(ctx context.Context, id int64, updates map[string]any) error {
	now := time.Now()
	updates["processed_at"] = &now

	res := r.db.WithContext(ctx).
		Model(&domain.UploadedFile{}).
		Where("id = ? AND status = ?", id, domain.StatusProcessing).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyResolved
	}
	return nil
}
