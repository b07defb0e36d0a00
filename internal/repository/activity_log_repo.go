package repository

import (
	"context"

	"gorm.io/gorm"

	"volunteerhub/internal/domain"
)

// ActivityLogRepository is the activity-log sink, append-only from here.
type ActivityLogRepository interface {
	Create(ctx context.Context, rec *domain.ActivityLog) (int64, error)
}

type activityLogRepo struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, rec *domain.ActivityLog) (int64, error) {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}
