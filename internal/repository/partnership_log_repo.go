package repository

import (
	"context"

	"gorm.io/gorm"

	"volunteerhub/internal/domain"
)

// PartnershipLogRepository is the partnership-log sink. The table belongs to
// the surrounding application; this subsystem only appends to it.
type PartnershipLogRepository interface {
	Create(ctx context.Context, rec *domain.PartnershipLog) (int64, error)
}

type partnershipLogRepo struct {
	db *gorm.DB
}

func NewPartnershipLogRepository(db *gorm.DB) PartnershipLogRepository {
	return &partnershipLogRepo{db: db}
}

func (r *partnershipLogRepo) Create(ctx context.Context, rec *domain.PartnershipLog) (int64, error) {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}
