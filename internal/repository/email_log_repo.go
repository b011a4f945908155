package repository

import (
	"context"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/model"

	"gorm.io/gorm"
)

type EmailLogRepository interface {
	Create(ctx context.Context, l *model.EmailLog) error
	List(ctx context.Context, status string, limit int) ([]model.EmailLog, error)
	Delete(ctx context.Context, id uint) (bool, error)
	DeleteAll(ctx context.Context) error
}

type emailLogRepo struct{ db *gorm.DB }

func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepo{db: db}
}

func (r *emailLogRepo) Create(ctx context.Context, l *model.EmailLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *emailLogRepo) List(ctx context.Context, status string, limit int) ([]model.EmailLog, error) {
	q := r.db.WithContext(ctx).Order("sent_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []model.EmailLog
	err := q.Find(&logs).Error
	return logs, err
}

func (r *emailLogRepo) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.EmailLog{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *emailLogRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.EmailLog{}).Error
}
