package repository

import (
	"context"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/model"

	"gorm.io/gorm"
)

// ParticipantRepository is the participant store consumed by the check-in
// validator and the ticket issuer. ConditionalMarkPresent is the atomic
// primitive the validator relies on: the present flag flips in a single
// conditional UPDATE, so two racing check-ins can never both succeed.
type ParticipantRepository interface {
	Create(ctx context.Context, p *model.Participant) error
	FindByUniqueID(ctx context.Context, uniqueID string) (*model.Participant, error)
	FindByEmail(ctx context.Context, email string) (*model.Participant, error)
	List(ctx context.Context) ([]model.Participant, error)
	ListByUniqueIDs(ctx context.Context, uniqueIDs []string) ([]model.Participant, error)
	ListUniqueIDs(ctx context.Context) ([]string, error)
	// ConditionalMarkPresent sets present=true only when it is still false,
	// clearing qr_hash in the same statement when clearHash is set. Returns
	// updated=false when the row is missing or already present.
	ConditionalMarkPresent(ctx context.Context, uniqueID string, clearHash bool) (bool, error)
	// SetHash rotates the stored one-time token; nil invalidates it.
	SetHash(ctx context.Context, uniqueID string, hash *string) (bool, error)
	UpdateFlags(ctx context.Context, uniqueID string, flags map[string]interface{}) (bool, error)
	Delete(ctx context.Context, uniqueID string) (bool, error)
	DeleteAll(ctx context.Context) error
}

type participantRepo struct{ db *gorm.DB }

func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepo{db: db}
}

func (r *participantRepo) Create(ctx context.Context, p *model.Participant) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *participantRepo) FindByUniqueID(ctx context.Context, uniqueID string) (*model.Participant, error) {
	var p model.Participant
	err := r.db.WithContext(ctx).Where("unique_id = ?", uniqueID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepo) FindByEmail(ctx context.Context, email string) (*model.Participant, error) {
	var p model.Participant
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepo) List(ctx context.Context) ([]model.Participant, error) {
	var ps []model.Participant
	err := r.db.WithContext(ctx).Order("registered_at ASC, id ASC").Find(&ps).Error
	return ps, err
}

func (r *participantRepo) ListByUniqueIDs(ctx context.Context, uniqueIDs []string) ([]model.Participant, error) {
	var ps []model.Participant
	err := r.db.WithContext(ctx).Where("unique_id IN ?", uniqueIDs).Find(&ps).Error
	return ps, err
}

func (r *participantRepo) ListUniqueIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Participant{}).Pluck("unique_id", &ids).Error
	return ids, err
}

func (r *participantRepo) ConditionalMarkPresent(ctx context.Context, uniqueID string, clearHash bool) (bool, error) {
	updates := map[string]interface{}{"present": true}
	if clearHash {
		updates["qr_hash"] = nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("unique_id = ? AND present = false", uniqueID).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *participantRepo) SetHash(ctx context.Context, uniqueID string, hash *string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("unique_id = ?", uniqueID).
		Update("qr_hash", hash)
	return res.RowsAffected > 0, res.Error
}

func (r *participantRepo) UpdateFlags(ctx context.Context, uniqueID string, flags map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("unique_id = ?", uniqueID).
		Updates(flags)
	return res.RowsAffected > 0, res.Error
}

func (r *participantRepo) Delete(ctx context.Context, uniqueID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("unique_id = ?", uniqueID).Delete(&model.Participant{})
	return res.RowsAffected > 0, res.Error
}

func (r *participantRepo) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&model.Participant{}).Error
}
