package model

import "time"

const (
	EmailStatusSuccess = "success"
	EmailStatusError   = "error"
)

// EmailLog records one ticket-email delivery attempt per participant.
type EmailLog struct {
	ID                  uint   `gorm:"primaryKey"`
	ParticipantUniqueID string `gorm:"column:participant_unique_id;index;not null"`
	Email               string `gorm:"not null"`
	Status              string `gorm:"type:varchar(10);index;not null"`
	ErrorMessage        *string
	SentAt              time.Time `gorm:"index;autoCreateTime"`
}
