package model

import (
	"time"
)

// Participant is one registrant for the event. UniqueID doubles as the
// database lookup key and the credential typed at the manual check-in desk
// (format: SEMNASTI2025-NNN).
//
// QRHash holds the currently valid one-time QR token. nil means no QR
// credential is live: either none was ever issued, or the last one was
// consumed by a QR check-in. Re-issuing a ticket overwrites the hash, which
// silently invalidates every previously emailed QR code.
type Participant struct {
	ID       uint   `gorm:"primaryKey"`
	UniqueID string `gorm:"column:unique_id;uniqueIndex;not null"`
	Name     string `gorm:"not null"`
	Email    string `gorm:"not null"`
	Present  bool   `gorm:"not null;default:false;index"`

	// Pickup flags toggled by staff at the desk; independent of check-in.
	SeminarKit  bool `gorm:"not null;default:false"`
	Consumption bool `gorm:"not null;default:false"`
	HeavyMeal   bool `gorm:"not null;default:false"`
	MissionCard bool `gorm:"not null;default:false"`

	RegisteredAt *time.Time `gorm:"index"`
	QRHash       *string    `gorm:"column:qr_hash;index"`
}
