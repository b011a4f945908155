package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegisterParticipantRequest struct {
	Name  string `json:"name"  validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateFlagsRequest carries the pickup flags staff may toggle from the
// dashboard table. present and qr_hash are not settable through this path;
// they belong to the check-in validator and the ticket issuer.
type UpdateFlagsRequest struct {
	SeminarKit  *bool `json:"seminar_kit"`
	Consumption *bool `json:"consumption"`
	HeavyMeal   *bool `json:"heavy_meal"`
	MissionCard *bool `json:"mission_card"`
}

// Empty reports whether the request names no flag at all.
func (r UpdateFlagsRequest) Empty() bool {
	return r.SeminarKit == nil && r.Consumption == nil && r.HeavyMeal == nil && r.MissionCard == nil
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ParticipantResponse struct {
	UniqueID     string     `json:"unique_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Present      bool       `json:"present"`
	SeminarKit   bool       `json:"seminar_kit"`
	Consumption  bool       `json:"consumption"`
	HeavyMeal    bool       `json:"heavy_meal"`
	MissionCard  bool       `json:"mission_card"`
	RegisteredAt *time.Time `json:"registered_at"`
	HasQRHash    bool       `json:"has_qr_hash"`
}

type ParticipantListResponse struct {
	Participants []ParticipantResponse `json:"participants"`
	Count        int                   `json:"count"`
	PresentCount int                   `json:"present_count"`
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
