package dto

import "time"

type SendTicketsRequest struct {
	UniqueIDs []string `json:"unique_ids" validate:"required,min=1,dive,required"`
}

// SendTicketsResponse reports how many ticket emails were enqueued; delivery
// results land in the email log as the worker pool drains the queue.
type SendTicketsResponse struct {
	Enqueued int      `json:"enqueued"`
	Missing  []string `json:"missing,omitempty"`
}

type EmailLogResponse struct {
	ID                  uint      `json:"id"`
	ParticipantUniqueID string    `json:"participant_unique_id"`
	Email               string    `json:"email"`
	Status              string    `json:"status"`
	ErrorMessage        *string   `json:"error_message,omitempty"`
	SentAt              time.Time `json:"sent_at"`
}
