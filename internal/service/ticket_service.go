package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/config"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/infra"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/qr"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/repository"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/worker"

	"gorm.io/gorm"
)

var ErrParticipantNotFound = errors.New("participant not found")

// TicketService is the ticket issuer: it rotates the one-time QR token,
// builds the scannable payload, and hands delivery off to the async email
// queue. Issuing a new token supersedes any previously emailed QR code.
type TicketService interface {
	// IssueToken generates a fresh token and persists it on the participant.
	IssueToken(ctx context.Context, uniqueID string) (string, error)
	// BuildPayload encodes an issued token into the QR payload string.
	BuildPayload(uniqueID, token string) string
	// RenderQR issues a token and returns the payload rendered as a PNG.
	RenderQR(ctx context.Context, uniqueID string) ([]byte, error)
	// SendTickets rotates tokens and enqueues one ticket email per known
	// participant; unknown IDs are reported back, not failed on.
	SendTickets(ctx context.Context, req dto.SendTicketsRequest) (*dto.SendTicketsResponse, error)
}

// TicketEnqueuer pushes a ticket delivery job onto the async queue.
// Satisfied by *worker.Dispatcher.
type TicketEnqueuer interface {
	EnqueueTicketEmail(ctx context.Context, payload worker.TicketEmailPayload) error
}

type ticketService struct {
	repo       repository.ParticipantRepository
	dispatcher TicketEnqueuer
	cfg        *config.Config
}

func NewTicketService(repo repository.ParticipantRepository, dispatcher TicketEnqueuer, cfg *config.Config) TicketService {
	return &ticketService{repo: repo, dispatcher: dispatcher, cfg: cfg}
}

func (s *ticketService) IssueToken(ctx context.Context, uniqueID string) (string, error) {
	token, err := qr.GenerateHash(uniqueID)
	if err != nil {
		return "", err
	}
	updated, err := s.repo.SetHash(ctx, uniqueID, &token)
	if err != nil {
		return "", err
	}
	if !updated {
		return "", ErrParticipantNotFound
	}
	return token, nil
}

func (s *ticketService) BuildPayload(uniqueID, token string) string {
	return qr.EncodePayload(uniqueID, token)
}

func (s *ticketService) RenderQR(ctx context.Context, uniqueID string) ([]byte, error) {
	if _, err := s.repo.FindByUniqueID(ctx, uniqueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	token, err := s.IssueToken(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	return infra.RenderQRPNG(s.BuildPayload(uniqueID, token))
}

func (s *ticketService) SendTickets(ctx context.Context, req dto.SendTicketsRequest) (*dto.SendTicketsResponse, error) {
	participants, err := s.repo.ListByUniqueIDs(ctx, req.UniqueIDs)
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(participants))
	resp := &dto.SendTicketsResponse{}

	for _, p := range participants {
		found[p.UniqueID] = true

		token, err := s.IssueToken(ctx, p.UniqueID)
		if err != nil {
			return nil, fmt.Errorf("issue token for %s: %w", p.UniqueID, err)
		}

		job := worker.TicketEmailPayload{
			UniqueID:     p.UniqueID,
			Name:         p.Name,
			Email:        p.Email,
			QRPayload:    s.BuildPayload(p.UniqueID, token),
			RegisteredAt: p.RegisteredAt,
		}
		if err := s.dispatcher.EnqueueTicketEmail(ctx, job); err != nil {
			return nil, fmt.Errorf("enqueue ticket email for %s: %w", p.UniqueID, err)
		}
		resp.Enqueued++
	}

	for _, id := range req.UniqueIDs {
		if !found[id] {
			resp.Missing = append(resp.Missing, id)
		}
	}
	return resp, nil
}
