package service

import (
	"context"
	"testing"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/config"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/model"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/qr"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEnqueuer struct {
	jobs []worker.TicketEmailPayload
}

func (e *stubEnqueuer) EnqueueTicketEmail(_ context.Context, payload worker.TicketEmailPayload) error {
	e.jobs = append(e.jobs, payload)
	return nil
}

func TestIssueToken_RotatesStoredHash(t *testing.T) {
	repo := newStubParticipantRepo()
	repo.seed(model.Participant{UniqueID: "SEMNASTI2025-060", Name: "Tok Holder"})
	svc := NewTicketService(repo, &stubEnqueuer{}, &config.Config{})

	first, err := svc.IssueToken(context.Background(), "SEMNASTI2025-060")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{64}$`, first)

	second, err := svc.IssueToken(context.Background(), "SEMNASTI2025-060")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	p := repo.get("SEMNASTI2025-060")
	require.NotNil(t, p.QRHash)
	assert.Equal(t, second, *p.QRHash, "only the latest token stays valid")
}

func TestIssueToken_UnknownParticipant(t *testing.T) {
	repo := newStubParticipantRepo()
	svc := NewTicketService(repo, &stubEnqueuer{}, &config.Config{})

	_, err := svc.IssueToken(context.Background(), "SEMNASTI2025-404")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestSendTickets_EnqueuesAndReportsMissing(t *testing.T) {
	repo := newStubParticipantRepo()
	repo.seed(model.Participant{UniqueID: "SEMNASTI2025-070", Name: "Has Seat", Email: "seat@example.com"})
	enq := &stubEnqueuer{}
	svc := NewTicketService(repo, enq, &config.Config{})

	resp, err := svc.SendTickets(context.Background(), dto.SendTicketsRequest{
		UniqueIDs: []string{"SEMNASTI2025-070", "SEMNASTI2025-404"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Enqueued)
	assert.Equal(t, []string{"SEMNASTI2025-404"}, resp.Missing)

	require.Len(t, enq.jobs, 1)
	job := enq.jobs[0]
	assert.Equal(t, "SEMNASTI2025-070", job.UniqueID)
	assert.Equal(t, "seat@example.com", job.Email)

	// The enqueued payload must carry the token that was just stored,
	// otherwise the emailed QR would never scan.
	id, token, ok := qr.DecodePayload(job.QRPayload)
	require.True(t, ok)
	assert.Equal(t, "SEMNASTI2025-070", id)
	p := repo.get("SEMNASTI2025-070")
	require.NotNil(t, p.QRHash)
	assert.Equal(t, *p.QRHash, token)
}
