package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestRegister_AllocatesUniqueID(t *testing.T) {
	repo := newStubParticipantRepo()
	svc := NewParticipantService(repo)

	resp, err := svc.Register(context.Background(), dto.RegisterParticipantRequest{
		Name: "Budi Santoso", Email: "budi@example.com",
	})

	require.NoError(t, err)
	assert.Regexp(t, `^SEMNASTI2025-\d{3}$`, resp.UniqueID)
	assert.False(t, resp.Present)
	assert.NotNil(t, resp.RegisteredAt)
	assert.False(t, resp.HasQRHash, "no token is issued until a ticket is sent")
}

func TestRegister_UniqueIDsNeverCollide(t *testing.T) {
	repo := newStubParticipantRepo()
	svc := NewParticipantService(repo)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		resp, err := svc.Register(context.Background(), dto.RegisterParticipantRequest{
			Name:  "Participant",
			Email: strings.ToLower("p" + string(rune('a'+i%26)) + string(rune('0'+i/26)) + "@example.com"),
		})
		require.NoError(t, err)
		assert.False(t, seen[resp.UniqueID], "duplicate unique ID %s", resp.UniqueID)
		seen[resp.UniqueID] = true
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newStubParticipantRepo()
	svc := NewParticipantService(repo)

	_, err := svc.Register(context.Background(), dto.RegisterParticipantRequest{
		Name: "First", Email: "same@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), dto.RegisterParticipantRequest{
		Name: "Second", Email: "SAME@example.com",
	})
	assert.ErrorIs(t, err, ErrEmailTaken, "email comparison is case-insensitive")
}

func TestUpdateFlags(t *testing.T) {
	repo := newStubParticipantRepo()
	repo.seed(model.Participant{UniqueID: "SEMNASTI2025-020", Name: "Flag Holder"})
	svc := NewParticipantService(repo)

	err := svc.UpdateFlags(context.Background(), "SEMNASTI2025-020", dto.UpdateFlagsRequest{
		SeminarKit: boolPtr(true),
		HeavyMeal:  boolPtr(true),
	})
	require.NoError(t, err)

	p := repo.get("SEMNASTI2025-020")
	assert.True(t, p.SeminarKit)
	assert.True(t, p.HeavyMeal)
	assert.False(t, p.Consumption, "flags not named in the request stay untouched")
	assert.False(t, p.MissionCard)
}

func TestUpdateFlags_NoFields(t *testing.T) {
	repo := newStubParticipantRepo()
	repo.seed(model.Participant{UniqueID: "SEMNASTI2025-021"})
	svc := NewParticipantService(repo)

	err := svc.UpdateFlags(context.Background(), "SEMNASTI2025-021", dto.UpdateFlagsRequest{})
	assert.ErrorIs(t, err, ErrNoFields)
}

func TestUpdateFlags_NotFound(t *testing.T) {
	repo := newStubParticipantRepo()
	svc := NewParticipantService(repo)

	err := svc.UpdateFlags(context.Background(), "SEMNASTI2025-404", dto.UpdateFlagsRequest{
		SeminarKit: boolPtr(true),
	})
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestList_CountsPresent(t *testing.T) {
	repo := newStubParticipantRepo()
	repo.seed(model.Participant{UniqueID: "SEMNASTI2025-030", Present: true})
	repo.seed(model.Participant{UniqueID: "SEMNASTI2025-031"})
	repo.seed(model.Participant{UniqueID: "SEMNASTI2025-032", Present: true})
	svc := NewParticipantService(repo)

	resp, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, 2, resp.PresentCount)
}

func TestExportCSV(t *testing.T) {
	repo := newStubParticipantRepo()
	repo.seed(model.Participant{
		UniqueID: "SEMNASTI2025-040", Name: "Export Me", Email: "export@example.com",
		Present: true, SeminarKit: true,
	})
	svc := NewParticipantService(repo)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "unique_id", rows[0][0])
	assert.Equal(t, "SEMNASTI2025-040", rows[1][0])
	assert.Equal(t, "true", rows[1][3])
	assert.Equal(t, "true", rows[1][4])
	assert.Equal(t, "false", rows[1][5])
}

func TestImportCSV(t *testing.T) {
	repo := newStubParticipantRepo()
	svc := NewParticipantService(repo)

	input := strings.Join([]string{
		"name,email",
		"Ani Wijaya,ani@example.com",
		"Citra Lestari,citra@example.com",
		"Broken Row,not-an-email",
		"Ani Again,ani@example.com",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, result.Errors, 2)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
}

func TestImportCSV_NoHeader(t *testing.T) {
	repo := newStubParticipantRepo()
	svc := NewParticipantService(repo)

	result, err := svc.ImportCSV(context.Background(), strings.NewReader("Dewi,dewi@example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Zero(t, result.Skipped)
}

func TestDelete(t *testing.T) {
	repo := newStubParticipantRepo()
	repo.seed(model.Participant{UniqueID: "SEMNASTI2025-050"})
	svc := NewParticipantService(repo)

	require.NoError(t, svc.Delete(context.Background(), "SEMNASTI2025-050"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "SEMNASTI2025-050"), ErrParticipantNotFound)
}
