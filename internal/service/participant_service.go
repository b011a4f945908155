package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/model"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/repository"

	"gorm.io/gorm"
)

// Unique ID allocation: SEMNASTI2025-NNN with NNN drawn from 000–299.
const (
	uniqueIDPrefix  = "SEMNASTI2025-"
	uniqueIDRange   = 300
	maxAllocRetries = 300
)

var (
	ErrEmailTaken       = errors.New("email is already registered")
	ErrIDRangeExhausted = errors.New("no unique ID available: range 000-299 is full")
	ErrNoFields         = errors.New("no fields to update")
)

// ParticipantService covers the staff-facing participant management surface:
// listing, manual registration, pickup-flag edits, deletion, and CSV
// import/export. Check-in state is out of its reach on purpose.
type ParticipantService interface {
	List(ctx context.Context) (*dto.ParticipantListResponse, error)
	Get(ctx context.Context, uniqueID string) (*dto.ParticipantResponse, error)
	Register(ctx context.Context, req dto.RegisterParticipantRequest) (*dto.ParticipantResponse, error)
	UpdateFlags(ctx context.Context, uniqueID string, req dto.UpdateFlagsRequest) error
	Delete(ctx context.Context, uniqueID string) error
	DeleteAll(ctx context.Context) error
	ExportCSV(ctx context.Context, w io.Writer) error
	ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
}

type participantService struct {
	repo repository.ParticipantRepository
}

func NewParticipantService(repo repository.ParticipantRepository) ParticipantService {
	return &participantService{repo: repo}
}

func (s *participantService) List(ctx context.Context) (*dto.ParticipantListResponse, error) {
	ps, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.ParticipantListResponse{
		Participants: make([]dto.ParticipantResponse, len(ps)),
		Count:        len(ps),
	}
	for i, p := range ps {
		resp.Participants[i] = toParticipantResponse(&p)
		if p.Present {
			resp.PresentCount++
		}
	}
	return resp, nil
}

func (s *participantService) Get(ctx context.Context, uniqueID string) (*dto.ParticipantResponse, error) {
	p, err := s.repo.FindByUniqueID(ctx, uniqueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	resp := toParticipantResponse(p)
	return &resp, nil
}

func (s *participantService) Register(ctx context.Context, req dto.RegisterParticipantRequest) (*dto.ParticipantResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	uniqueID, err := s.allocateUniqueID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Participant{
		UniqueID:     uniqueID,
		Name:         req.Name,
		Email:        req.Email,
		RegisteredAt: &now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := toParticipantResponse(p)
	return &resp, nil
}

// allocateUniqueID draws random suffixes until it finds a free one, same as
// the registration desk has always done; with only 300 seats the collision
// scan over existing IDs is cheap.
func (s *participantService) allocateUniqueID(ctx context.Context) (string, error) {
	existing, err := s.repo.ListUniqueIDs(ctx)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(existing))
	for _, id := range existing {
		taken[id] = true
	}
	if len(taken) >= uniqueIDRange {
		return "", ErrIDRangeExhausted
	}

	for attempt := 0; attempt < maxAllocRetries; attempt++ {
		candidate := uniqueIDPrefix + fmt.Sprintf("%03d", rand.Intn(uniqueIDRange))
		if !taken[candidate] {
			return candidate, nil
		}
	}
	return "", ErrIDRangeExhausted
}

func (s *participantService) UpdateFlags(ctx context.Context, uniqueID string, req dto.UpdateFlagsRequest) error {
	if req.Empty() {
		return ErrNoFields
	}

	flags := make(map[string]interface{})
	if req.SeminarKit != nil {
		flags["seminar_kit"] = *req.SeminarKit
	}
	if req.Consumption != nil {
		flags["consumption"] = *req.Consumption
	}
	if req.HeavyMeal != nil {
		flags["heavy_meal"] = *req.HeavyMeal
	}
	if req.MissionCard != nil {
		flags["mission_card"] = *req.MissionCard
	}

	updated, err := s.repo.UpdateFlags(ctx, uniqueID, flags)
	if err != nil {
		return err
	}
	if !updated {
		return ErrParticipantNotFound
	}
	return nil
}

func (s *participantService) Delete(ctx context.Context, uniqueID string) error {
	deleted, err := s.repo.Delete(ctx, uniqueID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrParticipantNotFound
	}
	return nil
}

func (s *participantService) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

// ExportCSV streams the attendance sheet.
func (s *participantService) ExportCSV(ctx context.Context, w io.Writer) error {
	ps, err := s.repo.List(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"unique_id", "name", "email", "present",
		"seminar_kit", "consumption", "heavy_meal", "mission_card", "registered_at",
	}); err != nil {
		return err
	}

	for _, p := range ps {
		registered := ""
		if p.RegisteredAt != nil {
			registered = p.RegisteredAt.Format(time.RFC3339)
		}
		row := []string{
			p.UniqueID, p.Name, p.Email, strconv.FormatBool(p.Present),
			strconv.FormatBool(p.SeminarKit), strconv.FormatBool(p.Consumption),
			strconv.FormatBool(p.HeavyMeal), strconv.FormatBool(p.MissionCard),
			registered,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ImportCSV registers participants from a name,email CSV (header optional).
// Rows with a taken email or a malformed record are skipped and reported,
// not fatal.
func (s *participantService) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	result := &dto.ImportResult{}
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		line++

		if len(record) < 2 {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: expected name,email", line))
			continue
		}
		name := strings.TrimSpace(record[0])
		email := strings.TrimSpace(record[1])
		if line == 1 && strings.EqualFold(name, "name") && strings.EqualFold(email, "email") {
			continue // header row
		}
		if name == "" || email == "" || !strings.Contains(email, "@") {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid name or email", line))
			continue
		}

		_, err = s.Register(ctx, dto.RegisterParticipantRequest{Name: name, Email: email})
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, ErrEmailTaken):
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s already registered", line, email))
		case errors.Is(err, ErrIDRangeExhausted):
			return result, err
		default:
			return result, err
		}
	}
	return result, nil
}

func toParticipantResponse(p *model.Participant) dto.ParticipantResponse {
	return dto.ParticipantResponse{
		UniqueID:     p.UniqueID,
		Name:         p.Name,
		Email:        p.Email,
		Present:      p.Present,
		SeminarKit:   p.SeminarKit,
		Consumption:  p.Consumption,
		HeavyMeal:    p.HeavyMeal,
		MissionCard:  p.MissionCard,
		RegisteredAt: p.RegisteredAt,
		HasQRHash:    p.QRHash != nil,
	}
}
