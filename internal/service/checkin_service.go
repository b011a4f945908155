package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/qr"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/repository"

	"gorm.io/gorm"
)

// CheckinOutcome tags every result of a check-in attempt so the HTTP layer
// can pick status codes and UI copy without string matching.
type CheckinOutcome string

const (
	OutcomeSuccess            CheckinOutcome = "Success"
	OutcomeInvalidRequest     CheckinOutcome = "InvalidRequest"
	OutcomeInvalidCredential  CheckinOutcome = "InvalidCredential"
	OutcomeNotFound           CheckinOutcome = "NotFound"
	OutcomeAlreadyCheckedIn   CheckinOutcome = "AlreadyCheckedIn"
	OutcomePersistenceFailure CheckinOutcome = "PersistenceFailure"
)

// CheckinResult is the tagged outcome of one attempt. ParticipantName and
// ParticipantID are filled whenever the participant was identified, so the
// desk UI can show "X already checked in" instead of a bare error.
type CheckinResult struct {
	Outcome         CheckinOutcome
	Message         string
	ParticipantName string
	ParticipantID   string
}

func (r CheckinResult) OK() bool { return r.Outcome == OutcomeSuccess }

// CheckinObserver receives every finished attempt. The validator itself
// stays free of logging and metrics; observers are wired at the composition
// root.
type CheckinObserver interface {
	CheckinObserved(ctx context.Context, req dto.CheckinRequest, res CheckinResult)
}

// CheckinService is the state-transition authority for the present flag.
type CheckinService interface {
	CheckIn(ctx context.Context, req dto.CheckinRequest) (CheckinResult, error)
}

type checkinService struct {
	repo     repository.ParticipantRepository
	observer CheckinObserver
}

// NewCheckinService builds the validator. observer may be nil.
func NewCheckinService(repo repository.ParticipantRepository, observer CheckinObserver) CheckinService {
	return &checkinService{repo: repo, observer: observer}
}

// CheckIn applies the check-in state machine, short-circuiting on the first
// failure:
//
//  1. non-empty credential, type must be qrcode or code
//  2. qrcode: decode the payload
//  3. look up the participant
//  4. already present → AlreadyCheckedIn (checked BEFORE the hash so a
//     duplicate scan is never reported as an invalid QR)
//  5. qrcode: stored hash must exist and match the decoded token
//  6. conditional update: present=true, and for qrcode also qr_hash=NULL in
//     the same statement; manual code check-in leaves the hash untouched
//
// The returned error is non-nil only for unexpected store faults; every
// expected condition comes back as a tagged CheckinResult.
func (s *checkinService) CheckIn(ctx context.Context, req dto.CheckinRequest) (CheckinResult, error) {
	res, err := s.checkIn(ctx, req)
	if s.observer != nil {
		s.observer.CheckinObserved(ctx, req, res)
	}
	return res, err
}

func (s *checkinService) checkIn(ctx context.Context, req dto.CheckinRequest) (CheckinResult, error) {
	credential := strings.TrimSpace(req.Credential)
	if credential == "" || (req.Type != dto.CheckinTypeQRCode && req.Type != dto.CheckinTypeCode) {
		return CheckinResult{
			Outcome: OutcomeInvalidRequest,
			Message: "Credential and a valid type (qrcode or code) are required",
		}, nil
	}

	uniqueID := credential
	token := ""
	if req.Type == dto.CheckinTypeQRCode {
		id, hash, ok := qr.DecodePayload(credential)
		if !ok {
			return CheckinResult{
				Outcome: OutcomeInvalidCredential,
				Message: "QR code is invalid or expired. Please request a new one.",
			}, nil
		}
		uniqueID, token = id, hash
	}

	p, err := s.repo.FindByUniqueID(ctx, uniqueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CheckinResult{
				Outcome:       OutcomeNotFound,
				Message:       "Participant not found",
				ParticipantID: uniqueID,
			}, nil
		}
		return CheckinResult{}, err
	}

	if p.Present {
		return CheckinResult{
			Outcome:         OutcomeAlreadyCheckedIn,
			Message:         "Participant has already checked in",
			ParticipantName: p.Name,
			ParticipantID:   p.UniqueID,
		}, nil
	}

	if req.Type == dto.CheckinTypeQRCode {
		if p.QRHash == nil || strings.TrimSpace(*p.QRHash) != strings.TrimSpace(token) {
			return CheckinResult{
				Outcome:         OutcomeInvalidCredential,
				Message:         "QR code is invalid or already used. Please request a new one.",
				ParticipantName: p.Name,
				ParticipantID:   p.UniqueID,
			}, nil
		}
	}

	clearHash := req.Type == dto.CheckinTypeQRCode
	updated, err := s.repo.ConditionalMarkPresent(ctx, p.UniqueID, clearHash)
	if err != nil {
		return CheckinResult{}, err
	}
	if !updated {
		// The row was present=false a moment ago; losing the conditional
		// update means a concurrent attempt won the race.
		return CheckinResult{
			Outcome:         OutcomePersistenceFailure,
			Message:         "Check-in could not be recorded, please re-scan",
			ParticipantName: p.Name,
			ParticipantID:   p.UniqueID,
		}, nil
	}

	return CheckinResult{
		Outcome:         OutcomeSuccess,
		Message:         "Check-in successful",
		ParticipantName: p.Name,
		ParticipantID:   p.UniqueID,
	}, nil
}
