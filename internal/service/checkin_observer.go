package service

import (
	"context"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/dto"

	"github.com/rs/zerolog"
)

// LogObserver emits one structured event per check-in attempt. It is the
// only place check-in activity is logged; the validator itself never logs.
type LogObserver struct {
	log zerolog.Logger
}

func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) CheckinObserved(_ context.Context, req dto.CheckinRequest, res CheckinResult) {
	ev := o.log.Info()
	switch res.Outcome {
	case OutcomeSuccess, OutcomeAlreadyCheckedIn:
		// informational
	case OutcomePersistenceFailure:
		ev = o.log.Error()
	default:
		ev = o.log.Warn()
	}
	ev.
		Str("outcome", string(res.Outcome)).
		Str("type", req.Type).
		Str("participant_id", res.ParticipantID).
		Msg("checkin attempt")
}
