package worker

// ticket_email_worker.go
// Processes ticket delivery jobs from QueueTicketEmail: renders the QR PNG
// and PDF ticket for the payload issued by the ticket service, emails them,
// and records the attempt (success or error) in the email log so the
// dashboard can show send history.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/config"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/infra"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/model"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/repository"

	"github.com/rs/zerolog/log"
)

// TicketEmailPayload is the job envelope sent to QueueTicketEmail. The QR
// payload is built by the ticket service at enqueue time so the token stored
// on the participant row and the one emailed always match.
type TicketEmailPayload struct {
	UniqueID     string     `json:"unique_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	QRPayload    string     `json:"qr_payload"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
}

type TicketEmailWorker struct {
	mailer  *infra.Mailer
	logRepo repository.EmailLogRepository
	cfg     *config.Config
}

func NewTicketEmailWorker(mailer *infra.Mailer, logRepo repository.EmailLogRepository, cfg *config.Config) *TicketEmailWorker {
	return &TicketEmailWorker{mailer: mailer, logRepo: logRepo, cfg: cfg}
}

// Process renders and sends one ticket email. A nil return means the job is
// done (including "done, delivery failed and logged"); a non-nil return means
// the job itself was unusable and should go to the DLQ.
func (w *TicketEmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload TicketEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("ticket_email: invalid payload: %w", err)
	}
	if payload.Email == "" {
		return fmt.Errorf("ticket_email: empty recipient for %s", payload.UniqueID)
	}

	if err := w.send(payload); err != nil {
		log.Error().Err(err).Str("to", payload.Email).Str("participant", payload.UniqueID).
			Msg("ticket_email: delivery failed")
		w.record(ctx, payload, model.EmailStatusError, err.Error())
		return nil
	}

	log.Info().Str("to", payload.Email).Str("participant", payload.UniqueID).
		Msg("ticket_email: ticket sent")
	w.record(ctx, payload, model.EmailStatusSuccess, "")
	return nil
}

func (w *TicketEmailWorker) send(payload TicketEmailPayload) error {
	qrPNG, err := infra.RenderQRPNG(payload.QRPayload)
	if err != nil {
		return err
	}

	pdfBytes, err := infra.GenerateTicketPDF(w.cfg, infra.TicketData{
		Name:         payload.Name,
		UniqueID:     payload.UniqueID,
		RegisteredAt: payload.RegisteredAt,
	}, qrPNG)
	if err != nil {
		return err
	}

	subject := "Your Ticket for " + w.cfg.EventName
	body := w.renderHTML(payload)
	return w.mailer.SendTicket(payload.Email, subject, []byte(body), qrPNG, pdfBytes, payload.UniqueID)
}

func (w *TicketEmailWorker) record(ctx context.Context, payload TicketEmailPayload, status, errMsg string) {
	entry := &model.EmailLog{
		ParticipantUniqueID: payload.UniqueID,
		Email:               payload.Email,
		Status:              status,
	}
	if errMsg != "" {
		entry.ErrorMessage = &errMsg
	}
	if err := w.logRepo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("participant", payload.UniqueID).Msg("ticket_email: failed to write email log")
	}
}

func (w *TicketEmailWorker) renderHTML(payload TicketEmailPayload) string {
	registered := "N/A"
	if payload.RegisteredAt != nil {
		registered = strings.ToUpper(payload.RegisteredAt.Format("Jan 2, 2006"))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background:#ffffff;color:#202124;">
  <div style="max-width:600px;margin:0 auto;padding:40px 20px;">
    <h1 style="font-weight:400;margin:0 0 5px 0;">This is your ticket</h1>
    <p style="font-size:13px;color:#5f6368;margin:0 0 25px 0;">%s</p>
    <h2 style="font-weight:500;margin:0 0 8px 0;">%s</h2>
    <p style="font-size:14px;color:#5f6368;margin:0 0 15px 0;">%s</p>
    <p style="font-size:14px;color:#5f6368;margin:0 0 30px 0;"><strong>Event Date: %s</strong></p>
    <p style="font-size:11px;color:#5f6368;text-transform:uppercase;letter-spacing:.8px;margin:0 0 8px 0;">Issued to</p>
    <p style="font-size:16px;margin:0 0 25px 0;">%s</p>
    <p style="font-size:11px;color:#5f6368;text-transform:uppercase;letter-spacing:.8px;margin:0 0 8px 0;">Order number</p>
    <p style="font-size:16px;margin:0 0 25px 0;">%s</p>
    <p style="font-size:11px;color:#5f6368;text-transform:uppercase;letter-spacing:.8px;margin:0 0 8px 0;">Registered</p>
    <p style="font-size:16px;margin:0 0 25px 0;">%s</p>
    <div style="background:#f8f9fa;border-left:4px solid #1a73e8;padding:20px;margin:30px 0;border-radius:4px;">
      <p style="font-size:16px;font-weight:500;margin:0 0 15px 0;">How to Use Your Ticket</p>
      <ol style="margin:0;padding-left:20px;color:#5f6368;font-size:14px;line-height:1.8;">
        <li><strong>Save this email</strong> or download the attached PDF ticket for offline access</li>
        <li><strong>Show the attached QR code</strong> at the registration desk for check-in</li>
        <li><strong>Your order number</strong> (%s) will be verified by our team</li>
      </ol>
    </div>
    <p style="font-size:12px;color:#5f6368;text-align:center;margin:30px 0 0 0;">&copy; %d %s - All Rights Reserved.</p>
  </div>
</body>
</html>`,
		w.cfg.EventOrganizer, w.cfg.EventName, w.cfg.EventVenue, w.cfg.EventDate,
		payload.Name, payload.UniqueID, registered, payload.UniqueID,
		time.Now().Year(), w.cfg.EventOrganizer)
}
