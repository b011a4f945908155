package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending ticket emails with QR and PDF
// attachments.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendTicket sends the HTML ticket email with the QR code PNG and the PDF
// ticket attached.
func (m *Mailer) SendTicket(to, subject string, htmlBody, qrPNG, ticketPDF []byte, uniqueID string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.HTML = htmlBody

	if _, err := e.Attach(bytes.NewReader(qrPNG), "qrcode.png", "image/png"); err != nil {
		return fmt.Errorf("mailer: attach QR image: %w", err)
	}
	if _, err := e.Attach(bytes.NewReader(ticketPDF), fmt.Sprintf("ticket-%s.pdf", uniqueID), "application/pdf"); err != nil {
		return fmt.Errorf("mailer: attach PDF: %w", err)
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
