package infra

// pdf.go — Ticket PDF generation using go-pdf/fpdf.
// Layout follows the emailed Google-ticket style:
//   - "This is your ticket" header + organizer line
//   - Event name, venue, date
//   - Centered QR code
//   - ISSUED TO / ORDER NUMBER / REGISTERED blocks
//   - General Admission badge and footer

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/config"

	"github.com/go-pdf/fpdf"
)

// TicketData is everything the PDF needs about one participant.
type TicketData struct {
	Name         string
	UniqueID     string
	RegisteredAt *time.Time
}

// GenerateTicketPDF renders the ticket for one participant, embedding the
// already-rendered QR PNG, and returns the document bytes.
func GenerateTicketPDF(cfg *config.Config, data TicketData, qrPNG []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 18)
	pdf.SetTextColor(32, 33, 36)
	pdf.CellFormat(contentW, 9, "This is your ticket", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(95, 99, 104)
	pdf.CellFormat(contentW, 5, cfg.EventOrganizer, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Event ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(32, 33, 36)
	pdf.CellFormat(contentW, 7, cfg.EventName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(95, 99, 104)
	pdf.CellFormat(contentW, 4, cfg.EventVenue, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 6, "Event Date: "+cfg.EventDate, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── QR code ──────────────────────────────────────────────────────────────
	imgName := "qr-" + data.UniqueID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	qrSide := 60.0
	pdf.ImageOptions(imgName, (pageW-qrSide)/2, pdf.GetY(), qrSide, qrSide, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetY(pdf.GetY() + qrSide + 6)

	// ── Participant blocks ───────────────────────────────────────────────────
	block := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 7)
		pdf.SetTextColor(95, 99, 104)
		pdf.CellFormat(contentW, 4, label, "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(32, 33, 36)
		pdf.CellFormat(contentW, 6, value, "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}

	block("ISSUED TO", data.Name)
	block("ORDER NUMBER", data.UniqueID)

	regDate := "N/A"
	if data.RegisteredAt != nil {
		regDate = strings.ToUpper(data.RegisteredAt.Format("Jan 2, 2006"))
	}
	block("REGISTERED", regDate)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(30, 142, 62)
	pdf.CellFormat(contentW, 6, "General Admission", "", 1, "C", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.SetY(-25)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.SetTextColor(95, 99, 104)
	footer := fmt.Sprintf("(c) %d %s - All Rights Reserved.", time.Now().Year(), cfg.EventOrganizer)
	pdf.CellFormat(contentW, 4, footer, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render ticket: %w", err)
	}
	return buf.Bytes(), nil
}
