package dto

// Credential types accepted by the check-in endpoint.
const (
	CheckinTypeQRCode = "qrcode"
	CheckinTypeCode   = "code"
)

// CheckinRequest is submitted by the scanner page (type=qrcode, credential
// is the full QR payload) or the manual-entry tab (type=code, credential is
// the bare unique ID).
type CheckinRequest struct {
	Credential string `json:"credential" validate:"required"`
	Type       string `json:"type"       validate:"required,oneof=qrcode code"`
}

// CheckinResponse is returned for both successful and rejected attempts.
// Kind carries the failure tag so the UI can pick copy without parsing
// messages; it is empty on success.
type CheckinResponse struct {
	OK              bool   `json:"ok"`
	Kind            string `json:"kind,omitempty"`
	Message         string `json:"message"`
	InvalidQR       bool   `json:"invalid_qr,omitempty"`
	ParticipantName string `json:"participant_name,omitempty"`
	ParticipantID   string `json:"participant_id,omitempty"`
}
