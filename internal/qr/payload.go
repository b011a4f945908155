package qr

import "strings"

// Delimiter separates the participant ID from the token inside a QR payload.
// Neither field may contain it; DecodePayload rejects payloads where the
// split does not yield exactly two parts.
const Delimiter = "|"

// EncodePayload joins a participant ID and its token into the string embedded
// in the QR code. No escaping is performed.
func EncodePayload(uniqueID, hash string) string {
	return uniqueID + Delimiter + hash
}

// DecodePayload parses a scanned or typed QR payload. Input is normalized by
// trimming surrounding whitespace and stripping embedded whitespace, which
// tolerates scanner artifacts. Returns ok=false for anything that does not
// split into exactly two non-ambiguous parts. Never panics.
func DecodePayload(payload string) (uniqueID, hash string, ok bool) {
	normalized := stripWhitespace(strings.TrimSpace(payload))
	if normalized == "" {
		return "", "", false
	}

	parts := strings.Split(normalized, Delimiter)
	if len(parts) != 2 {
		return "", "", false
	}

	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
