// Package qr implements the check-in credential primitives: one-time token
// generation and the payload encoding embedded in ticket QR codes.
package qr

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

const saltBytes = 16

// GenerateHash produces a fresh one-time token bound to uniqueID. The digest
// input combines the identifier, the current timestamp in milliseconds, and a
// 16-byte random salt, so two calls for the same participant yield different
// tokens. The result is 64 lowercase hex characters.
//
// An entropy source failure is returned as an error; callers must treat it as
// fatal rather than fall back to weaker randomness.
func GenerateHash(uniqueID string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("qr: read random salt: %w", err)
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	data := uniqueID + "-" + ts + "-" + hex.EncodeToString(salt)

	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:]), nil
}
