package security

import (
	"crypto/rand"
	"encoding/hex"
)

// NewResetToken returns an opaque 256-bit token, hex-encoded so it survives
// inclusion in a URL path.
func NewResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
