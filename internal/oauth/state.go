package oauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// StateSigner signs the opaque state value carried through the redirect so
// the callback can reject requests we never initiated.
type StateSigner struct {
	key []byte
}

func NewStateSigner(secret string) *StateSigner {
	return &StateSigner{key: []byte(secret)}
}

func (s *StateSigner) Sign(raw string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(raw))
	return raw + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *StateSigner) Verify(got string) bool {
	i := strings.IndexByte(got, '.')
	if i < 0 {
		return false
	}
	raw := got[:i]
	sig, err := base64.RawURLEncoding.DecodeString(got[i+1:])
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(raw))
	return hmac.Equal(mac.Sum(nil), sig)
}
