package auth

import (
	"encoding/base64"
	"errors"
	"strings"
)

// MinSecretBytes is the smallest accepted HMAC-SHA256 key.
const MinSecretBytes = 32

// ErrWeakSecret means the configured secret is empty or decodes to fewer than
// MinSecretBytes.
var ErrWeakSecret = errors.New("token secret must decode to at least 32 bytes")

// DecodeSecret turns the configured base64 secret (standard or URL alphabet,
// padded or not) into key material.
func DecodeSecret(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrWeakSecret
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		key, err := enc.DecodeString(encoded)
		if err != nil {
			lastErr = err
			continue
		}
		if len(key) < MinSecretBytes {
			return nil, ErrWeakSecret
		}
		return key, nil
	}
	return nil, lastErr
}
