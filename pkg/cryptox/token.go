package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// TokenSize256 is 256 bits, 43 base64url chars.
const TokenSize256 = 32

// OpaqueToken is a bearer secret and the fingerprint it is stored under.
type OpaqueToken struct {
	Raw         string
	Fingerprint string
}

// NewOpaqueToken returns a fresh 256-bit token with its fingerprint.
func NewOpaqueToken() (OpaqueToken, error) {
	raw, err := GenerateToken(TokenSize256)
	if err != nil {
		return OpaqueToken{}, err
	}
	return OpaqueToken{Raw: raw, Fingerprint: FingerprintToken(raw)}, nil
}

// GenerateToken returns size random bytes as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the SHA-256 of token as base64url. Reset tokens
// are stored by fingerprint so a database leak does not leak live tokens.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
