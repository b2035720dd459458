package jwtx

import (
	"crypto/ed25519"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scholarspace/scholarspace/pkg/cryptox"
)

// MinHS256SecretSize is the shortest secret accepted for HS256.
const MinHS256SecretSize = 32

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)

	// VerifyKey returns the key a parser needs to check this signer's
	// signatures: the shared secret for HMAC, the public key otherwise.
	VerifyKey() any

	Validate() error
}

// NewSignerHS256 creates an HS256 signer from a shared secret.
// The secret must be at least 32 bytes.
func NewSignerHS256(kid string, secret []byte) (Signer, error) {
	key := append([]byte(nil), secret...)
	return newSigner(jwt.SigningMethodHS256, kid, key, key)
}

// NewSignerEdDSA creates an EdDSA signer from a PKCS8 PEM Ed25519 key.
func NewSignerEdDSA(kid string, pemKey []byte) (Signer, error) {
	key, err := cryptox.ParseEd25519Key(pemKey)
	if err != nil {
		return nil, err
	}
	return newSigner(jwt.SigningMethodEdDSA, kid, key, key.Public())
}

// signer pairs a signing method with its keys.
type signer struct {
	method    jwt.SigningMethod
	kid       string
	signKey   any
	verifyKey any
}

func newSigner(method jwt.SigningMethod, kid string, signKey, verifyKey any) (*signer, error) {
	s := &signer{method: method, kid: kid, signKey: signKey, verifyKey: verifyKey}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *signer) Alg() string    { return s.method.Alg() }
func (s *signer) KID() string    { return s.kid }
func (s *signer) VerifyKey() any { return s.verifyKey }

// Sign takes your claims and turns them into a signed JWT string.
func (s *signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, claims)
	if s.kid != "" {
		t.Header["kid"] = s.kid
	}
	return t.SignedString(s.signKey)
}

// Validate checks the keys match the method.
func (s *signer) Validate() error {
	switch key := s.signKey.(type) {
	case []byte:
		if len(key) < MinHS256SecretSize {
			return errors.New("jwtx: HS256 secret must be at least 32 bytes")
		}
	case ed25519.PrivateKey:
		if len(key) != ed25519.PrivateKeySize {
			return errors.New("jwtx: invalid Ed25519 private key size")
		}
		if pub, ok := s.verifyKey.(ed25519.PublicKey); !ok || len(pub) != ed25519.PublicKeySize {
			return errors.New("jwtx: invalid Ed25519 public key")
		}
	default:
		return errors.New("jwtx: unsupported signing key")
	}
	return nil
}
