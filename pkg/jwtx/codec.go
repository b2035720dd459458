package jwtx

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrAlgMismatch  = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Options configure a Codec.
type Options struct {
	// Issuer written to and required on every token. Empty means "don't care".
	Issuer string

	// TTL used when Issue is called with ttl <= 0.
	TTL time.Duration

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Roles is the closed set of accepted role claims. Empty accepts any
	// non-empty role.
	Roles []string

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Codec issues and verifies bearer tokens with a single pinned algorithm.
type Codec struct {
	signer Signer
	opts   Options
	parser *jwt.Parser
}

// NewCodec returns a Codec signing with s.
func NewCodec(s Signer, opts Options) (*Codec, error) {
	if s == nil {
		return nil, errors.New("jwtx: nil signer")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultAccessTokenTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(opts.Leeway),
		jwt.WithTimeFunc(opts.Now),
	}
	if opts.Issuer != "" {
		popts = append(popts, jwt.WithIssuer(opts.Issuer))
	}

	return &Codec{signer: s, opts: opts, parser: jwt.NewParser(popts...)}, nil
}

// Alg reports the pinned signing algorithm.
func (c *Codec) Alg() string { return c.signer.Alg() }

// Issue signs a token for subject. A ttl <= 0 uses the configured default.
func (c *Codec) Issue(subject, userID, role string, ttl time.Duration) (string, Claims, error) {
	if subject == "" {
		return "", Claims{}, fmt.Errorf("%w: empty subject", ErrInvalidClaim)
	}
	if !c.validRole(role) {
		return "", Claims{}, fmt.Errorf("%w: role %q", ErrInvalidClaim, role)
	}
	if ttl <= 0 {
		ttl = c.opts.TTL
	}

	claims := NewClaims(subject, userID, role, c.opts.Issuer, ttl, c.opts.Now().UTC())
	token, err := c.signer.Sign(claims)
	if err != nil {
		return "", Claims{}, fmt.Errorf("jwtx: sign: %w", err)
	}
	return token, claims, nil
}

// Verify checks the signature, the pinned algorithm, exp/nbf, the issuer and
// the custom claims, and returns the claims only if all hold.
func (c *Codec) Verify(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := c.parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return c.signer.VerifyKey(), nil
	})
	if err != nil {
		return Claims{}, c.classify(token, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidSig
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: empty subject", ErrInvalidClaim)
	}
	if !c.validRole(claims.Role) {
		return Claims{}, fmt.Errorf("%w: role %q", ErrInvalidClaim, claims.Role)
	}
	return claims, nil
}

// classify maps golang-jwt errors onto the package sentinels.
func (c *Codec) classify(token *jwt.Token, err error) error {
	if errors.Is(err, jwt.ErrTokenMalformed) {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if token != nil {
		if alg, _ := token.Header["alg"].(string); alg != c.signer.Alg() {
			return fmt.Errorf("%w: got %q", ErrAlgMismatch, alg)
		}
	}

	switch {
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrAlgMismatch, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing), errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func (c *Codec) validRole(role string) bool {
	if role == "" {
		return false
	}
	return len(c.opts.Roles) == 0 || slices.Contains(c.opts.Roles, role)
}
