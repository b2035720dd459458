package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2id parameters for newly created hashes.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

// Upper bounds accepted when verifying a digest. A stored digest is data, and
// without these a crafted m= or t= value would make verification arbitrarily
// slow.
const (
	maxMemory      = 64 * 1024
	maxIterations  = 10
	maxParallelism = 8
	maxKeyLength   = 64
	maxBcryptCost  = 14
)

// Hasher hashes and verifies passwords. New hashes are Argon2id in PHC
// format; bcrypt digests are accepted for verification only.
type Hasher struct {
	pepper string
}

// NewHasher returns a Hasher that appends pepper to every Argon2id input.
func NewHasher(pepper string) *Hasher {
	return &Hasher{pepper: pepper}
}

// Hash returns a PHC-format Argon2id digest with a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: read salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password+h.pepper), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify reports whether password matches digest. Malformed or
// out-of-bounds digests simply do not match.
func (h *Hasher) Verify(password, digest string) bool {
	if isBcrypt(digest) {
		cost, err := bcrypt.Cost([]byte(digest))
		if err != nil || cost > maxBcryptCost {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
	}

	p, ok := parseArgon2(digest)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(password+h.pepper), p.salt, p.iterations, p.memory, p.parallelism, uint32(len(p.hash))) // #nosec G115 -- bounded by maxKeyLength
	return subtle.ConstantTimeCompare(computed, p.hash) == 1
}

// NeedsRehash reports whether digest was not produced with the current
// Argon2id parameters and should be replaced after a successful login.
func (h *Hasher) NeedsRehash(digest string) bool {
	if isBcrypt(digest) {
		return true
	}
	p, ok := parseArgon2(digest)
	if !ok {
		return true
	}
	return p.memory != memory || p.iterations != iterations || p.parallelism != parallelism || len(p.hash) != keyLength
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}

type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// parseArgon2 splits $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func parseArgon2(digest string) (argon2Params, bool) {
	var p argon2Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, false
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, false
	}

	var par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &par); err != nil {
		return p, false
	}
	if p.memory == 0 || p.memory > maxMemory ||
		p.iterations == 0 || p.iterations > maxIterations ||
		par == 0 || par > maxParallelism {
		return p, false
	}
	p.parallelism = uint8(par) // #nosec G115 -- bounded by maxParallelism

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) == 0 {
		return p, false
	}
	if p.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return p, false
	}
	if len(p.hash) == 0 || len(p.hash) > maxKeyLength {
		return p, false
	}
	return p, true
}
