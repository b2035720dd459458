package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/scholarspace/scholarspace/internal/auth/domain"
	"github.com/scholarspace/scholarspace/pkg/cryptox"
	"github.com/scholarspace/scholarspace/pkg/jwtx"
)

// InitAuthKeys builds the token codec for the configured algorithm.
//
// Supported algorithms:
//   - "HS256": shared secret from AUTH_JWT_SECRET.
//   - "EdDSA": Ed25519 private key in PKCS#8 PEM at AUTH_SIGNING_KEY_FILE.
//     A fresh key is generated and written there when the file is missing,
//     so tokens survive restarts as long as the file does.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.Codec, error) {
	var (
		signer jwtx.Signer
		err    error
	)

	switch cfg.Algorithm {
	case "HS256":
		signer, err = jwtx.NewSignerHS256("", []byte(cfg.JWTSecret))
	case "EdDSA":
		var pemKey []byte
		pemKey, err = loadOrCreateSigningKey(cfg.SigningKeyFile, logger)
		if err == nil {
			signer, err = jwtx.NewSignerEdDSA("", pemKey)
		}
	default:
		err = fmt.Errorf("unsupported algorithm %q", cfg.Algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signer: %w", err)
	}

	codec, err := jwtx.NewCodec(signer, jwtx.Options{
		Issuer: cfg.Issuer,
		TTL:    cfg.AccessTTL,
		Roles:  domain.RoleNames(),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("token signer ready", slog.String("algorithm", codec.Alg()))
	return codec, nil
}

func loadOrCreateSigningKey(path string, logger *slog.Logger) ([]byte, error) {
	pemKey, err := os.ReadFile(path)
	if err == nil {
		return pemKey, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read signing key: %w", err)
	}

	pemKey, err = cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create key dir: %w", err)
		}
	}
	if err := os.WriteFile(path, pemKey, 0o600); err != nil {
		return nil, fmt.Errorf("write signing key: %w", err)
	}

	logger.Warn("generated new signing key", slog.String("path", path))
	return pemKey, nil
}
