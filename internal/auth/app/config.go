package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env                 string        `envconfig:"ENV" default:"dev"`                            // dev, staging, prod
	LogLevel            string        `envconfig:"LOG_LEVEL" default:"info"`                     // debug, info, warn, error
	LogFormat           string        `envconfig:"LOG_FORMAT" default:"json"`                    // json, text
	Port                int           `envconfig:"PORT" default:"8080"`                          // HTTP server port
	ShutdownGracePeriod time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"`          // Graceful shutdown timeout
	Issuer              string        `envconfig:"AUTH_ISSUER" default:"scholarspace-auth"`      // iss claim
	Algorithm           string        `envconfig:"AUTH_ALGORITHM" default:"HS256"`               // HS256 or EdDSA
	JWTSecret           string        `envconfig:"AUTH_JWT_SECRET"`                              // HS256 secret, at least 32 bytes
	SigningKeyFile      string        `envconfig:"AUTH_SIGNING_KEY_FILE" default:"signing.pem"`  // EdDSA key, generated if missing
	AccessTTL           time.Duration `envconfig:"AUTH_ACCESS_TTL" default:"10h"`                // Bearer token lifetime
	PepperFile          string        `envconfig:"AUTH_PEPPER_FILE" default:"pepper"`            // Password pepper, generated if missing
	DatabaseDriver      string        `envconfig:"AUTH_DATABASE_DRIVER" default:"sqlite"`        // sqlite or postgres
	DatabaseFile        string        `envconfig:"AUTH_DATABASE_FILE" default:"auth.db"`         // sqlite file
	DatabaseURL         string        `envconfig:"AUTH_DATABASE_URL"`                            // postgres DSN
	ResetWindow         time.Duration `envconfig:"AUTH_RESET_WINDOW" default:"30m"`              // Reset token lifetime
	FrontendURL         string        `envconfig:"AUTH_FRONTEND_URL" default:"http://localhost:3000"`
	ExposeResetToken    bool          `envconfig:"AUTH_EXPOSE_RESET_TOKEN" default:"false"`      // Return reset tokens in responses (dev only)
	SeedDemoUsers       bool          `envconfig:"AUTH_SEED_DEMO_USERS" default:"false"`         // Create demo accounts in an empty database

	// Embedded so envconfig does not prefix its keys.
	MailConfig

	WorkerConcurrency int `envconfig:"WORKER_CONCURRENCY" default:"5"`
}

type MailConfig struct {
	Mode          string `envconfig:"MAIL_MODE" default:"log"` // log, smtp, queue
	SMTPHost      string `envconfig:"SMTP_HOST" default:"127.0.0.1"`
	SMTPPort      int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPUsername  string `envconfig:"SMTP_USERNAME"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom      string `envconfig:"SMTP_FROM" default:"ScholarSpace <no-reply@scholarspace.local>"`
	RatePerMinute int    `envconfig:"SMTP_RATE_PER_MINUTE" default:"60"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
}

// LoadConfig reads an optional .env file from the working directory and
// then the environment. Variables already set win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the combinations envconfig cannot express.
func (c *Config) Validate() error {
	switch strings.ToUpper(c.Algorithm) {
	case "HS256":
		c.Algorithm = "HS256"
		if len(c.JWTSecret) < 32 {
			return errors.New("AUTH_JWT_SECRET must be at least 32 bytes for HS256")
		}
	case "EDDSA":
		c.Algorithm = "EdDSA"
		if c.SigningKeyFile == "" {
			return errors.New("AUTH_SIGNING_KEY_FILE is required for EdDSA")
		}
	default:
		return fmt.Errorf("unsupported AUTH_ALGORITHM %q", c.Algorithm)
	}

	switch c.DatabaseDriver {
	case "sqlite":
		if c.DatabaseFile == "" {
			return errors.New("AUTH_DATABASE_FILE is required for sqlite")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("AUTH_DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported AUTH_DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.MailConfig.Mode {
	case "log", "smtp", "queue":
	default:
		return fmt.Errorf("unsupported MAIL_MODE %q", c.MailConfig.Mode)
	}

	if c.ExposeResetToken && c.IsProduction() {
		return errors.New("AUTH_EXPOSE_RESET_TOKEN must not be set in prod")
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=prod.
func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}
