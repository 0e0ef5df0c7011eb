package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/campusauth/pkg/httpx"
	"github.com/caarlos0/env/v11"
)

// ErrMissingJWTSecret is returned by Validate when AUTH_JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET is required")

type Config struct {
	JWTSecret string `env:"AUTH_JWT_SECRET"` // Required: HS256 session signing secret (>= 32 bytes)

	GoogleClientID      string        `env:"GOOGLE_CLIENT_ID"`                           // Optional: enables Google sign-in
	GoogleVerifyTimeout time.Duration `env:"GOOGLE_VERIFY_TIMEOUT" envDefault:"5s"`      // Bounds each ID token check
	DatabaseFile        string        `env:"AUTH_DATABASE_FILE"    envDefault:"auth.db"` // SQLite database file
	PepperFile          string        `env:"AUTH_PEPPER_FILE"      envDefault:"pepper"`  // Generated on first start

	Hash HashConfig `envPrefix:"AUTH_HASH_"`

	ResetCodeTTL time.Duration `env:"RESET_CODE_TTL" envDefault:"10m"`

	// Reset codes go through Postmark when a server token is set, otherwise
	// they are written to NotifyDropDir.
	PostmarkServerToken  string        `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string        `env:"POSTMARK_ACCOUNT_TOKEN"`
	MailSender           string        `env:"MAIL_SENDER"`
	NotifyDropDir        string        `env:"NOTIFY_DROP_DIR" envDefault:"outbox"`
	NotifyTimeout        time.Duration `env:"NOTIFY_TIMEOUT"  envDefault:"15s"` // Bounds one reset-code delivery

	AuditBufferSize int `env:"AUDIT_BUFFER_SIZE" envDefault:"1024"`

	Env       string `env:"ENV"        envDefault:"dev"`  // dev, staging, prod
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"` // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json, text

	Port                 int           `env:"PORT"                  envDefault:"8080"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT"       envDefault:"10s"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	RateLimits RateLimitConfig
}

// HashConfig holds the argon2id cost parameters. Concurrency 0 means GOMAXPROCS.
type HashConfig struct {
	MemoryKiB   uint32 `env:"MEMORY_KIB"  envDefault:"19456"`
	Iterations  uint32 `env:"ITERATIONS"  envDefault:"2"`
	Parallelism uint8  `env:"PARALLELISM" envDefault:"1"`
	Concurrency int    `env:"CONCURRENCY" envDefault:"0"`
}

// RateLimitConfig overrides the built-in limiter profiles, e.g.
// RATELIMIT_STRICT_REQUESTS=10. Unset fields keep the profile's value.
type RateLimitConfig struct {
	Strict   httpx.RateLimitConfig `envPrefix:"RATELIMIT_STRICT_"`
	Moderate httpx.RateLimitConfig `envPrefix:"RATELIMIT_MODERATE_"`
	Public   httpx.RateLimitConfig `envPrefix:"RATELIMIT_PUBLIC_"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

// LoadConfigFrom reads the configuration from the given variables only.
func LoadConfigFrom(vars map[string]string) (Config, error) {
	return loadConfig(env.Options{Environment: vars})
}

func loadConfig(opts env.Options) (Config, error) {
	cfg := Config{
		RateLimits: RateLimitConfig{
			Strict:   httpx.StrictLimit,
			Moderate: httpx.ModerateLimit,
			Public:   httpx.PublicLimit,
		},
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports every setting that would stop the service from starting.
func (c Config) Validate() error {
	var errs []error

	switch secret := strings.TrimSpace(c.JWTSecret); {
	case secret == "":
		errs = append(errs, ErrMissingJWTSecret)
	case len(secret) < 32:
		errs = append(errs, errors.New("AUTH_JWT_SECRET must be at least 32 bytes"))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be json or text", c.LogFormat))
	}
	if c.ResetCodeTTL <= 0 {
		errs = append(errs, errors.New("RESET_CODE_TTL must be positive"))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}
	if c.PostmarkServerToken != "" && c.MailSender == "" {
		errs = append(errs, errors.New("MAIL_SENDER is required when POSTMARK_SERVER_TOKEN is set"))
	}
	if c.PostmarkServerToken == "" && c.NotifyDropDir == "" {
		errs = append(errs, errors.New("NOTIFY_DROP_DIR is required when Postmark is disabled"))
	}

	return errors.Join(errs...)
}
