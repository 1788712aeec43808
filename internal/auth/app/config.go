package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full environment surface of the service. The per-tenant JWT
// secrets are the only required settings; everything else has a workable
// default for local development.
type Config struct {
	DatabaseFile string `env:"WARDEN_DATABASE_FILE" envDefault:"warden.db"`

	JWTSecretUser  string `env:"WARDEN_JWT_SECRET_USER,required"`
	JWTSecretAdmin string `env:"WARDEN_JWT_SECRET_ADMIN,required"`

	// TokenTTL of 0 issues tokens without an expiry claim, matching the
	// historical behavior clients were built against.
	TokenTTL time.Duration `env:"WARDEN_TOKEN_TTL" envDefault:"0"`

	OTPTTL          time.Duration `env:"WARDEN_OTP_TTL" envDefault:"10m"`
	RequireVerified bool          `env:"WARDEN_REQUIRE_VERIFIED" envDefault:"true"`
	NotifyTimeout   time.Duration `env:"WARDEN_NOTIFY_TIMEOUT" envDefault:"5s"`

	// SMTP delivery for OTP emails. With no host configured, codes are
	// logged instead of sent, which is what you want in development.
	SMTPHost     string `env:"WARDEN_SMTP_HOST"`
	SMTPPort     int    `env:"WARDEN_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"WARDEN_SMTP_USERNAME"`
	SMTPPassword string `env:"WARDEN_SMTP_PASSWORD"`
	SMTPFrom     string `env:"WARDEN_SMTP_FROM"`
	SMTPSubject  string `env:"WARDEN_SMTP_SUBJECT"`

	AllowedOrigin string `env:"WARDEN_ALLOWED_ORIGIN"`

	Env                 string        `env:"ENV" envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
