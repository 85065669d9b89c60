package config

import (
	"fmt"
	"time"

	commonsconfig "github.com/JorgeSaicoski/microservice-commons/config"
	"github.com/caarlos0/env/v11"
)

// Config is the full service configuration, read from the environment.
type Config struct {
	ServiceName    string `env:"SERVICE_NAME" envDefault:"timekeeper"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	Server         ServerConfig
	DatabaseConfig DatabaseConfig
	Auth           AuthConfig
	Timers         TimerConfig
	Accounts       AccountsConfig
	Telemetry      TelemetryConfig
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	GinMode         string        `env:"GIN_MODE" envDefault:"release"`
	AllowedOrigins  []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER" envDefault:"postgres"` // postgres or sqlite
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"timekeeper"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	Path     string `env:"DB_PATH" envDefault:"timekeeper.db"` // sqlite only
}

// Commons converts the postgres settings to the shape the shared
// connection manager expects.
func (c DatabaseConfig) Commons() commonsconfig.DatabaseConfig {
	return commonsconfig.DatabaseConfig{
		Host:         c.Host,
		Port:         c.Port,
		User:         c.User,
		Password:     c.Password,
		DatabaseName: c.Name,
		SSLMode:      c.SSLMode,
		TimeZone:     "UTC",
		MaxIdleConns: 10,
		MaxOpenConns: 100,
		LogLevel:     "warn",
	}
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	// Keycloak settings switch bearer verification from HS256 to the
	// realm's RS256 keys: either a static public key or URL plus realm.
	KeycloakURL       string `env:"KEYCLOAK_URL"`
	KeycloakRealm     string `env:"KEYCLOAK_REALM"`
	KeycloakPublicKey string `env:"KEYCLOAK_PUBLIC_KEY"`
	// TrustGatewayHeaders accepts X-User-ID / X-User-Role set by an
	// authenticating gateway in front of the service. Only enable it when
	// the service is unreachable except through that gateway.
	TrustGatewayHeaders bool `env:"TRUST_GATEWAY_HEADERS" envDefault:"false"`
}

// KeycloakEnabled reports whether a Keycloak key source is configured.
func (c AuthConfig) KeycloakEnabled() bool {
	return c.KeycloakPublicKey != "" || (c.KeycloakURL != "" && c.KeycloakRealm != "")
}

type TimerConfig struct {
	TimeZone      string        `env:"TIMEZONE" envDefault:"UTC"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"15s"` // 0 disables the sweeper
}

// Location resolves TimeZone, used for LogDate and report windows.
func (c TimerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

type AccountsConfig struct {
	BaseURL string        `env:"ACCOUNTS_URL"` // empty disables name lookups
	Timeout time.Duration `env:"ACCOUNTS_TIMEOUT" envDefault:"3s"`
}

type TelemetryConfig struct {
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint string `env:"OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if cfg.DatabaseConfig.Driver != "postgres" && cfg.DatabaseConfig.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DatabaseConfig.Driver)
	}
	if _, err := cfg.Timers.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}
