package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string        `yaml:"addr"`
	Environment    string        `yaml:"environment"`
	LogLevel       string        `yaml:"log_level"`
	JWTSigningKey  string        `yaml:"jwt_signing_key"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	DatabaseURL    string        `yaml:"database_url"`
	AppURL         string        `yaml:"app_url"`
	CORSOrigin     string        `yaml:"cors_origin"`
	// TrustedProxies is a comma separated CIDR list whose X-Forwarded-For is believed.
	TrustedProxies string        `yaml:"trusted_proxies"`

	Redis     RedisConfig     `yaml:"redis"`
	Mailer    MailerConfig    `yaml:"mailer"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

// RedisConfig holds Redis connection settings. An empty URL selects the in-memory stores.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// MailerConfig points at the transactional mail API. Without an API key the
// mailer reports itself unconfigured.
type MailerConfig struct {
	APIURL    string        `yaml:"api_url"`
	APIKey    string        `yaml:"api_key"`
	FromEmail string        `yaml:"from_email"`
	FromName  string        `yaml:"from_name"`
	Timeout   time.Duration `yaml:"timeout"`
}

// DashboardConfig configures the partner data source.
type DashboardConfig struct {
	WebhookURL       string        `yaml:"webhook_url"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"`
}

type CleanupConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// BootstrapConfig names the first admin, created at startup when missing.
type BootstrapConfig struct {
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// RateLimitConfig is the per-IP budget applied to public endpoints.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

const defaultJWTSigningKey = "dev-secret-key-change-in-production"

// Default returns the development defaults every other source overrides.
func Default() Server {
	return Server{
		Addr:          ":8080",
		Environment:   "development",
		LogLevel:      "info",
		JWTSigningKey: defaultJWTSigningKey,
		SessionTTL:    24 * time.Hour,
		AppURL:        "http://localhost:5173",
		CORSOrigin:    "*",
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Mailer: MailerConfig{
			APIURL:    "https://send.api.mailtrap.io/api/send",
			FromEmail: "noreply@umbroll.hu",
			FromName:  "Umbroll",
			Timeout:   10 * time.Second,
		},
		Dashboard: DashboardConfig{
			CacheTTL:         5 * time.Minute,
			FetchTimeout:     15 * time.Second,
			BreakerThreshold: 3,
			BreakerCooldown:  30 * time.Second,
		},
		Cleanup:   CleanupConfig{Interval: 15 * time.Minute},
		RateLimit: RateLimitConfig{RequestsPerSecond: 5, Burst: 10},
	}
}

// FromEnv builds a Server config from defaults, an optional YAML file named by
// PARTNERDASH_CONFIG, and environment variables, in that order of precedence.
func FromEnv() (Server, error) {
	cfg := Default()

	if path := os.Getenv("PARTNERDASH_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Server{}, err
		}
	}

	setString(&cfg.Addr, "PARTNERDASH_ADDR")
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.JWTSigningKey, "JWT_SIGNING_KEY")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.AppURL, "APP_URL")
	setString(&cfg.CORSOrigin, "CORS_ORIGIN")
	setString(&cfg.TrustedProxies, "TRUSTED_PROXIES")
	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Mailer.APIURL, "MAILER_API_URL")
	setString(&cfg.Mailer.APIKey, "MAILER_API_KEY")
	setString(&cfg.Mailer.FromEmail, "MAILER_FROM_EMAIL")
	setString(&cfg.Dashboard.WebhookURL, "PARTNER_WEBHOOK_URL")
	setString(&cfg.Bootstrap.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.Bootstrap.AdminPassword, "ADMIN_PASSWORD")

	for key, target := range map[string]*time.Duration{
		"SESSION_TTL":      &cfg.SessionTTL,
		"CACHE_TTL":        &cfg.Dashboard.CacheTTL,
		"CLEANUP_INTERVAL": &cfg.Cleanup.Interval,
	} {
		if err := setDuration(target, key); err != nil {
			return Server{}, err
		}
	}

	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Server{}, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimit.RequestsPerSecond = v
	}
	if raw := os.Getenv("RATE_LIMIT_BURST"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Server{}, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimit.Burst = v
	}

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot run safely.
func (s Server) Validate() error {
	if s.IsProduction() && s.JWTSigningKey == defaultJWTSigningKey {
		return fmt.Errorf("JWT_SIGNING_KEY must be set in production")
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	return nil
}

func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// MailerConfigured reports whether outgoing mail can be sent.
func (s Server) MailerConfigured() bool {
	return s.Mailer.APIKey != "" && s.Mailer.APIURL != ""
}

func (s *Server) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setDuration(target *time.Duration, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = d
	return nil
}
