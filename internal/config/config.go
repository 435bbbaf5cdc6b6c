package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Server
	Port        string `koanf:"port"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`
	CORSOrigins string `koanf:"cors_origins"`

	// Database. Empty, the default, means in-memory repositories; set
	// DATABASE_URL to a postgres DSN to persist users and sessions.
	DatabaseURL string `koanf:"database_url"`

	// JWT
	JWTSecret string        `koanf:"jwt_secret"`
	JWTTTL    time.Duration `koanf:"jwt_ttl"`

	BcryptCost int `koanf:"bcrypt_cost"`

	// Mail. An empty SMTPHost logs confirmation mails instead of sending them.
	SMTPHost      string `koanf:"smtp_host"`
	SMTPPort      int    `koanf:"smtp_port"`
	SMTPUsername  string `koanf:"smtp_username"`
	SMTPPassword  string `koanf:"smtp_password"`
	MailFrom      string `koanf:"mail_from"`
	ActivationURL string `koanf:"activation_url"`

	DefaultLanguage string `koanf:"default_language"`

	// Per-client limits on signup and login.
	AuthRatePerMinute int `koanf:"auth_rate_per_minute"`
	AuthRateBurst     int `koanf:"auth_rate_burst"`
}

// Default returns the development defaults. JWTSecret has no default.
func Default() *Config {
	return &Config{
		Port:              "8080",
		Environment:       "development",
		LogLevel:          "info",
		CORSOrigins:       "*",
		JWTTTL:            4380 * time.Hour,
		BcryptCost:        10,
		SMTPPort:          587,
		MailFrom:          "no-reply@atrijum.rs",
		ActivationURL:     "http://localhost:8080/api/v1/auth/activate",
		DefaultLanguage:   "en",
		AuthRatePerMinute: 20,
		AuthRateBurst:     10,
	}
}

// Load applies, in order, the defaults, the optional YAML file at path and
// the environment (PORT, JWT_SECRET, ...).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	known := knownKeys()
	envProvider := env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := known[key]; !ok {
			return ""
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.AuthRatePerMinute <= 0 || c.AuthRateBurst <= 0 {
		return fmt.Errorf("AUTH_RATE_PER_MINUTE and AUTH_RATE_BURST must be positive")
	}
	return nil
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func knownKeys() map[string]struct{} {
	keys := []string{
		"port", "environment", "log_level", "cors_origins",
		"database_url",
		"jwt_secret", "jwt_ttl",
		"bcrypt_cost",
		"smtp_host", "smtp_port", "smtp_username", "smtp_password", "mail_from", "activation_url",
		"default_language",
		"auth_rate_per_minute", "auth_rate_burst",
	}
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// getEnv is used where a value is needed before the config is loaded.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ConfigPathFromEnv returns CONFIG_FILE, the default for the --config flag.
func ConfigPathFromEnv() string {
	return getEnv("CONFIG_FILE", "")
}
