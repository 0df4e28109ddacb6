package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the service reads from .env or the environment.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	DatabasePath string `mapstructure:"DATABASE_PATH"`

	JWTSecret         string `mapstructure:"JWT_SECRET"`
	JWTIssuer         string `mapstructure:"JWT_ISSUER"`
	JWTAudience       string `mapstructure:"JWT_AUDIENCE"`
	InternalAuthToken string `mapstructure:"INTERNAL_AUTH_TOKEN"`

	// Shared secret and issuer of the sign-in provider's identity tokens.
	// Login is refused while the secret is empty.
	AuthProviderSecret string `mapstructure:"AUTH_PROVIDER_SECRET"`
	AuthProviderIssuer string `mapstructure:"AUTH_PROVIDER_ISSUER"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	ProfileCacheTTL time.Duration `mapstructure:"PROFILE_CACHE_TTL"`

	// OpenAI-compatible endpoint used for client summaries
	LLMAPIKey  string `mapstructure:"LLM_API_KEY"`
	LLMBaseURL string `mapstructure:"LLM_BASE_URL"`
	LLMModel   string `mapstructure:"LLM_MODEL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
}

// DefaultJWTSecret is the development signing secret. Production refuses it.
const DefaultJWTSecret = "development-insecure-secret-change-me"

var ErrInsecureSecret = errors.New("JWT_SECRET must be set to a non-default value in production")

var defaults = map[string]any{
	"ENVIRONMENT":          "development",
	"SERVER_PORT":          "8008",
	"DATABASE_PATH":        "kollab.db",
	"JWT_SECRET":           DefaultJWTSecret,
	"JWT_ISSUER":           "kollab-api",
	"JWT_AUDIENCE":         "kollab-clients",
	"INTERNAL_AUTH_TOKEN":  "",
	"AUTH_PROVIDER_SECRET": "",
	"AUTH_PROVIDER_ISSUER": "",
	"CORS_ORIGINS":         []string{"*"},
	"LOG_LEVEL":            "info",
	"LOG_FILE":             "",
	"PROFILE_CACHE_TTL":    15 * time.Minute,
	"LLM_API_KEY":          "",
	"LLM_BASE_URL":         "",
	"LLM_MODEL":            "gpt-4o-mini",
	"SMTP_HOST":            "",
	"SMTP_PORT":            587,
	"SMTP_USERNAME":        "",
	"SMTP_PASSWORD":        "",
	"MAIL_FROM":            "updates@kollab.local",
}

// Load reads <path>/.env when present and lets environment variables override it.
// A missing .env file is not an error.
func Load(path string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects settings the server must not start with.
func (c Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret) {
		return ErrInsecureSecret
	}
	return nil
}
