package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Env          string
	ListenAddr   string
	DBURL        string
	RedisAddress string
	BearerToken  string

	TemplateDir string
	UploadDir   string

	FormTokenKey string
	FormBaseURL  string

	SMTP SMTPConfig

	CorsOrigins []string

	RateLimitRPS   float64
	RateLimitBurst int
}

// SMTPConfig holds outgoing mail settings. An empty Host disables email.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	// From is the sender address. It defaults to User when User is an email.
	From string
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// GetBearerToken returns the BearerToken from the config
func (c *AppConfig) GetBearerToken() string {
	return c.BearerToken
}

// FormLinksEnabled reports whether patient form tokens can be issued.
func (c *AppConfig) FormLinksEnabled() bool {
	return c.FormTokenKey != ""
}

// Load reads the configuration from environment variables and validates it.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Env:          os.Getenv("ENV"),
		ListenAddr:   getEnv("LISTEN_ADDR", ":8930"),
		DBURL:        os.Getenv("DB_URL"),
		RedisAddress: os.Getenv("REDIS_URL"),
		BearerToken:  os.Getenv("BEARER_TOKEN"),
		TemplateDir:  getEnv("TEMPLATE_DIR", "proms"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploaded_files"),
		FormTokenKey: os.Getenv("FORM_TOKEN_KEY"),
		FormBaseURL:  getEnv("FORM_BASE_URL", "http://localhost:3000/prom"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
		CorsOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:5173")),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 15),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 30),
	}
	if cfg.SMTP.From == "" && is.EmailFormat.Validate(cfg.SMTP.User) == nil {
		cfg.SMTP.From = cfg.SMTP.User
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and formats.
func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DBURL, validation.Required.Error("missing DB_URL environment variable")),
		validation.Field(&c.BearerToken, validation.Required.Error("missing BEARER_TOKEN environment variable")),
		validation.Field(&c.TemplateDir, validation.Required),
		validation.Field(&c.UploadDir, validation.Required),
		validation.Field(&c.FormTokenKey, validation.Length(32, 32).Error("FORM_TOKEN_KEY must be 32 bytes long")),
		validation.Field(&c.FormBaseURL, is.URL),
		validation.Field(&c.RateLimitRPS, validation.Min(0.1)),
		validation.Field(&c.RateLimitBurst, validation.Min(1)),
		validation.Field(&c.SMTP, validation.By(validateSMTP)),
	)
}

func validateSMTP(value interface{}) error {
	s, _ := value.(SMTPConfig)
	if !s.Enabled() {
		return nil
	}
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.User, validation.Required),
		validation.Field(&s.From, validation.Required.Error("SMTP_FROM is required when SMTP_USER is not an email address"), is.EmailFormat),
	)
}

func getEnv(name, defaultValue string) string {
	if value, exists := os.LookupEnv(name); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if value, exists := os.LookupEnv(name); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(name); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvAsDuration reads a duration such as "10s", falling back to defaultValue.
func GetEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(name); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetEnvAsInt is exported for the database package's Redis tuning.
func GetEnvAsInt(name string, defaultValue int) int {
	return getEnvAsInt(name, defaultValue)
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
