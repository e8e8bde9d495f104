package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"hiring-pipeline/usecase"
)

// Config is the full runtime configuration, read from the environment.
// DATABASE_URL selects postgres; without it the service runs on a local
// sqlite file. SMTP and the OCR fallback are optional.
type Config struct {
	Port       string `validate:"required,numeric"`
	DatabaseURL string
	SQLitePath string `validate:"required"`

	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string

	SMTPServer             string
	SMTPPort               int `validate:"gte=1,lte=65535"`
	SMTPUser               string
	SMTPPass               string
	NotifyDefaultRecipient string

	Thresholds usecase.Thresholds

	LogJSON  bool
	LogDebug bool
}

// Load reads the environment, applies defaults and fails fast on anything
// missing or out of range.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                   envOr("PORT", "8080"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		SQLitePath:             envOr("SQLITE_PATH", "agentic_hiring.db"),
		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:            envOr("OPENAI_MODEL", "gpt-4"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		SMTPServer:             envOr("SMTP_SERVER", "smtp.gmail.com"),
		SMTPUser:               os.Getenv("SMTP_USER"),
		SMTPPass:               os.Getenv("SMTP_PASS"),
		NotifyDefaultRecipient: os.Getenv("NOTIFY_DEFAULT_RECIPIENT"),
		LogJSON:                envBool("LOG_JSON"),
		LogDebug:               envBool("LOG_DEBUG"),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set in environment")
	}

	var err error
	if cfg.SMTPPort, err = envInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}

	t := usecase.DefaultThresholds()
	if t.ShortlistConfidence, err = envFloat("SHORTLIST_CONFIDENCE", t.ShortlistConfidence); err != nil {
		return nil, err
	}
	if t.ShortlistSkills, err = envFloat("SHORTLIST_SKILLS", t.ShortlistSkills); err != nil {
		return nil, err
	}
	if t.RejectConfidence, err = envFloat("REJECT_CONFIDENCE", t.RejectConfidence); err != nil {
		return nil, err
	}
	cfg.Thresholds = t

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
