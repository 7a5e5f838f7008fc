package config

import (
	"time"

	"github.com/fed3c3sa/linkAIin/pkg/config"
)

// Config stores environment configuration for the poster service. Caller
// secrets (OpenAI key, LinkedIn token, email app password) are not here:
// they arrive with each request.
type Config struct {
	Port string

	LLMModel  string
	LLMAPIURL string

	ImageModel   string
	ImageSize    string
	ImageQuality string

	SearchAPIKey string
	SearchAPIURL string
	SearchLimit  int

	MinPostLength    int
	DefaultMaxLength int
	MaxHashtags      int

	SMTPHost string
	SMTPPort string

	StageTimeout  time.Duration
	MaxToolRounds int
}

// LoadConfig loads the poster configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Port: config.GetEnv("PORT", "8080"),

		LLMModel:  config.GetEnv("LLM_MODEL", "gpt-4"),
		LLMAPIURL: config.GetEnv("LLM_API_URL", ""),

		ImageModel:   config.GetEnv("IMAGE_MODEL", "dall-e-3"),
		ImageSize:    config.GetEnv("IMAGE_SIZE", "1024x1024"),
		ImageQuality: config.GetEnv("IMAGE_QUALITY", "standard"),

		SearchAPIKey: config.GetEnv("SEARCH_API_KEY", ""),
		SearchAPIURL: config.GetEnv("SEARCH_API_URL", ""),
		SearchLimit:  config.GetEnvInt("SEARCH_LIMIT", 5),

		MinPostLength:    config.GetEnvInt("MIN_POST_LENGTH", 100),
		DefaultMaxLength: config.GetEnvInt("DEFAULT_MAX_LENGTH", 3000),
		MaxHashtags:      config.GetEnvInt("MAX_HASHTAGS", 5),

		SMTPHost: config.GetEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort: config.GetEnv("SMTP_PORT", "587"),

		StageTimeout:  time.Duration(config.GetEnvInt("STAGE_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxToolRounds: config.GetEnvInt("MAX_TOOL_ROUNDS", 6),
	}
}
