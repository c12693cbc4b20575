package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Env               string        `mapstructure:"ENV"`
	Port              string        `mapstructure:"PORT" validate:"required,numeric"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	OpenAIURL         string        `mapstructure:"OPENAI_URL" validate:"required,url"`
	OpenAIAPIKey      string        `mapstructure:"OPENAI_API_KEY"`
	Model             string        `mapstructure:"MODEL" validate:"required"`
	MaxOutputTokens   int           `mapstructure:"MAX_OUTPUT_TOKENS" validate:"gt=0"`
	InputTokenBudget  int           `mapstructure:"INPUT_TOKEN_BUDGET" validate:"gte=0"`
	CompletionTimeout time.Duration `mapstructure:"COMPLETION_TIMEOUT" validate:"gt=0"`
	CORSAllowed       string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel          string        `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn error fatal panic disabled"`
	MaxUploadSizeMB   int64         `mapstructure:"MAX_UPLOAD_MB" validate:"gt=0"`
	MaxSessions       int           `mapstructure:"MAX_SESSIONS" validate:"gt=0"`
	SessionCookie     string        `mapstructure:"SESSION_COOKIE" validate:"required"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("OPENAI_URL", "https://api.openai.com/v1/responses")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("MODEL", "gpt-4.1-mini")
	v.SetDefault("MAX_OUTPUT_TOKENS", 1500)
	v.SetDefault("INPUT_TOKEN_BUDGET", 1000000)
	v.SetDefault("COMPLETION_TIMEOUT", "120s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("MAX_SESSIONS", 256)
	v.SetDefault("SESSION_COOKIE", "insight_session")
}
