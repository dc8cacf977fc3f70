package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml in the working
// directory and from DORY_-prefixed environment variables. Environment
// variables take precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults may be enough.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values so a minimal config file is enough
// to start the server.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.groq_model", "llama-3.1-70b-versatile")
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.max_tokens", 4000)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_source_length", 5000)

	v.SetDefault("generation.min_cards", 1)
	v.SetDefault("generation.max_cards", 50)
	v.SetDefault("generation.min_field_length", 10)
	v.SetDefault("generation.max_field_length", 200)
	v.SetDefault("generation.default_tags", []string{"dory", "ai-generated"})
}
