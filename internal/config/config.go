package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Prompts    PromptConfig     `mapstructure:"prompts"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains provider selection and per-provider credentials.
// The provider is selected once at startup and fixed for the process
// lifetime; adding a vendor means adding a new adapter, not touching
// the orchestrator.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=openai groq gemini"`

	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`

	GroqAPIKey string `mapstructure:"groq_api_key"`
	GroqModel  string `mapstructure:"groq_model"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	MaxTokens   int     `mapstructure:"max_tokens"  validate:"required,gt=0"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	// MaxSourceLength bounds the raw source text included in a prompt.
	// Longer input is silently truncated before the model call.
	MaxSourceLength int `mapstructure:"max_source_length" validate:"required,gt=0"`
}

// GenerationConfig contains the bounds applied to generation requests
// and to candidate cards coming back from the model.
type GenerationConfig struct {
	MinCards       int      `mapstructure:"min_cards"        validate:"required,gt=0"`
	MaxCards       int      `mapstructure:"max_cards"        validate:"required,gtefield=MinCards"`
	MinFieldLength int      `mapstructure:"min_field_length" validate:"required,gt=0"`
	MaxFieldLength int      `mapstructure:"max_field_length" validate:"required,gtfield=MinFieldLength"`
	DefaultTags    []string `mapstructure:"default_tags"`
}

// PromptConfig carries optional user overrides for the prompt templates.
// Empty values mean the hard-coded defaults are used.
type PromptConfig struct {
	Hint           string `mapstructure:"hint"`
	CardGeneration string `mapstructure:"card_generation"`
}
