package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// AllowedOrigins is a comma-separated list of origins permitted by the
	// CORS middleware. An empty value disables cross-origin access.
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// BcryptCost controls the work factor for password hashing.
	// bcrypt accepts costs between 4 and 31; production should stay at or
	// above the library default of 10.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`

	// TokenLifetimeMinutes is the lifetime of access tokens, in minutes.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// RefreshTokenLifetimeMinutes is the lifetime of refresh tokens, in minutes.
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains the card-generation provider settings. The per-provider
// API keys are the server-side fallback keys; they are optional because users
// may supply their own key per request, and a missing server key simply means
// plain-role users cannot use that provider.
type LLMConfig struct {
	GoogleAPIKey    string `mapstructure:"google_api_key"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	XAIAPIKey       string `mapstructure:"xai_api_key"`

	// DefaultModel is the model used when a generation request names none.
	DefaultModel string `mapstructure:"default_model"`

	// MaxRetries bounds retry attempts for transient provider failures.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`

	// RetryDelaySeconds is the base delay for exponential backoff between
	// retry attempts.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count"           validate:"required,gt=0"`
	QueueSize           int `mapstructure:"queue_size"             validate:"required,gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}
