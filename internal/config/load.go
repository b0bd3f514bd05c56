package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load.
// MNEMO_SERVER_PORT maps to the "server.port" key, and so on.
const envPrefix = "MNEMO"

// Load reads configuration from environment variables and, when present, a
// config.yaml file in the working directory. Environment variables take
// precedence over file values. Returns a populated Config or an error when
// loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so bind
	// every key explicitly. Binding never fails for non-empty key names,
	// but the error is checked to satisfy viper's contract.
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment variables: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; env vars and defaults carry the load.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers fallback values for settings that have a sensible
// default. Secrets and connection strings deliberately have none.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", "")

	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080) // 7 days

	v.SetDefault("llm.default_model", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.stuck_task_age_minutes", 30)
}

// bindEnvVars binds each config key to its MNEMO_* environment variable.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		"server.port",
		"server.log_level",
		"server.allowed_origins",
		"database.url",
		"auth.jwt_secret",
		"auth.bcrypt_cost",
		"auth.token_lifetime_minutes",
		"auth.refresh_token_lifetime_minutes",
		"llm.google_api_key",
		"llm.openai_api_key",
		"llm.anthropic_api_key",
		"llm.xai_api_key",
		"llm.default_model",
		"llm.max_retries",
		"llm.retry_delay_seconds",
		"task.worker_count",
		"task.queue_size",
		"task.stuck_task_age_minutes",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks a Config against its struct tags. It is exported so other
// packages (tests, tools) can validate hand-built configs.
func Validate(cfg *Config) error {
	validate := validator.New()
	return validate.Struct(cfg)
}
