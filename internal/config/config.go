// Package config loads studyloop configuration. Values are layered from
// built-in defaults, an optional YAML file, environment variables with the
// STUDYLOOP_ prefix, and finally command-line overrides. API keys are never
// part of this configuration; providers read them from their own environment
// variables.
package config

import "time"

// Config is the full application configuration.
type Config struct {
	// LLM configures the language-model client.
	LLM LLMConfig `mapstructure:"llm"`

	// Memory configures the long-term memory store.
	Memory MemoryConfig `mapstructure:"memory"`

	// Outcome configures test-history persistence.
	Outcome OutcomeConfig `mapstructure:"outcome"`

	// Schedule configures the due-for-test policy.
	Schedule ScheduleConfig `mapstructure:"schedule"`

	// Conversation configures the in-session exchange window.
	Conversation ConversationConfig `mapstructure:"conversation"`

	// Tutor configures tutoring identity and scope.
	Tutor TutorConfig `mapstructure:"tutor"`

	// Log configures structured logging.
	Log LogConfig `mapstructure:"log"`
}

// LLMConfig holds language-model settings. Provider and Model left empty
// fall back to environment discovery.
type LLMConfig struct {
	// Provider picks the backing API. Empty means auto-discover from
	// whichever API key is set.
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=anthropic openai gemini openrouter mock"`

	// Model is the provider-specific model ID or friendly name.
	Model string `mapstructure:"model"`

	// MaxTokens caps the response length. Zero keeps the provider default.
	MaxTokens int `mapstructure:"max_tokens" validate:"min=0"`

	// Temperature controls sampling randomness.
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	// Timeout bounds a single request.
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`

	// MaxRPM throttles requests per minute client-side. Zero disables.
	MaxRPM int `mapstructure:"max_rpm" validate:"min=0"`
}

// MemoryConfig holds memory-store settings.
type MemoryConfig struct {
	// Backend is the storage backend.
	Backend string `mapstructure:"backend" validate:"oneof=badger redis http"`

	// Path is the Badger database directory. Empty resolves to the
	// data directory next to the outcome database.
	Path string `mapstructure:"path"`

	// Timeout bounds a single request to the HTTP memory service.
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`

	// RedisAddr is the host:port of the Redis backend.
	RedisAddr string `mapstructure:"redis_addr"`

	// RedisPrefix namespaces keys written by the Redis backend.
	RedisPrefix string `mapstructure:"redis_prefix"`

	// HTTPBaseURL is the base URL of the remote memory service.
	HTTPBaseURL string `mapstructure:"http_base_url"`
}

// OutcomeConfig holds test-history database settings.
type OutcomeConfig struct {
	// Driver is the database driver.
	Driver string `mapstructure:"driver" validate:"oneof=sqlite postgres"`

	// DSN is the connection string. Empty resolves to a SQLite file in
	// the data directory.
	DSN string `mapstructure:"dsn"`
}

// ScheduleConfig holds retest scheduling settings.
type ScheduleConfig struct {
	// Interval is how long after a test a concept stays off the retest
	// list. Non-positive values fall back to the built-in default.
	Interval time.Duration `mapstructure:"interval"`
}

// ConversationConfig holds in-session conversation settings.
type ConversationConfig struct {
	// MaxExchanges is how many user/tutor exchanges the running
	// conversation keeps before the oldest are dropped.
	MaxExchanges int `mapstructure:"max_exchanges" validate:"min=1"`
}

// TutorConfig holds tutoring identity settings.
type TutorConfig struct {
	// Subject scopes the tutor's expertise and prompts.
	Subject string `mapstructure:"subject" validate:"required"`

	// AppID tags every memory write with the application identifier.
	AppID string `mapstructure:"app_id" validate:"required"`

	// UserID is the default student identity.
	UserID string `mapstructure:"user_id" validate:"required"`

	// SearchLimit caps how many prior memories augment a question.
	SearchLimit int `mapstructure:"search_limit" validate:"min=1"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum level to emit.
	Level string `mapstructure:"level" validate:"oneof=debug info warn warning error"`

	// Format is the handler format.
	Format string `mapstructure:"format" validate:"oneof=text json"`

	// Output is "stdout", "stderr", or a file path.
	Output string `mapstructure:"output"`
}
