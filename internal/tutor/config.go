package tutor

// Config holds tutoring identity and request settings.
type Config struct {
	// Subject scopes the tutor's expertise ("Statistics 101").
	Subject string

	// AppID tags every memory write.
	AppID string

	// UserID identifies the student in the memory store.
	UserID string

	// SearchLimit caps how many prior memories augment a learning
	// question.
	SearchLimit int

	// MaxExchanges caps the running conversation.
	MaxExchanges int

	// MaxTokens is the token budget for LLM responses.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns the standard tutoring settings.
func DefaultConfig() Config {
	return Config{
		Subject:      "Statistics 101",
		AppID:        "studyloop",
		UserID:       "student",
		SearchLimit:  5,
		MaxExchanges: DefaultMaxExchanges,
		MaxTokens:    1024,
		Temperature:  0.7,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Subject == "" {
		c.Subject = def.Subject
	}
	if c.AppID == "" {
		c.AppID = def.AppID
	}
	if c.UserID == "" {
		c.UserID = def.UserID
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = def.SearchLimit
	}
	if c.MaxExchanges <= 0 {
		c.MaxExchanges = def.MaxExchanges
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	return c
}
