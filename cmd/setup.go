package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/studyloop/studyloop/internal/config"
	"github.com/studyloop/studyloop/internal/llm"
	"github.com/studyloop/studyloop/internal/logging"
	"github.com/studyloop/studyloop/internal/memstore"
	"github.com/studyloop/studyloop/internal/outcome"
	"github.com/studyloop/studyloop/internal/schedule"
	"github.com/studyloop/studyloop/internal/tutor"
)

// session bundles everything an interactive command needs. Close
// releases both stores.
type session struct {
	cfg      *config.Config
	tutor    *tutor.Tutor
	memory   memstore.Store
	outcomes *outcome.Store
	policy   schedule.Policy
}

func (s *session) Close() {
	if s.memory != nil {
		if err := s.memory.Close(); err != nil {
			logging.L().Warn("closing memory store", "error", err)
		}
	}
	if s.outcomes != nil {
		if err := s.outcomes.Close(); err != nil {
			logging.L().Warn("closing outcome store", "error", err)
		}
	}
}

// openSession loads configuration and wires the tutor with its stores.
// Commands that never call the model (remind, stats) pass withLLM=false
// and work without any API key configured.
func openSession(ctx context.Context, withLLM bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var provider llm.Provider
	if withLLM {
		provider, err = buildProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	policy := schedule.NewPolicy(cfg.Schedule.Interval)

	outcomes, err := openOutcomes(cfg, policy)
	if err != nil {
		return nil, err
	}

	memory, err := openMemory(cfg)
	if err != nil {
		outcomes.Close()
		return nil, err
	}

	tut := tutor.New(provider, memory, outcomes, tutor.Config{
		Subject:      cfg.Tutor.Subject,
		AppID:        cfg.Tutor.AppID,
		UserID:       cfg.Tutor.UserID,
		SearchLimit:  cfg.Tutor.SearchLimit,
		MaxExchanges: cfg.Conversation.MaxExchanges,
		MaxTokens:    cfg.LLM.MaxTokens,
		Temperature:  cfg.LLM.Temperature,
	})

	return &session{
		cfg:      cfg,
		tutor:    tut,
		memory:   memory,
		outcomes: outcomes,
		policy:   policy,
	}, nil
}

// openOutcomes opens the test history database. An empty DSN with the
// sqlite driver falls back to the per-user data directory.
func openOutcomes(cfg *config.Config, policy schedule.Policy) (*outcome.Store, error) {
	dsn := cfg.Outcome.DSN
	if dsn == "" {
		if cfg.Outcome.Driver != "sqlite" {
			return nil, fmt.Errorf("outcome.dsn is required for driver %q", cfg.Outcome.Driver)
		}
		p, err := outcome.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dsn = p
	} else if cfg.Outcome.Driver == "sqlite" {
		if err := outcome.EnsureDir(dsn); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	st, err := outcome.Open(cfg.Outcome.Driver, dsn, policy)
	if err != nil {
		return nil, fmt.Errorf("open test history: %w", err)
	}
	return st, nil
}

// openMemory opens the configured memory backend. The default Badger
// path is a "memory" directory next to the test history database. The
// HTTP backend reads its API key from the environment only.
func openMemory(cfg *config.Config) (memstore.Store, error) {
	mc := memstore.Config{
		Backend:     cfg.Memory.Backend,
		Path:        cfg.Memory.Path,
		RedisAddr:   cfg.Memory.RedisAddr,
		RedisPrefix: cfg.Memory.RedisPrefix,
		BaseURL:     cfg.Memory.HTTPBaseURL,
		APIKey:      os.Getenv("STUDYLOOP_MEMORY_API_KEY"),
		Timeout:     cfg.Memory.Timeout,
	}
	if (mc.Backend == "badger" || mc.Backend == "") && mc.Path == "" {
		dbPath, err := outcome.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve memory path: %w", err)
		}
		mc.Path = filepath.Join(filepath.Dir(dbPath), "memory")
	}

	st, err := memstore.Open(mc)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	return st, nil
}

// buildProvider resolves which LLM to talk to. An explicit selection
// (llm.provider in the config file or STUDYLOOP_LLM_PROVIDER) must
// validate; otherwise the standard API key variables are probed so a
// bare `GEMINI_API_KEY=... studyloop` works with no config at all.
func buildProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	lc := llm.ConfigFromEnv()
	if cfg.LLM.Provider != "" {
		lc.Provider = cfg.LLM.Provider
	}
	applyLLMOverrides(&lc, cfg)

	explicit := cfg.LLM.Provider != "" || os.Getenv("STUDYLOOP_LLM_PROVIDER") != ""
	if explicit {
		if err := lc.Validate(); err != nil {
			return nil, err
		}
		return llm.NewProvider(ctx, lc)
	}

	if err := lc.Validate(); err == nil {
		return llm.NewProvider(ctx, lc)
	}

	if discovered, ok := llm.DiscoverConfig(); ok {
		applyLLMOverrides(&discovered, cfg)
		return llm.NewProvider(ctx, discovered)
	}

	return nil, fmt.Errorf("no LLM provider configured: set llm.provider in the config " +
		"or export one of GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY")
}

// applyLLMOverrides copies model and transport settings from the app
// configuration onto an llm.Config. The model name lands on whichever
// provider is selected.
func applyLLMOverrides(lc *llm.Config, cfg *config.Config) {
	if cfg.LLM.Model != "" {
		switch lc.Provider {
		case "anthropic":
			lc.Anthropic.Model = cfg.LLM.Model
		case "openai":
			lc.OpenAI.Model = cfg.LLM.Model
		case "gemini":
			lc.Gemini.Model = cfg.LLM.Model
		case "openrouter":
			lc.OpenRouter.Model = cfg.LLM.Model
		}
	}
	if cfg.LLM.Timeout > 0 {
		lc.Timeout = cfg.LLM.Timeout
	}
	if cfg.LLM.MaxRPM > 0 {
		lc.RateLimitRPM = cfg.LLM.MaxRPM
	}
}
