package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("LLM.Timeout = %v, want 60s", cfg.LLM.Timeout)
	}
	if cfg.Memory.Backend != "badger" {
		t.Errorf("Memory.Backend = %q, want badger", cfg.Memory.Backend)
	}
	if cfg.Outcome.Driver != "sqlite" {
		t.Errorf("Outcome.Driver = %q, want sqlite", cfg.Outcome.Driver)
	}
	if cfg.Schedule.Interval != 4*time.Hour {
		t.Errorf("Schedule.Interval = %v, want 4h", cfg.Schedule.Interval)
	}
	if cfg.Conversation.MaxExchanges != 12 {
		t.Errorf("Conversation.MaxExchanges = %d, want 12", cfg.Conversation.MaxExchanges)
	}
	if cfg.Tutor.Subject != "Statistics 101" {
		t.Errorf("Tutor.Subject = %q, want Statistics 101", cfg.Tutor.Subject)
	}
	if cfg.Tutor.AppID != "studyloop" {
		t.Errorf("Tutor.AppID = %q, want studyloop", cfg.Tutor.AppID)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  provider: anthropic
  model: claude-sonnet-4-5
schedule:
  interval: 30m
tutor:
  user_id: alice
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("LLM.Provider = %q, want anthropic", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "claude-sonnet-4-5" {
		t.Errorf("LLM.Model = %q, want claude-sonnet-4-5", cfg.LLM.Model)
	}
	if cfg.Schedule.Interval != 30*time.Minute {
		t.Errorf("Schedule.Interval = %v, want 30m", cfg.Schedule.Interval)
	}
	if cfg.Tutor.UserID != "alice" {
		t.Errorf("Tutor.UserID = %q, want alice", cfg.Tutor.UserID)
	}
	// Untouched sections keep their defaults.
	if cfg.Memory.Backend != "badger" {
		t.Errorf("Memory.Backend = %q, want badger", cfg.Memory.Backend)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, nil); err == nil {
		t.Fatal("Load() accepted a .toml file, want error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if err == nil {
		t.Fatal("Load() with missing file, want error")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want mention of missing file", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "llm:\n  provider: anthropic\n")

	t.Setenv("STUDYLOOP_LLM__PROVIDER", "openai")
	t.Setenv("STUDYLOOP_LLM__MAX_RPM", "30")
	t.Setenv("STUDYLOOP_SCHEDULE__INTERVAL", "90m")
	t.Setenv("STUDYLOOP_CONVERSATION__MAX_EXCHANGES", "5")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("LLM.Provider = %q, want openai (env over file)", cfg.LLM.Provider)
	}
	if cfg.LLM.MaxRPM != 30 {
		t.Errorf("LLM.MaxRPM = %d, want 30", cfg.LLM.MaxRPM)
	}
	if cfg.Schedule.Interval != 90*time.Minute {
		t.Errorf("Schedule.Interval = %v, want 90m", cfg.Schedule.Interval)
	}
	if cfg.Conversation.MaxExchanges != 5 {
		t.Errorf("Conversation.MaxExchanges = %d, want 5", cfg.Conversation.MaxExchanges)
	}
}

func TestOverridesBeatEnv(t *testing.T) {
	t.Setenv("STUDYLOOP_LLM__PROVIDER", "openai")

	cfg, err := Load("", map[string]interface{}{"llm.provider": "gemini"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("LLM.Provider = %q, want gemini (override over env)", cfg.LLM.Provider)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"STUDYLOOP_LLM__PROVIDER", "llm.provider"},
		{"STUDYLOOP_LLM__MAX_RPM", "llm.max_rpm"},
		{"STUDYLOOP_MEMORY__HTTP_BASE_URL", "memory.http_base_url"},
		{"STUDYLOOP_LOG__LEVEL", "log.level"},
	}

	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]interface{}
	}{
		{"unknown memory backend", map[string]interface{}{"memory.backend": "cassandra"}},
		{"unknown outcome driver", map[string]interface{}{"outcome.driver": "mongo"}},
		{"unknown log level", map[string]interface{}{"log.level": "loud"}},
		{"unknown llm provider", map[string]interface{}{"llm.provider": "replicate"}},
		{"zero exchanges", map[string]interface{}{"conversation.max_exchanges": 0}},
		{"empty subject", map[string]interface{}{"tutor.subject": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("", tt.overrides)
			if err == nil {
				t.Fatal("Load() accepted invalid config, want error")
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("error = %v, want ValidationErrors", err)
			}
			if len(verrs) == 0 {
				t.Fatal("ValidationErrors is empty")
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := Load("", map[string]interface{}{"memory.backend": "cassandra"})
	if err == nil {
		t.Fatal("Load() accepted invalid config, want error")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("error = %v, want oneof description", err)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
