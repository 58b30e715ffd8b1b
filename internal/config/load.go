package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix for configuration environment variables.
	EnvPrefix = "STUDYLOOP_"
	// Delimiter separates nested configuration keys.
	Delimiter = "."
)

// Load builds the configuration by layering, lowest priority first:
// built-in defaults, the YAML file at path (or a standard location when
// path is empty), STUDYLOOP_-prefixed environment variables, and finally
// the given overrides (typically command-line flags).
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(Delimiter)

	if err := k.Load(confmap.Provider(defaults(), Delimiter), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	} else if found := findDefaultFile(); found != "" {
		if err := loadFile(k, found); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, Delimiter, envTransform), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, Delimiter), nil); err != nil {
			return nil, fmt.Errorf("apply overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "mapstructure"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadFile loads one YAML configuration file into k.
func loadFile(k *koanf.Koanf, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", path)
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

// findDefaultFile returns the first configuration file present in a
// standard location, or "" when none exists.
func findDefaultFile() string {
	candidates := []string{"studyloop.yaml", "studyloop.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "studyloop", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps an environment variable name to a configuration key.
// A double underscore separates nesting levels so that single underscores
// survive inside key names: STUDYLOOP_LLM__MAX_RPM becomes llm.max_rpm.
func envTransform(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", Delimiter)
}
