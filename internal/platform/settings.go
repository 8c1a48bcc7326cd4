package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Settings is the CLI settings file. Flags override every field.
type Settings struct {
	Cache    string `yaml:"cache" toml:"cache"`
	Debounce string `yaml:"debounce" toml:"debounce"`
	LogLevel string `yaml:"log_level" toml:"log_level"`
}

// DefaultSettingsPath returns the first existing settings file in the user
// config directory, preferring YAML. It returns "" when there is none.
func DefaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"settings.yaml", "settings.yml", "settings.toml"} {
		path := filepath.Join(dir, "grove", name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadSettings decodes path as YAML or TOML by extension. A missing file
// yields zero settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &s)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		return s, fmt.Errorf("unsupported settings format: %s", filepath.Ext(path))
	}
	if err != nil {
		return s, fmt.Errorf("decode settings %s: %w", path, err)
	}
	return s, nil
}

// DebounceDuration parses Debounce. Empty means zero (the default window).
func (s Settings) DebounceDuration() (time.Duration, error) {
	if strings.TrimSpace(s.Debounce) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s.Debounce))
	if err != nil {
		return 0, fmt.Errorf("invalid debounce %q: %w", s.Debounce, err)
	}
	return d, nil
}

// Level maps LogLevel to a slog level. Unknown values are Info.
func (s Settings) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}
