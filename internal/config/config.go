// Package config loads snipline settings from the data directory.
package config

import (
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	apperrors "github.com/snipline/snipline/internal/errors"
)

const configFile = "config.yaml"

// Config is the user-editable configuration.
type Config struct {
	// RemoteURL is the library endpoint used by sync; empty disables it.
	RemoteURL string `yaml:"remote_url,omitempty"`
	// TypeaheadLimit caps the suggestion popup, default 7.
	TypeaheadLimit int `yaml:"typeahead_limit,omitempty"`
	// DetectPatterns maps region labels to element-descriptor regexps for
	// the compose field scanner.
	DetectPatterns map[string]string `yaml:"detect_patterns,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		TypeaheadLimit: 7,
		DetectPatterns: map[string]string{
			"subject": `name="subject`,
			"body":    `role="textbox"`,
		},
	}
}

// Load reads dir/config.yaml. A missing file yields Default; unset fields
// fall back to their defaults.
func Load(dir string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Default(), apperrors.StorageError("read config", err)
	}

	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), apperrors.Wrap(err, apperrors.ErrCodeFileCorrupted,
			"Config file does not parse")
	}
	if cfg.TypeaheadLimit <= 0 {
		cfg.TypeaheadLimit = Default().TypeaheadLimit
	}
	if len(cfg.DetectPatterns) == 0 {
		cfg.DetectPatterns = Default().DetectPatterns
	}
	return cfg, nil
}

// Save writes the configuration to dir/config.yaml.
func Save(dir string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return apperrors.StorageError("encode config", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.StorageError("create data directory", err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), data, 0644); err != nil {
		return apperrors.StorageError("write config", err)
	}
	return nil
}

// CompiledPatterns compiles DetectPatterns, skipping and reporting the ones
// that do not compile. Expansion works without detection, so a bad pattern
// degrades rather than fails.
func (c Config) CompiledPatterns() map[string]*regexp.Regexp {
	compiled := make(map[string]*regexp.Regexp, len(c.DetectPatterns))
	for label, pat := range c.DetectPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			apperrors.LogDegraded(apperrors.Wrap(err, apperrors.ErrCodeDetectionFailure,
				"Detect pattern for "+label+" does not compile"))
			continue
		}
		compiled[label] = re
	}
	return compiled
}
