package engine

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/wikiwsd/core/errors"
)

// Config selects and configures an annotation engine.
//
// Example YAML:
//
//	kind: process
//	language: de
//	command: python3
//	args: ["-m", "tagger_server", "--model", "de_core_news_lg"]
//	timeout: 30s
type Config struct {
	// Kind is the registered engine kind ("rules", "sidecar", "process").
	Kind string `yaml:"kind"`

	// Language is the language code passed to the engine (e.g. "en", "de").
	Language string `yaml:"language"`

	// Lemmas is an optional path to a "form,lemma" CSV dictionary.
	Lemmas string `yaml:"lemmas"`

	// URL is the base URL of a sidecar tagger service.
	URL string `yaml:"url"`

	// Command and Args start an external tagger process.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`

	// Timeout bounds a single Annotate call for remote and process engines.
	Timeout time.Duration `yaml:"timeout"`

	// Properties are passed through to the engine untouched.
	Properties map[string]string `yaml:"properties"`
}

// DefaultTimeout is used when Config.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// DefaultConfig returns the built-in rule engine for English.
func DefaultConfig() Config {
	return Config{
		Kind:     "rules",
		Language: "en",
		Timeout:  DefaultTimeout,
	}
}

// Validate checks that the fields required by Kind are present.
func (c Config) Validate() error {
	switch c.Kind {
	case "":
		return errors.NewValidation("kind", "must not be empty")
	case "sidecar":
		if c.URL == "" {
			return errors.NewValidation("url", "required for sidecar engine")
		}
	case "process":
		if c.Command == "" {
			return errors.NewValidation("command", "required for process engine")
		}
	}
	return nil
}

// EffectiveTimeout returns Timeout or DefaultTimeout when unset.
func (c Config) EffectiveTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Describe identifies the configuration for run records and annotation cache
// keys, e.g. "rules/de" or "process/de:python3 -m tagger".
func (c Config) Describe() string {
	desc := c.Kind + "/" + c.Language
	switch {
	case c.URL != "":
		desc += ":" + c.URL
	case c.Command != "":
		desc += ":" + strings.Join(append([]string{c.Command}, c.Args...), " ")
	}
	if c.Lemmas != "" {
		desc += "+" + c.Lemmas
	}
	if len(c.Properties) > 0 {
		keys := make([]string, 0, len(c.Properties))
		for k := range c.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			desc += ";" + k + "=" + c.Properties[k]
		}
	}
	return desc
}

// LoadConfig reads an engine configuration from a YAML file.
// Missing fields fall back to DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.NewIO("read", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &errors.ParseError{Format: "YAML", Path: path, Message: err.Error(), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("engine config %s: %w", path, err)
	}
	return cfg, nil
}
