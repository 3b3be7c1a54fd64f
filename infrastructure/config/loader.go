// Package config loads, validates, and assembles the runtime
// configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a configuration encoding.
type Format string

const (
	// FormatYAML is the YAML encoding.
	FormatYAML Format = "yaml"
	// FormatJSON is the JSON encoding.
	FormatJSON Format = "json"
)

// Loader parses configuration files into a validated Config.
type Loader struct {
	expandEnv bool
	strictEnv bool
	validate  bool
}

// LoaderOption adjusts loader behavior.
type LoaderOption func(*Loader)

// WithEnvExpansion toggles environment variable expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.expandEnv = enabled
	}
}

// WithStrictEnv makes references to unset environment variables an
// error.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.strictEnv = enabled
	}
}

// WithValidation toggles schema validation after defaults are applied.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.validate = enabled
	}
}

// NewLoader creates a loader. Env expansion and validation are on by
// default; strict env checking is off.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		expandEnv: true,
		validate:  true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile loads configuration from path, picking the format from the
// file extension.
func (l *Loader) LoadFile(path string) (*Config, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	format, err := formatForPath(path)
	if err != nil {
		return nil, err
	}
	return l.LoadBytes(data, format)
}

// LoadString loads configuration from an in-memory document.
func (l *Loader) LoadString(content string, format Format) (*Config, error) {
	return l.LoadBytes([]byte(content), format)
}

// LoadBytes decodes, defaults, and validates a configuration document.
// Defaults are applied before validation, so partial configs are fine.
func (l *Loader) LoadBytes(data []byte, format Format) (*Config, error) {
	if l.expandEnv {
		expanded, err := expandEnv(string(data), l.strictEnv)
		if err != nil {
			return nil, err
		}
		data = []byte(expanded)
	}

	cfg := &Config{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	case FormatJSON:
		err = json.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	cfg.ApplyDefaults()

	if l.validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func formatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
