package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	content := `
log:
  level: debug
  format: json
orchestrator:
  model: qwen2.5-7b-instruct
  max_turns: 5
  temperature: 0.1
models:
  gemini_model: gemini-2.5-flash
preferences:
  budget: 0.8
  privacy: true
cache:
  enabled: true
  ttl: 600
`
	loader := NewLoader()
	cfg, err := loader.LoadString(content, FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got: %s", cfg.Log.Level)
	}
	if cfg.Orchestrator.Model != "qwen2.5-7b-instruct" {
		t.Errorf("unexpected model: %s", cfg.Orchestrator.Model)
	}
	if cfg.Orchestrator.MaxTurns != 5 {
		t.Errorf("expected 5 max turns, got: %d", cfg.Orchestrator.MaxTurns)
	}
	if !cfg.Preferences.Privacy {
		t.Error("expected privacy enabled")
	}
	if cfg.Preferences.Budget != 0.8 {
		t.Errorf("expected 0.8 budget, got: %f", cfg.Preferences.Budget)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 600 {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}

	// Defaults fill the rest.
	if cfg.LMStudio.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("expected LM Studio default, got: %s", cfg.LMStudio.BaseURL)
	}
	if cfg.VectorStore.ChunkSize != 500 {
		t.Errorf("expected chunk size default, got: %d", cfg.VectorStore.ChunkSize)
	}
}

func TestLoadJSON(t *testing.T) {
	content := `{"orchestrator": {"max_turns": 3}, "preferences": {"quality": 0.9}}`

	loader := NewLoader()
	cfg, err := loader.LoadString(content, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Orchestrator.MaxTurns != 3 {
		t.Errorf("expected 3 max turns, got: %d", cfg.Orchestrator.MaxTurns)
	}
	if cfg.Preferences.Quality != 0.9 {
		t.Errorf("expected 0.9 quality, got: %f", cfg.Preferences.Quality)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	loader := NewLoader()
	_, err := loader.LoadString("orchestrator: [not a mapping", FormatYAML)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got: %v", err)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	content := `
preferences:
  budget: 2.0
`
	loader := NewLoader()
	_, err := loader.LoadString(content, FormatYAML)
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got: %v", err)
	}
}

func TestLoadValidationDisabled(t *testing.T) {
	content := `
preferences:
  budget: 2.0
`
	loader := NewLoader(WithValidation(false))
	cfg, err := loader.LoadString(content, FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Preferences.Budget != 2.0 {
		t.Errorf("expected raw budget preserved, got: %f", cfg.Preferences.Budget)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	loader := NewLoader()
	_, err := loader.LoadFile("/nonexistent/orchestra.yaml")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got: %v", err)
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	_, err := loader.LoadFile(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got: %v", err)
	}
}

func TestLoadFileDirectory(t *testing.T) {
	loader := NewLoader()
	_, err := loader.LoadFile(t.TempDir())
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got: %v", err)
	}
}

func TestLoadFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orchestra.yaml")
	content := `
orchestrator:
  model: test-model
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	cfg, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Orchestrator.Model != "test-model" {
		t.Errorf("unexpected model: %s", cfg.Orchestrator.Model)
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("ORCH_TEST_KEY", "secret-key")

	content := `
models:
  gemini_api_key: ${ORCH_TEST_KEY}
`
	loader := NewLoader()
	cfg, err := loader.LoadString(content, FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Models.GeminiAPIKey != "secret-key" {
		t.Errorf("expected env expansion, got: %s", cfg.Models.GeminiAPIKey)
	}
}

func TestLoadEnvExpansionDisabled(t *testing.T) {
	t.Setenv("ORCH_TEST_KEY", "secret-key")

	content := `
models:
  gemini_api_key: ${ORCH_TEST_KEY}
`
	loader := NewLoader(WithEnvExpansion(false))
	cfg, err := loader.LoadString(content, FormatYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Models.GeminiAPIKey != "${ORCH_TEST_KEY}" {
		t.Errorf("expected literal value, got: %s", cfg.Models.GeminiAPIKey)
	}
}
