package config

import (
	"context"
	"reflect"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func build(t *testing.T, cfg *Config) *Assembly {
	t.Helper()

	assembly, err := NewBuilder(cfg).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() {
		if err := assembly.Close(context.Background()); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return assembly
}

func TestBuildDefaults(t *testing.T) {
	assembly := build(t, Default())

	if assembly.Engine == nil {
		t.Fatal("Engine is nil")
	}
	if assembly.Provider == nil || assembly.Provider.Name() != "lmstudio" {
		t.Errorf("Provider = %v", assembly.Provider)
	}
	if assembly.Embedder != nil {
		t.Error("Embedder must be nil without a Gemini API key")
	}
	if assembly.Observability != nil {
		t.Error("Observability must be nil when disabled")
	}

	want := []string{"finish", "web_search", "web_fetch", "sandbox"}
	if got := assembly.Registry.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestBuildNilConfig(t *testing.T) {
	assembly := build(t, nil)

	if assembly.Engine == nil {
		t.Fatal("Engine is nil")
	}
}

func TestBuildWithDelegates(t *testing.T) {
	cfg := Default()
	cfg.Models.Phi4Model = "phi-4"
	cfg.Models.GeminiModel = "gemini-2.5-flash"
	cfg.Models.GeminiAPIKey = "test-key"

	assembly := build(t, cfg)

	if assembly.Embedder == nil {
		t.Error("Embedder must be wired from the Gemini provider")
	}
	for _, name := range []string{"phi4", "gemini", "local_search"} {
		if !assembly.Registry.Has(name) {
			t.Errorf("registry missing %s", name)
		}
	}
}

func TestBuildWithMemoryCache(t *testing.T) {
	cfg := Default()
	cfg.Cache.Enabled = true

	assembly := build(t, cfg)

	if assembly.Engine == nil {
		t.Fatal("Engine is nil")
	}
}

func TestBuildWithRedisCache(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := Default()
	cfg.Cache.Enabled = true
	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Address = srv.Addr()

	assembly := build(t, cfg)

	if assembly.Engine == nil {
		t.Fatal("Engine is nil")
	}
}

func TestBuildRedisCacheUnreachable(t *testing.T) {
	cfg := Default()
	cfg.Cache.Enabled = true
	cfg.Cache.Backend = "redis"
	cfg.Cache.Redis.Address = "127.0.0.1:1"

	if _, err := NewBuilder(cfg).Build(); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestBuildWithObservability(t *testing.T) {
	cfg := Default()
	cfg.Observability.Enabled = true
	cfg.Observability.Exporter = "noop"

	assembly := build(t, cfg)

	if assembly.Observability == nil {
		t.Fatal("Observability is nil")
	}
	if assembly.Observability.Tracer() == nil {
		t.Error("Tracer is nil")
	}
}

func TestBuildWithFallback(t *testing.T) {
	cfg := Default()
	cfg.Models.Phi4Model = "phi-4"
	cfg.Orchestrator.FallbackCapability = "phi4"

	assembly := build(t, cfg)

	if assembly.Engine == nil {
		t.Fatal("Engine is nil")
	}
}
