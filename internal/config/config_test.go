package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RuntimeName != "murmur-speech" {
		t.Fatalf("unexpected runtime name: %s", cfg.RuntimeName)
	}
	if cfg.Bus.Servers[0] != "nats://localhost:4222" {
		t.Fatalf("expected default server, got %v", cfg.Bus.Servers)
	}
	if cfg.Synthesis.Mode != "google" {
		t.Fatalf("expected google mode by default, got %s", cfg.Synthesis.Mode)
	}
	if cfg.Synthesis.MaxWordsPerChunk != 3 {
		t.Fatalf("expected word bound 3, got %d", cfg.Synthesis.MaxWordsPerChunk)
	}
	if cfg.Synthesis.SampleRate != 24000 {
		t.Fatalf("expected sample rate 24000, got %d", cfg.Synthesis.SampleRate)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "murmur.yaml")
	doc := `
synthesis:
  mode: mock
  voice: en-GB-Neural2-B
  max_words_per_chunk: 5
  options:
    language: en-GB
    rate: "1.1"
speech:
  timeout_ms: 10000
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Synthesis.Mode != "mock" || cfg.Synthesis.Voice != "en-GB-Neural2-B" {
		t.Fatalf("file values not applied: %+v", cfg.Synthesis)
	}
	if cfg.Synthesis.MaxWordsPerChunk != 5 {
		t.Fatalf("expected word bound 5, got %d", cfg.Synthesis.MaxWordsPerChunk)
	}
	if cfg.Synthesis.Options.Language != "en-GB" || cfg.Synthesis.Options.Rate != "1.1" {
		t.Fatalf("options not applied: %+v", cfg.Synthesis.Options)
	}
	if cfg.Speech.TimeoutMS != 10000 {
		t.Fatalf("expected timeout override, got %d", cfg.Speech.TimeoutMS)
	}
	// Untouched sections keep their defaults.
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("expected default http port, got %d", cfg.HTTP.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MURMUR_BUS_SERVERS", "nats://one:4222, nats://two:4222")
	t.Setenv("MURMUR_BUS_USERNAME", "alice")
	t.Setenv("MURMUR_BUS_PASSWORD", "secret")
	t.Setenv("MURMUR_BUS_TLS_INSECURE", "true")
	t.Setenv("MURMUR_NODE_ID", "test-node")
	t.Setenv("MURMUR_SYNTHESIS_MODE", "mock")
	t.Setenv("MURMUR_SYNTHESIS_VOICE", "en-AU-Neural2-A")
	t.Setenv("MURMUR_SYNTHESIS_MAX_WORDS_PER_CHUNK", "4")
	t.Setenv("MURMUR_SYNTHESIS_LANGUAGE", "en-AU")
	t.Setenv("MURMUR_SPEECH_ENABLED", "false")
	t.Setenv("MURMUR_UTTERANCE_LOG_RETENTION_MODE", "ephemeral")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Bus.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %v", cfg.Bus.Servers)
	}
	if cfg.Bus.Username != "alice" || cfg.Bus.Password != "secret" {
		t.Fatal("expected credentials override")
	}
	if !cfg.Bus.TLSInsecure {
		t.Fatal("expected tls insecure override true")
	}
	if cfg.Node.ID != "test-node" {
		t.Fatal("expected node id override")
	}
	if cfg.Synthesis.Mode != "mock" || cfg.Synthesis.Voice != "en-AU-Neural2-A" {
		t.Fatalf("synthesis overrides not applied: %+v", cfg.Synthesis)
	}
	if cfg.Synthesis.MaxWordsPerChunk != 4 {
		t.Fatalf("expected word bound 4, got %d", cfg.Synthesis.MaxWordsPerChunk)
	}
	if cfg.Synthesis.Options.Language != "en-AU" {
		t.Fatalf("expected language override, got %s", cfg.Synthesis.Options.Language)
	}
	if cfg.Speech.Enabled {
		t.Fatal("expected speech disabled")
	}
	if cfg.UtteranceLog.RetentionMode != "ephemeral" {
		t.Fatalf("expected retention override, got %s", cfg.UtteranceLog.RetentionMode)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad synthesis mode", func(c *Config) { c.Synthesis.Mode = "shout" }},
		{"empty voice", func(c *Config) { c.Synthesis.Voice = "" }},
		{"zero sample rate", func(c *Config) { c.Synthesis.SampleRate = 0 }},
		{"zero word bound", func(c *Config) { c.Synthesis.MaxWordsPerChunk = 0 }},
		{"exec without command", func(c *Config) { c.Synthesis.Mode = "exec"; c.Synthesis.Command = "" }},
		{"bad retention mode", func(c *Config) { c.UtteranceLog.RetentionMode = "forever" }},
		{"bad http port", func(c *Config) { c.HTTP.Port = 0 }},
		{"empty node id", func(c *Config) { c.Node.ID = "" }},
		{"zero speech timeout", func(c *Config) { c.Speech.TimeoutMS = 0 }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := validate(cfg); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
