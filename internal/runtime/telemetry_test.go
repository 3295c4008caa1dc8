package runtime

import (
	"log/slog"
	"testing"

	"github.com/murmurlabs/murmur-speech/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		" debug ": slog.LevelDebug,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTelemetryResourceAttributes(t *testing.T) {
	cfg := config.Default()
	cfg.Node.ID = "murmur-kitchen"
	cfg.Synthesis.Mode = "mock"

	res, err := telemetryResource(cfg)
	if err != nil {
		t.Fatalf("telemetryResource failed: %v", err)
	}

	attrs := make(map[string]string)
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	if attrs["service.name"] != cfg.RuntimeName {
		t.Fatalf("service.name = %q, want %q", attrs["service.name"], cfg.RuntimeName)
	}
	if attrs["service.version"] == "" {
		t.Fatal("resource must carry a service version")
	}
	if attrs["murmur.node.id"] != "murmur-kitchen" {
		t.Fatalf("murmur.node.id = %q, want murmur-kitchen", attrs["murmur.node.id"])
	}
	if attrs["murmur.synthesis.mode"] != "mock" {
		t.Fatalf("murmur.synthesis.mode = %q, want mock", attrs["murmur.synthesis.mode"])
	}
}
