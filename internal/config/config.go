package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel       string `yaml:"log_level"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
	PrometheusBind string `yaml:"prometheus_bind"`
}

type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type BusConfig struct {
	Embedded       bool     `yaml:"embedded"`
	Port           int      `yaml:"port"`
	Servers        []string `yaml:"servers"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type NodeConfig struct {
	ID                string `yaml:"id"`
	Role              string `yaml:"role"`
	HeartbeatInterval int    `yaml:"heartbeat_interval_ms"`
	HeartbeatTimeout  int    `yaml:"heartbeat_timeout_ms"`
}

// SynthesisOptions are the prosody and voice settings applied to every
// utterance. All fields are optional; empty values omit the matching
// SSML wrapper tag.
type SynthesisOptions struct {
	Pitch     string `yaml:"pitch"`
	Rate      string `yaml:"rate"`
	Volume    string `yaml:"volume"`
	Emphasis  string `yaml:"emphasis"`
	Language  string `yaml:"language"`
	Gender    string `yaml:"gender"`
	Style     string `yaml:"style"`
	ChunkSize int    `yaml:"chunk_size"`
}

type SynthesisConfig struct {
	Mode             string           `yaml:"mode"` // google, exec, mock
	Voice            string           `yaml:"voice"`
	SampleRate       int              `yaml:"sample_rate"`
	MaxWordsPerChunk int              `yaml:"max_words_per_chunk"`
	CredentialsJSON  string           `yaml:"credentials_json"`
	CredentialsPath  string           `yaml:"credentials_path"`
	Command          string           `yaml:"command"`
	Options          SynthesisOptions `yaml:"options"`
}

type SpeechConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Target    string `yaml:"target"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

type UtteranceLogConfig struct {
	Path          string `yaml:"path"`
	RetentionMode string `yaml:"retention_mode"`
	RetentionDays int    `yaml:"retention_days"`
	MaxUtterances int    `yaml:"max_utterances"`
	VacuumOnStart bool   `yaml:"vacuum_on_start"`
}

type Config struct {
	RuntimeName  string             `yaml:"runtime_name"`
	Environment  string             `yaml:"environment"`
	HTTP         HTTPConfig         `yaml:"http"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Bus          BusConfig          `yaml:"bus"`
	Node         NodeConfig         `yaml:"node"`
	Synthesis    SynthesisConfig    `yaml:"synthesis"`
	Speech       SpeechConfig       `yaml:"speech"`
	UtteranceLog UtteranceLogConfig `yaml:"utterance_log"`
}

func Default() Config {
	return Config{
		RuntimeName: "murmur-speech",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Telemetry: TelemetryConfig{
			LogLevel:       "info",
			OTLPEndpoint:   "",
			OTLPInsecure:   true,
			PrometheusBind: ":9091",
		},
		Bus: BusConfig{
			Embedded:       true,
			Port:           4222,
			Servers:        []string{"nats://localhost:4222"},
			ConnectTimeout: 2000,
		},
		Node: NodeConfig{
			ID:                "murmur-node-1",
			Role:              "speech",
			HeartbeatInterval: 2000,
			HeartbeatTimeout:  6000,
		},
		Synthesis: SynthesisConfig{
			Mode:             "google",
			Voice:            "en-US-Neural2-A",
			SampleRate:       24000,
			MaxWordsPerChunk: 3,
			Options: SynthesisOptions{
				Language: "en",
			},
		},
		Speech: SpeechConfig{
			Enabled:   true,
			Target:    "default",
			TimeoutMS: 45000,
		},
		UtteranceLog: UtteranceLogConfig{
			Path:          "./data/murmur-utterances.db",
			RetentionMode: "recent",
			RetentionDays: 30,
			MaxUtterances: 10000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.RuntimeName, "MURMUR_RUNTIME_NAME")
	overrideString(&cfg.Environment, "MURMUR_RUNTIME_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "MURMUR_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "MURMUR_HTTP_PORT")
	overrideString(&cfg.Telemetry.LogLevel, "MURMUR_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "MURMUR_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "MURMUR_TELEMETRY_OTLP_INSECURE")
	overrideString(&cfg.Telemetry.PrometheusBind, "MURMUR_TELEMETRY_PROMETHEUS_BIND")
	overrideBool(&cfg.Bus.Embedded, "MURMUR_BUS_EMBEDDED")
	overrideInt(&cfg.Bus.Port, "MURMUR_BUS_PORT")
	overrideStringSlice(&cfg.Bus.Servers, "MURMUR_BUS_SERVERS")
	overrideString(&cfg.Bus.Username, "MURMUR_BUS_USERNAME")
	overrideString(&cfg.Bus.Password, "MURMUR_BUS_PASSWORD")
	overrideString(&cfg.Bus.Token, "MURMUR_BUS_TOKEN")
	overrideBool(&cfg.Bus.TLSInsecure, "MURMUR_BUS_TLS_INSECURE")
	overrideInt(&cfg.Bus.ConnectTimeout, "MURMUR_BUS_CONNECT_TIMEOUT_MS")
	overrideString(&cfg.Node.ID, "MURMUR_NODE_ID")
	overrideString(&cfg.Node.Role, "MURMUR_NODE_ROLE")
	overrideInt(&cfg.Node.HeartbeatInterval, "MURMUR_NODE_HEARTBEAT_INTERVAL_MS")
	overrideInt(&cfg.Node.HeartbeatTimeout, "MURMUR_NODE_HEARTBEAT_TIMEOUT_MS")
	overrideString(&cfg.Synthesis.Mode, "MURMUR_SYNTHESIS_MODE")
	overrideString(&cfg.Synthesis.Voice, "MURMUR_SYNTHESIS_VOICE")
	overrideInt(&cfg.Synthesis.SampleRate, "MURMUR_SYNTHESIS_SAMPLE_RATE")
	overrideInt(&cfg.Synthesis.MaxWordsPerChunk, "MURMUR_SYNTHESIS_MAX_WORDS_PER_CHUNK")
	overrideString(&cfg.Synthesis.CredentialsJSON, "MURMUR_SYNTHESIS_CREDENTIALS_JSON")
	overrideString(&cfg.Synthesis.CredentialsPath, "MURMUR_SYNTHESIS_CREDENTIALS_PATH")
	overrideString(&cfg.Synthesis.Command, "MURMUR_SYNTHESIS_COMMAND")
	overrideString(&cfg.Synthesis.Options.Pitch, "MURMUR_SYNTHESIS_PITCH")
	overrideString(&cfg.Synthesis.Options.Rate, "MURMUR_SYNTHESIS_RATE")
	overrideString(&cfg.Synthesis.Options.Volume, "MURMUR_SYNTHESIS_VOLUME")
	overrideString(&cfg.Synthesis.Options.Emphasis, "MURMUR_SYNTHESIS_EMPHASIS")
	overrideString(&cfg.Synthesis.Options.Language, "MURMUR_SYNTHESIS_LANGUAGE")
	overrideString(&cfg.Synthesis.Options.Gender, "MURMUR_SYNTHESIS_GENDER")
	overrideString(&cfg.Synthesis.Options.Style, "MURMUR_SYNTHESIS_STYLE")
	overrideBool(&cfg.Speech.Enabled, "MURMUR_SPEECH_ENABLED")
	overrideString(&cfg.Speech.Target, "MURMUR_SPEECH_TARGET")
	overrideInt(&cfg.Speech.TimeoutMS, "MURMUR_SPEECH_TIMEOUT_MS")
	overrideString(&cfg.UtteranceLog.Path, "MURMUR_UTTERANCE_LOG_PATH")
	overrideString(&cfg.UtteranceLog.RetentionMode, "MURMUR_UTTERANCE_LOG_RETENTION_MODE")
	overrideInt(&cfg.UtteranceLog.RetentionDays, "MURMUR_UTTERANCE_LOG_RETENTION_DAYS")
	overrideInt(&cfg.UtteranceLog.MaxUtterances, "MURMUR_UTTERANCE_LOG_MAX_UTTERANCES")
	overrideBool(&cfg.UtteranceLog.VacuumOnStart, "MURMUR_UTTERANCE_LOG_VACUUM_ON_START")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.RuntimeName == "" {
		return errors.New("runtime_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.Bus.Embedded {
		if cfg.Bus.Port <= 0 || cfg.Bus.Port > 65535 {
			return errors.New("bus.port must be between 1 and 65535 when embedded mode is enabled")
		}
	} else {
		if len(cfg.Bus.Servers) == 0 {
			return errors.New("bus.servers must not be empty when embedded mode is disabled")
		}
	}
	if cfg.Node.ID == "" {
		return errors.New("node.id must not be empty")
	}
	if cfg.Node.HeartbeatInterval <= 0 {
		return errors.New("node.heartbeat_interval_ms must be positive")
	}
	if cfg.Node.HeartbeatTimeout <= cfg.Node.HeartbeatInterval {
		return errors.New("node.heartbeat_timeout_ms must be greater than heartbeat interval")
	}
	if cfg.Telemetry.PrometheusBind == "" {
		return errors.New("telemetry.prometheus_bind must not be empty")
	}
	switch cfg.Synthesis.Mode {
	case "google", "exec", "mock":
	default:
		return errors.New("synthesis.mode must be one of google|exec|mock")
	}
	if cfg.Synthesis.Voice == "" {
		return errors.New("synthesis.voice must not be empty")
	}
	if cfg.Synthesis.SampleRate <= 0 {
		return errors.New("synthesis.sample_rate must be positive")
	}
	if cfg.Synthesis.MaxWordsPerChunk <= 0 {
		return errors.New("synthesis.max_words_per_chunk must be positive")
	}
	if cfg.Synthesis.Mode == "exec" && cfg.Synthesis.Command == "" {
		return errors.New("synthesis.command must be set when mode=exec")
	}
	if cfg.Speech.Enabled && cfg.Speech.TimeoutMS <= 0 {
		return errors.New("speech.timeout_ms must be positive")
	}
	switch cfg.UtteranceLog.RetentionMode {
	case "ephemeral", "recent", "persistent":
	default:
		return errors.New("utterance_log.retention_mode must be one of ephemeral|recent|persistent")
	}
	if cfg.UtteranceLog.RetentionMode != "ephemeral" && cfg.UtteranceLog.Path == "" {
		return errors.New("utterance_log.path must not be empty")
	}
	if cfg.UtteranceLog.RetentionDays < 0 {
		return errors.New("utterance_log.retention_days must be >= 0")
	}
	return nil
}
