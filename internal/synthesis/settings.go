package synthesis

import "github.com/murmurlabs/murmur-speech/internal/config"

// Version is reported to the synthesis endpoint as part of the user agent.
const Version = "0.1.0"

const (
	// DefaultSampleRate matches the provider's native output rate.
	DefaultSampleRate = 24000

	// DefaultMaxWordsPerChunk bounds how many words each synthesis chunk
	// carries when no natural break is available.
	DefaultMaxWordsPerChunk = 3

	// audioBufferSize is the fixed size of PCM buffers handed downstream.
	audioBufferSize = 1024

	channels = 1

	defaultLocale = "en-US"
)

// Settings are the per-client synthesis parameters. They are resolved once
// at construction and read-only afterwards, so a single client is safe to
// share across concurrent synthesize calls.
type Settings struct {
	Pitch            string
	Rate             string
	Volume           string
	Emphasis         string
	Language         string
	Gender           string
	Style            string
	Voice            string
	SampleRate       int
	MaxWordsPerChunk int
}

// SettingsFromConfig resolves configuration into immutable settings,
// translating the abstract language identifier into a provider locale.
func SettingsFromConfig(cfg config.SynthesisConfig) Settings {
	s := Settings{
		Pitch:            cfg.Options.Pitch,
		Rate:             cfg.Options.Rate,
		Volume:           cfg.Options.Volume,
		Emphasis:         cfg.Options.Emphasis,
		Gender:           cfg.Options.Gender,
		Style:            cfg.Options.Style,
		Voice:            cfg.Voice,
		SampleRate:       cfg.SampleRate,
		MaxWordsPerChunk: cfg.MaxWordsPerChunk,
		Language:         defaultLocale,
	}
	if cfg.Options.Language != "" {
		if locale, ok := LookupLocale(cfg.Options.Language); ok {
			s.Language = locale
		}
	}
	if s.SampleRate <= 0 {
		s.SampleRate = DefaultSampleRate
	}
	if s.MaxWordsPerChunk <= 0 {
		s.MaxWordsPerChunk = DefaultMaxWordsPerChunk
	}
	return s
}
