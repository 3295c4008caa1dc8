package synthesis

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mattn/go-shellwords"
	"github.com/murmurlabs/murmur-speech/internal/config"
)

// ExecSynthesizer runs a local TTS subprocess per utterance. The command
// receives a JSON request on stdin and must write a WAV file to stdout; the
// decoded PCM is replayed through the same fixed-size buffer pipeline as
// the streaming backend.
type ExecSynthesizer struct {
	cmd      []string
	settings Settings
	metrics  *Metrics
	logger   *slog.Logger
}

type execRequest struct {
	Text       string `json:"text"`
	Voice      string `json:"voice"`
	SampleRate int    `json:"sample_rate"`
}

func NewExecSynthesizer(cfg config.SynthesisConfig, metrics *Metrics, logger *slog.Logger) (*ExecSynthesizer, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse synthesis command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("synthesis command is empty")
	}
	return &ExecSynthesizer{
		cmd:      args,
		settings: SettingsFromConfig(cfg),
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "synthesis-exec")),
	}, nil
}

func (e *ExecSynthesizer) Synthesize(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event, eventBuffer)
	go e.run(ctx, req, events)
	return events
}

func (e *ExecSynthesizer) Close() error { return nil }

func (e *ExecSynthesizer) run(ctx context.Context, req Request, events chan<- Event) {
	defer close(events)

	voice := e.settings.Voice
	if req.Voice != "" {
		voice = req.Voice
	}

	if !emit(ctx, events, Event{Type: EventStarted}) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		emit(ctx, events, Event{Type: EventStopped})
		return
	}

	e.metrics.RecordUsage(ctx, voice, len(req.Text))

	payload, err := json.Marshal(execRequest{
		Text:       req.Text,
		Voice:      voice,
		SampleRate: e.settings.SampleRate,
	})
	if err != nil {
		e.fail(ctx, events, voice, err)
		return
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.cmd[0], e.cmd[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.fail(ctx, events, voice, fmt.Errorf("run synthesis command: %w", err))
		return
	}

	decoder := wav.NewDecoder(bytes.NewReader(out))
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		e.fail(ctx, events, voice, fmt.Errorf("decode synthesis output: %w", err))
		return
	}
	pcm := pcmBytes(buf)
	if len(pcm) > 0 {
		e.metrics.RecordTTFB(ctx, voice, time.Since(start))
	}

	sampleRate := e.settings.SampleRate
	if buf.Format != nil && buf.Format.SampleRate > 0 {
		sampleRate = buf.Format.SampleRate
	}

	for off := 0; off < len(pcm); off += audioBufferSize {
		end := off + audioBufferSize
		if end > len(pcm) {
			end = len(pcm)
		}
		if ctx.Err() != nil {
			return
		}
		if !emit(ctx, events, Event{
			Type:       EventAudio,
			PCM:        pcm[off:end],
			SampleRate: sampleRate,
			Channels:   channels,
		}) {
			return
		}
	}

	if ctx.Err() != nil {
		return
	}
	e.metrics.RecordUtterance(ctx, voice)
	emit(ctx, events, Event{Type: EventStopped, TTFB: time.Since(start)})
}

func (e *ExecSynthesizer) fail(ctx context.Context, events chan<- Event, voice string, err error) {
	e.logger.Error("synthesis failed", slog.String("voice", voice), slog.String("error", err.Error()))
	e.metrics.RecordError(ctx, voice)
	emit(ctx, events, Event{Type: EventError, Err: err})
}

// pcmBytes converts a decoded sample buffer to 16-bit little-endian PCM.
func pcmBytes(buf *audio.IntBuffer) []byte {
	if buf == nil || len(buf.Data) == 0 {
		return nil
	}
	out := make([]byte, 2*len(buf.Data))
	for i, sample := range buf.Data {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(sample)))
	}
	return out
}
