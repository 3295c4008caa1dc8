package synthesis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// eventBuffer bounds the event channel so a slow consumer backpressures
// the driver between buffer emissions.
const eventBuffer = 16

// Streamer drives the duplex streaming interaction with the synthesis
// endpoint: it sends the request sequence from a producer goroutine,
// drains the response sequence, measures time to first byte, and
// re-chunks audio into fixed-size buffers for downstream consumption.
type Streamer struct {
	opener   streamOpener
	settings Settings
	metrics  *Metrics
	logger   *slog.Logger
}

func newStreamer(opener streamOpener, settings Settings, metrics *Metrics, logger *slog.Logger) *Streamer {
	return &Streamer{
		opener:   opener,
		settings: settings,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "synthesis-streamer")),
	}
}

// Settings returns the resolved, read-only synthesis settings.
func (s *Streamer) Settings() Settings {
	return s.settings
}

func (s *Streamer) Synthesize(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event, eventBuffer)
	go s.run(ctx, req, events)
	return events
}

func (s *Streamer) Close() error {
	return s.opener.close()
}

func (s *Streamer) run(ctx context.Context, req Request, events chan<- Event) {
	defer close(events)

	settings := s.settings
	if req.Voice != "" {
		settings.Voice = req.Voice
	}

	if !emit(ctx, events, Event{Type: EventStarted}) {
		return
	}

	chunks := ChunkText(req.Text, settings.MaxWordsPerChunk)
	if strings.TrimSpace(req.Text) == "" || len(chunks) == 0 {
		emit(ctx, events, Event{Type: EventStopped})
		return
	}

	s.metrics.RecordUsage(ctx, settings.Voice, len(req.Text))

	stream, err := s.opener.openStream(ctx)
	if err != nil {
		s.fail(ctx, events, settings.Voice, fmt.Errorf("open synthesis stream: %w", err))
		return
	}

	reqs := buildRequests(settings, chunks)
	sendErr := make(chan error, 1)
	go func() {
		for _, req := range reqs {
			if ctx.Err() != nil {
				sendErr <- ctx.Err()
				return
			}
			if err := stream.Send(req); err != nil {
				sendErr <- fmt.Errorf("send synthesis request: %w", err)
				return
			}
		}
		sendErr <- stream.CloseSend()
	}()

	start := time.Now()
	var ttfb time.Duration
	ttfbRecorded := false

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.fail(ctx, events, settings.Voice, fmt.Errorf("receive synthesis audio: %w", err))
			return
		}

		// The timer stops exactly once per call, on the first response.
		if !ttfbRecorded {
			ttfb = time.Since(start)
			s.metrics.RecordTTFB(ctx, settings.Voice, ttfb)
			ttfbRecorded = true
		}

		audio := resp.GetAudioContent()
		for off := 0; off < len(audio); off += audioBufferSize {
			end := off + audioBufferSize
			if end > len(audio) {
				end = len(audio)
			}
			if ctx.Err() != nil {
				return
			}
			if !emit(ctx, events, Event{
				Type:       EventAudio,
				PCM:        audio[off:end],
				SampleRate: settings.SampleRate,
				Channels:   channels,
			}) {
				return
			}
		}
	}

	if err := <-sendErr; err != nil {
		if ctx.Err() != nil {
			return
		}
		s.fail(ctx, events, settings.Voice, err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	s.metrics.RecordUtterance(ctx, settings.Voice)
	emit(ctx, events, Event{Type: EventStopped, TTFB: ttfb})
}

// fail converts any failure into a single terminal error event. The call's
// sequence ends without a stop marker; retrying is the caller's decision.
func (s *Streamer) fail(ctx context.Context, events chan<- Event, voice string, err error) {
	s.logger.Error("synthesis failed", slog.String("voice", voice), slog.String("error", err.Error()))
	s.metrics.RecordError(ctx, voice)
	emit(ctx, events, Event{Type: EventError, Err: err})
}

func emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
