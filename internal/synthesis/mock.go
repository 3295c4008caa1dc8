package synthesis

import (
	"context"
	"strings"
	"time"
)

// MockSynthesizer emits deterministic silence for development and tests.
type MockSynthesizer struct {
	settings Settings
	// Buffers is the number of audio buffers emitted per utterance.
	Buffers int
}

func NewMockSynthesizer(settings Settings) *MockSynthesizer {
	return &MockSynthesizer{settings: settings, Buffers: 4}
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event, eventBuffer)
	go func() {
		defer close(events)
		if !emit(ctx, events, Event{Type: EventStarted}) {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			emit(ctx, events, Event{Type: EventStopped})
			return
		}
		start := time.Now()
		for i := 0; i < m.Buffers; i++ {
			if ctx.Err() != nil {
				return
			}
			if !emit(ctx, events, Event{
				Type:       EventAudio,
				PCM:        make([]byte, audioBufferSize),
				SampleRate: m.settings.SampleRate,
				Channels:   channels,
			}) {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		emit(ctx, events, Event{Type: EventStopped, TTFB: time.Since(start)})
	}()
	return events
}

func (m *MockSynthesizer) Close() error { return nil }
