package synthesis

import (
	"context"
	"time"
)

// EventType discriminates synthesis lifecycle events.
type EventType int

const (
	// EventStarted precedes all audio for a call.
	EventStarted EventType = iota
	// EventAudio carries one fixed-size PCM buffer.
	EventAudio
	// EventStopped follows all audio for a successful call.
	EventStopped
	// EventError terminates a failed call; no EventStopped follows it.
	EventError
)

// Event is one element of the sequence produced by a synthesize call.
type Event struct {
	Type       EventType
	PCM        []byte
	SampleRate int
	Channels   int
	// TTFB is the time to first audio byte, reported on EventStopped.
	TTFB time.Duration
	Err  error
}

// Request is one utterance to synthesize. Voice, when set, overrides the
// configured voice for this call only.
type Request struct {
	Text  string
	Voice string
}

// Synthesizer produces an ordered event sequence for one utterance. The
// returned channel is closed when the call completes, fails, or is
// cancelled; after cancellation emission stops promptly and no
// EventStopped is sent. Implementations are safe for concurrent calls.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) <-chan Event
	Close() error
}
