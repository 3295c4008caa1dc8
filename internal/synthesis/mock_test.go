package synthesis

import (
	"context"
	"testing"
)

func TestMockSynthesizerSequence(t *testing.T) {
	m := NewMockSynthesizer(testSettings())
	events := collect(m.Synthesize(context.Background(), Request{Text: "hello"}))

	if len(events) != m.Buffers+2 {
		t.Fatalf("expected %d events, got %d", m.Buffers+2, len(events))
	}
	if events[0].Type != EventStarted || events[len(events)-1].Type != EventStopped {
		t.Fatalf("unexpected framing: %v ... %v", events[0].Type, events[len(events)-1].Type)
	}
	for _, ev := range events[1 : len(events)-1] {
		if ev.Type != EventAudio || len(ev.PCM) != audioBufferSize {
			t.Fatalf("unexpected audio event: %+v", ev)
		}
	}
}

func TestMockSynthesizerEmptyText(t *testing.T) {
	m := NewMockSynthesizer(testSettings())
	events := collect(m.Synthesize(context.Background(), Request{Text: " "}))
	if len(events) != 2 || events[1].Type != EventStopped {
		t.Fatalf("empty input should yield start then stop, got %v", events)
	}
}
