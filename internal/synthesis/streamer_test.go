package synthesis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeStream struct {
	mu        sync.Mutex
	sent      []*texttospeechpb.StreamingSynthesizeRequest
	sendErrAt int
	closed    bool

	responses [][]byte
	recvIdx   int
	recvErr   error
}

func (f *fakeStream) Send(req *texttospeechpb.StreamingSynthesizeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	if f.sendErrAt > 0 && len(f.sent) == f.sendErrAt {
		return errors.New("send rejected")
	}
	return nil
}

func (f *fakeStream) Recv() (*texttospeechpb.StreamingSynthesizeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recvIdx >= len(f.responses) {
		if f.recvErr != nil {
			return nil, f.recvErr
		}
		return nil, io.EOF
	}
	audio := f.responses[f.recvIdx]
	f.recvIdx++
	return &texttospeechpb.StreamingSynthesizeResponse{AudioContent: audio}, nil
}

func (f *fakeStream) CloseSend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeOpener struct {
	stream  *fakeStream
	openErr error
	opens   int
}

func (f *fakeOpener) openStream(ctx context.Context) (synthStream, error) {
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}

func (f *fakeOpener) close() error { return nil }

func testSettings() Settings {
	return Settings{
		Voice:            "en-US-Neural2-A",
		Language:         "en-US",
		SampleRate:       24000,
		MaxWordsPerChunk: 3,
	}
}

func collect(events <-chan Event) []Event {
	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestStreamerEventOrdering(t *testing.T) {
	stream := &fakeStream{responses: [][]byte{make([]byte, 2500), make([]byte, 100)}}
	opener := &fakeOpener{stream: stream}
	s := newStreamer(opener, testSettings(), nil, newTestLogger())

	events := collect(s.Synthesize(context.Background(), Request{Text: "Hello there. How are you?"}))

	if len(events) < 3 {
		t.Fatalf("expected start, audio, stop; got %d events", len(events))
	}
	if events[0].Type != EventStarted {
		t.Fatalf("first event must be start, got %v", events[0].Type)
	}
	last := events[len(events)-1]
	if last.Type != EventStopped {
		t.Fatalf("last event must be stop, got %v", last.Type)
	}
	if last.TTFB <= 0 {
		t.Fatal("stop event must carry time to first byte")
	}

	wantSizes := []int{1024, 1024, 452, 100}
	audio := events[1 : len(events)-1]
	if len(audio) != len(wantSizes) {
		t.Fatalf("expected %d audio events, got %d", len(wantSizes), len(audio))
	}
	for i, ev := range audio {
		if ev.Type != EventAudio {
			t.Fatalf("event %d is not audio: %v", i+1, ev.Type)
		}
		if len(ev.PCM) != wantSizes[i] {
			t.Fatalf("audio event %d: got %d bytes, want %d", i, len(ev.PCM), wantSizes[i])
		}
		if ev.SampleRate != 24000 || ev.Channels != 1 {
			t.Fatalf("audio event %d has wrong format: %d Hz, %d ch", i, ev.SampleRate, ev.Channels)
		}
	}

	// One config request plus one input request per chunk, then half-close.
	chunks := ChunkText("Hello there. How are you?", 3)
	if len(stream.sent) != len(chunks)+1 {
		t.Fatalf("expected %d requests, got %d", len(chunks)+1, len(stream.sent))
	}
	if stream.sent[0].GetStreamingConfig() == nil {
		t.Fatal("first request must be the streaming config")
	}
	if !stream.closed {
		t.Fatal("send side was never closed")
	}
}

func TestStreamerEmptyText(t *testing.T) {
	opener := &fakeOpener{stream: &fakeStream{}}
	s := newStreamer(opener, testSettings(), nil, newTestLogger())

	events := collect(s.Synthesize(context.Background(), Request{Text: "   "}))

	if len(events) != 2 || events[0].Type != EventStarted || events[1].Type != EventStopped {
		t.Fatalf("empty input should yield start then stop, got %v", events)
	}
	if opener.opens != 0 {
		t.Fatal("no stream should be opened for empty input")
	}
}

func TestStreamerRecvError(t *testing.T) {
	stream := &fakeStream{
		responses: [][]byte{make([]byte, 100)},
		recvErr:   errors.New("stream reset"),
	}
	s := newStreamer(&fakeOpener{stream: stream}, testSettings(), nil, newTestLogger())

	events := collect(s.Synthesize(context.Background(), Request{Text: "hello world"}))

	if events[0].Type != EventStarted {
		t.Fatalf("first event must be start, got %v", events[0].Type)
	}
	errCount := 0
	for _, ev := range events {
		switch ev.Type {
		case EventStopped:
			t.Fatal("failed call must not emit a stop marker")
		case EventError:
			errCount++
			if ev.Err == nil {
				t.Fatal("error event must carry the error")
			}
		}
	}
	if errCount != 1 {
		t.Fatalf("expected exactly one error event, got %d", errCount)
	}
}

func TestStreamerSendError(t *testing.T) {
	stream := &fakeStream{sendErrAt: 2}
	s := newStreamer(&fakeOpener{stream: stream}, testSettings(), nil, newTestLogger())

	events := collect(s.Synthesize(context.Background(), Request{Text: "hello world"}))

	last := events[len(events)-1]
	if last.Type != EventError {
		t.Fatalf("expected terminal error event, got %v", last.Type)
	}
	for _, ev := range events {
		if ev.Type == EventStopped {
			t.Fatal("failed call must not emit a stop marker")
		}
	}
}

func TestStreamerOpenError(t *testing.T) {
	s := newStreamer(&fakeOpener{openErr: errors.New("unavailable")}, testSettings(), nil, newTestLogger())

	events := collect(s.Synthesize(context.Background(), Request{Text: "hello"}))

	if len(events) != 2 || events[0].Type != EventStarted || events[1].Type != EventError {
		t.Fatalf("expected start then error, got %v", events)
	}
}

func TestStreamerVoiceOverride(t *testing.T) {
	stream := &fakeStream{responses: [][]byte{make([]byte, 100)}}
	s := newStreamer(&fakeOpener{stream: stream}, testSettings(), nil, newTestLogger())

	events := collect(s.Synthesize(context.Background(), Request{Text: "hello", Voice: "en-US-Journey-F"}))

	if events[len(events)-1].Type != EventStopped {
		t.Fatalf("expected clean completion, got %v", events[len(events)-1].Type)
	}
	cfg := stream.sent[0].GetStreamingConfig()
	if got := cfg.GetVoice().GetName(); got != "en-US-Journey-F" {
		t.Fatalf("config request kept configured voice: %q", got)
	}
	// The override voice decides the input form too: journey means plain text.
	if stream.sent[1].GetInput().GetText() == "" {
		t.Fatal("journey override must switch inputs to plain text")
	}
}

func TestStreamerCancellation(t *testing.T) {
	responses := make([][]byte, 64)
	for i := range responses {
		responses[i] = make([]byte, 1024)
	}
	stream := &fakeStream{responses: responses}
	s := newStreamer(&fakeOpener{stream: stream}, testSettings(), nil, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	events := s.Synthesize(ctx, Request{Text: "a long utterance that produces plenty of audio"})

	if ev := <-events; ev.Type != EventStarted {
		t.Fatalf("first event must be start, got %v", ev.Type)
	}
	if ev := <-events; ev.Type != EventAudio {
		t.Fatalf("second event must be audio, got %v", ev.Type)
	}
	cancel()

	for ev := range events {
		if ev.Type == EventStopped {
			t.Fatal("cancelled call must not emit a stop marker")
		}
	}
}
