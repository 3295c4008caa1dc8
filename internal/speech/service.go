package speech

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/murmurlabs/murmur-speech/internal/bus"
	"github.com/murmurlabs/murmur-speech/internal/config"
	"github.com/murmurlabs/murmur-speech/internal/protocol"
	"github.com/murmurlabs/murmur-speech/internal/synthesis"
	"github.com/murmurlabs/murmur-speech/internal/utterancelog"
	"github.com/nats-io/nats.go"
)

// Service bridges the bus and the synthesizer: it consumes speech requests,
// streams lifecycle and audio messages back in order, honors cancellation,
// and records each utterance to the log.
type Service struct {
	cfg       config.SpeechConfig
	bus       *bus.Client
	synth     synthesis.Synthesizer
	store     *utterancelog.Store
	subReq    *nats.Subscription
	subCancel *nats.Subscription
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *slog.Logger

	mu     sync.Mutex
	active map[string]activeCall
}

// activeCall is the in-flight utterance for a session. The utterance ID
// guards against a finished call deregistering its successor.
type activeCall struct {
	utteranceID string
	cancel      context.CancelFunc
}

func NewService(parent context.Context, cfg config.SpeechConfig, busClient *bus.Client, synth synthesis.Synthesizer, store *utterancelog.Store, log *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	return &Service{
		cfg:    cfg,
		bus:    busClient,
		synth:  synth,
		store:  store,
		ctx:    ctx,
		cancel: cancel,
		logger: log.With(slog.String("component", "speech-service")),
		active: make(map[string]activeCall),
	}
}

func (s *Service) Start() error {
	if !s.cfg.Enabled {
		return nil
	}
	subReq, err := s.bus.Conn().Subscribe(protocol.SubjectSpeechRequest, s.handleRequest)
	if err != nil {
		return err
	}
	s.subReq = subReq

	subCancel, err := s.bus.Conn().Subscribe(protocol.SubjectSpeechCancel, s.handleCancel)
	if err != nil {
		_ = subReq.Drain()
		return err
	}
	s.subCancel = subCancel
	return nil
}

func (s *Service) Close() {
	s.cancel()
	if s.subReq != nil {
		_ = s.subReq.Drain()
	}
	if s.subCancel != nil {
		_ = s.subCancel.Drain()
	}
	s.wg.Wait()
}

func (s *Service) Healthy() bool {
	return !s.cfg.Enabled || (s.subReq != nil && s.subCancel != nil)
}

func (s *Service) handleRequest(msg *nats.Msg) {
	var req protocol.SpeechRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Warn("failed to decode speech request", slogError(err))
		return
	}
	if req.UtteranceID == "" {
		req.UtteranceID = uuid.NewString()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.speak(req)
	}()
}

func (s *Service) handleCancel(msg *nats.Msg) {
	var cancelMsg protocol.SpeechCancel
	if err := json.Unmarshal(msg.Data, &cancelMsg); err != nil {
		s.logger.Warn("failed to decode speech cancel", slogError(err))
		return
	}

	s.mu.Lock()
	call, ok := s.active[cancelMsg.SessionID]
	s.mu.Unlock()

	if ok {
		s.logger.Info("cancelling utterance",
			slog.String("session_id", cancelMsg.SessionID),
			slog.String("utterance_id", call.utteranceID))
		call.cancel()
	}
}

func (s *Service) speak(req protocol.SpeechRequest) {
	timeout := time.Duration(s.cfg.TimeoutMS) * time.Millisecond
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	target := req.Target
	if target == "" {
		target = s.cfg.Target
	}

	logger := s.logger.With(
		slog.String("session_id", req.SessionID),
		slog.String("utterance_id", req.UtteranceID))
	if req.TraceID != "" {
		logger = logger.With(slog.String("trace_id", req.TraceID))
	}

	s.mu.Lock()
	s.active[req.SessionID] = activeCall{utteranceID: req.UtteranceID, cancel: cancel}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if call, ok := s.active[req.SessionID]; ok && call.utteranceID == req.UtteranceID {
			delete(s.active, req.SessionID)
		}
		s.mu.Unlock()
	}()

	events := s.synth.Synthesize(ctx, synthesis.Request{Text: req.Text, Voice: req.Voice})

	sequence := 0
	totalBytes := 0
	sampleRate := 0
	completed := false
	var ttfb time.Duration
	var failure string

	for ev := range events {
		switch ev.Type {
		case synthesis.EventStarted:
			s.publishStatus(req, protocol.StateStarted, "")
		case synthesis.EventAudio:
			sampleRate = ev.SampleRate
			s.publishChunk(req, target, sequence, ev, false)
			sequence++
			totalBytes += len(ev.PCM)
		case synthesis.EventStopped:
			completed = true
			ttfb = ev.TTFB
			s.publishChunk(req, target, sequence, synthesis.Event{SampleRate: sampleRate, Channels: 1}, true)
			s.publishStatus(req, protocol.StateStopped, "")
		case synthesis.EventError:
			failure = ev.Err.Error()
			s.publishStatus(req, protocol.StateError, failure)
		}
	}

	if completed {
		logger.Info("utterance complete",
			slog.String("target", target),
			slog.Int("bytes", totalBytes),
			slog.Duration("ttfb", ttfb))
	}

	s.record(req, totalBytes, ttfb, failure)
}

func (s *Service) publishChunk(req protocol.SpeechRequest, target string, sequence int, ev synthesis.Event, final bool) {
	chunk := protocol.AudioChunk{
		SessionID:   req.SessionID,
		UtteranceID: req.UtteranceID,
		Sequence:    sequence,
		SampleRate:  ev.SampleRate,
		Channels:    ev.Channels,
		PCM:         ev.PCM,
		Final:       final,
	}
	if final {
		chunk.Channels = 1
	}
	data, err := json.Marshal(chunk)
	if err != nil {
		s.logger.Warn("failed to marshal audio chunk", slogError(err))
		return
	}
	if err := s.bus.Conn().Publish(protocol.AudioSubject(target), data); err != nil {
		s.logger.Warn("failed to publish audio chunk", slogError(err))
	}
}

func (s *Service) publishStatus(req protocol.SpeechRequest, state, message string) {
	status := protocol.SpeechStatus{
		SessionID:   req.SessionID,
		UtteranceID: req.UtteranceID,
		State:       state,
		Message:     message,
		Timestamp:   time.Now().UTC(),
	}
	data, err := json.Marshal(status)
	if err != nil {
		s.logger.Warn("failed to marshal speech status", slogError(err))
		return
	}
	if err := s.bus.Conn().Publish(protocol.SubjectSpeechStatus, data); err != nil {
		s.logger.Warn("failed to publish speech status", slogError(err))
	}
}

func (s *Service) record(req protocol.SpeechRequest, totalBytes int, ttfb time.Duration, failure string) {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.store.Record(ctx, utterancelog.Utterance{
		SessionID:   req.SessionID,
		UtteranceID: req.UtteranceID,
		Voice:       req.Voice,
		Chars:       len(req.Text),
		Bytes:       totalBytes,
		TTFB:        ttfb,
		Error:       failure,
	})
	if err != nil {
		s.logger.Warn("failed to record utterance", slogError(err))
	}
}

func slogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}
