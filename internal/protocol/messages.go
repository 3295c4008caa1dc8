package protocol

import "time"

// SpeechRequest asks the runtime to synthesize one utterance.
type SpeechRequest struct {
	SessionID   string `json:"session_id"`
	UtteranceID string `json:"utterance_id,omitempty"`
	Text        string `json:"text"`
	Voice       string `json:"voice,omitempty"`
	Target      string `json:"target,omitempty"`
	TraceID     string `json:"trace_id,omitempty"`
}

// SpeechCancel interrupts the in-flight utterance for a session.
type SpeechCancel struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AudioChunk carries one buffer of synthesized PCM audio.
type AudioChunk struct {
	SessionID   string `json:"session_id"`
	UtteranceID string `json:"utterance_id"`
	Sequence    int    `json:"sequence"`
	SampleRate  int    `json:"sample_rate"`
	Channels    int    `json:"channels"`
	PCM         []byte `json:"pcm"`
	Final       bool   `json:"final"`
}

// SpeechStatus marks utterance lifecycle transitions on the bus.
type SpeechStatus struct {
	SessionID   string    `json:"session_id"`
	UtteranceID string    `json:"utterance_id"`
	State       string    `json:"state"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

const (
	StateStarted = "started"
	StateStopped = "stopped"
	StateError   = "error"
)

const (
	SubjectSpeechRequest = "speech.request"
	SubjectSpeechCancel  = "speech.cancel"
	SubjectSpeechStatus  = "speech.status"

	// subjectSpeechAudio is the prefix for target-scoped audio subjects.
	subjectSpeechAudio = "speech.audio"

	// DefaultTarget receives audio for requests that name no target.
	DefaultTarget = "default"
)

// AudioSubject returns the bus subject audio chunks for the given playback
// target are published on. Consumers subscribe to their own target, or to
// "speech.audio.>" for all of them.
func AudioSubject(target string) string {
	if target == "" {
		target = DefaultTarget
	}
	return subjectSpeechAudio + "." + target
}
