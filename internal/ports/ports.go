package ports

import (
	"context"
	"time"

	"voxpad/internal/domain"
)

// CaptureConfig describes how the microphone should be captured.
type CaptureConfig struct {
	InputFormat   string
	InputDevice   string
	SampleRate    int
	Channels      int
	ChunkInterval time.Duration
}

// CaptureStream is a live capture session. Chunks yields encoded audio on
// a fixed cadence and is closed, after a final flush, once Release is
// called. No chunk read from the device before Release is dropped.
type CaptureStream interface {
	Chunks() <-chan []byte
	Release() error
}

// DeviceProvider grants microphone capture streams.
type DeviceProvider interface {
	Acquire(ctx context.Context, cfg CaptureConfig) (CaptureStream, error)
}

// TranscriptionClient performs one whole-file transcription exchange.
type TranscriptionClient interface {
	Transcribe(ctx context.Context, payload []byte, filename string) (domain.Transcription, error)
	Health(ctx context.Context) error
}

// DurableStore is a synchronous persistent key-to-string store.
type DurableStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key string, value string) error
	Remove(key string) error
}

// TickSource supplies periodic ticks; injected so the elapsed counter is
// deterministic under test.
type TickSource interface {
	Ticks(interval time.Duration) (ticks <-chan time.Time, stop func())
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	PhaseChanged(phase domain.SessionPhase, reason domain.PhaseReason)
	ElapsedChanged(seconds int)
	SessionChanged(view domain.SessionView)
	HistoryChanged(records []domain.TranscriptionRecord)
	SessionError(code domain.ErrorCode, detail string)
}
