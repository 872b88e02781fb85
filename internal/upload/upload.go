// Package upload owns one in-flight transcription exchange and its
// cancellation scope.
package upload

import (
	"context"
	"errors"
	"sync"

	"voxpad/internal/domain"
	"voxpad/internal/ports"
)

var (
	ErrNotPending = errors.New("no upload in flight")
	ErrCancelled  = errors.New("upload cancelled")
)

// Outcome is the single terminal result of one exchange.
type Outcome struct {
	State  domain.UploadState
	Result domain.Transcription
	Err    error
}

// Session sequences Idle -> Pending -> {Succeeded | Failed | Cancelled}.
// A new Submit while pending cancels the previous exchange. Terminal
// states travel in the Outcome; once an exchange settles the session
// returns to Idle, ready for the next submit.
type Session struct {
	client ports.TranscriptionClient

	mu      sync.Mutex
	state   domain.UploadState
	current *exchange
}

type exchange struct {
	cancel  context.CancelFunc
	onDone  func(Outcome)
	settled bool
}

func NewSession(client ports.TranscriptionClient) *Session {
	return &Session{client: client, state: domain.UploadIdle}
}

// Submit starts a transcription exchange without blocking the caller.
// onDone is invoked exactly once with the terminal outcome. Cancelling
// settles the exchange immediately; a late response is then ignored.
func (s *Session) Submit(ctx context.Context, payload []byte, filename string, onDone func(Outcome)) {
	s.mu.Lock()
	prev := s.takePendingLocked()
	reqCtx, cancel := context.WithCancel(ctx)
	ex := &exchange{cancel: cancel, onDone: onDone}
	s.current = ex
	s.state = domain.UploadPending
	s.mu.Unlock()

	if prev != nil {
		prev.cancel()
		prev.onDone(Outcome{State: domain.UploadCancelled, Err: ErrCancelled})
	}

	go s.run(reqCtx, ex, payload, filename)
}

// Cancel settles the pending exchange as Cancelled. Only valid while
// pending.
func (s *Session) Cancel() error {
	s.mu.Lock()
	ex := s.takePendingLocked()
	if ex == nil {
		s.mu.Unlock()
		return ErrNotPending
	}
	s.state = domain.UploadIdle
	s.mu.Unlock()

	ex.cancel()
	ex.onDone(Outcome{State: domain.UploadCancelled, Err: ErrCancelled})
	return nil
}

// State reports Pending while an exchange is in flight, Idle otherwise.
func (s *Session) State() domain.UploadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// InFlight reports whether an exchange is pending.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == domain.UploadPending
}

func (s *Session) takePendingLocked() *exchange {
	if s.current == nil || s.current.settled {
		return nil
	}
	s.current.settled = true
	return s.current
}

func (s *Session) run(ctx context.Context, ex *exchange, payload []byte, filename string) {
	result, err := s.client.Transcribe(ctx, payload, filename)

	s.mu.Lock()
	if ex.settled || s.current != ex {
		// Cancelled or superseded; the resolution arrived late and must
		// not mutate state.
		s.mu.Unlock()
		return
	}
	ex.settled = true

	var out Outcome
	switch {
	case err == nil:
		out = Outcome{State: domain.UploadSucceeded, Result: result}
	case errors.Is(err, context.Canceled):
		out = Outcome{State: domain.UploadCancelled, Err: ErrCancelled}
	default:
		out = Outcome{State: domain.UploadFailed, Err: err}
	}
	s.state = domain.UploadIdle
	s.mu.Unlock()

	ex.onDone(out)
}
