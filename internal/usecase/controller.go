// Package usecase composes the recording, upload, and history machinery
// behind the single behavioral surface the presentation layer drives.
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"voxpad/internal/blob"
	"voxpad/internal/domain"
	"voxpad/internal/history"
	"voxpad/internal/ports"
	"voxpad/internal/recorder"
	"voxpad/internal/upload"
	"voxpad/internal/validate"
)

var ErrRecordNotFound = errors.New("history record not found")

// Config controls session behavior.
type Config struct {
	Capture         ports.CaptureConfig
	TickInterval    time.Duration
	HistoryCapacity int
	MaxUploadBytes  int64
}

// SessionController owns the ephemeral session view and sequences
// capture, upload, and history mutations. External completions (ticks,
// chunks, responses) are serialized through its mutex.
type SessionController struct {
	recorder *recorder.Controller
	uploads  *upload.Session
	history  *history.Store
	blobs    *blob.Registry
	events   ports.EventSink

	maxUploadBytes int64

	mu        sync.Mutex
	view      domain.SessionView
	uploadGen uint64
}

func NewSessionController(
	device ports.DeviceProvider,
	client ports.TranscriptionClient,
	durable ports.DurableStore,
	ticks ports.TickSource,
	events ports.EventSink,
	cfg Config,
) *SessionController {
	blobs := blob.NewRegistry()
	c := &SessionController{
		uploads:        upload.NewSession(client),
		history:        history.NewStore(durable, blobs, cfg.HistoryCapacity),
		blobs:          blobs,
		events:         events,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	c.recorder = recorder.NewController(device, ticks, c.onElapsed, recorder.Config{
		Capture:      cfg.Capture,
		TickInterval: cfg.TickInterval,
	})
	return c
}

// StartRecording begins a new capture session. Any pending upload is
// cancelled, and all ephemeral session fields reset, before the device
// grant is requested.
func (c *SessionController) StartRecording(ctx context.Context) error {
	c.supersedePendingUpload()
	c.resetSession()

	c.events.PhaseChanged(domain.PhaseRequesting, domain.ReasonStartRequested)
	if err := c.recorder.Start(ctx); err != nil {
		if !errors.Is(err, recorder.ErrNotIdle) {
			c.failSession(domain.ErrorCodeDevice, err)
			c.events.PhaseChanged(domain.PhaseIdle, domain.ReasonPermissionDenied)
		}
		return err
	}

	c.events.PhaseChanged(domain.PhaseRecording, domain.ReasonRecordingStarted)
	return nil
}

// StopRecording finalizes the capture into one payload and sends it to
// the transcription backend. Device recordings bypass validation. A
// stop with no active recording returns without emitting any events.
func (c *SessionController) StopRecording(ctx context.Context) error {
	if c.recorder.State() != domain.RecordingActive {
		return recorder.ErrNotRecording
	}

	c.events.PhaseChanged(domain.PhaseStopping, domain.ReasonRecordingStopped)
	result, err := c.recorder.Stop()
	if err != nil {
		if errors.Is(err, recorder.ErrNotRecording) {
			// Lost a stop race; the winning stop owns the events.
			return err
		}
		if errors.Is(err, recorder.ErrNoAudio) {
			c.failSession(domain.ErrorCodeNoAudio, err)
		}
		c.events.PhaseChanged(domain.PhaseIdle, domain.ReasonReady)
		return err
	}

	res := c.blobs.Create(result.Payload, "audio/webm")
	c.mu.Lock()
	c.view.AudioURL = res.Locator()
	view := c.view
	c.mu.Unlock()
	c.events.SessionChanged(view)

	c.beginUpload(ctx, res, result.Filename)
	return nil
}

// UploadFile validates a picked file and sends it for transcription.
// Validation failures abort before any resource or network allocation.
func (c *SessionController) UploadFile(ctx context.Context, candidate domain.UploadCandidate) error {
	if err := validate.CheckUpload(candidate, c.maxUploadBytes); err != nil {
		c.failSession(errorCode(err), err)
		c.events.PhaseChanged(domain.PhaseIdle, domain.ReasonUploadRejected)
		return err
	}

	c.supersedePendingUpload()
	c.resetSession()

	res := c.blobs.Create(candidate.Data, candidate.MIMEType)
	c.mu.Lock()
	c.view.AudioURL = res.Locator()
	view := c.view
	c.mu.Unlock()
	c.events.SessionChanged(view)

	c.beginUpload(ctx, res, candidate.Name)
	return nil
}

// CancelUpload settles the pending exchange as cancelled.
func (c *SessionController) CancelUpload() error {
	return c.uploads.Cancel()
}

// ClearCurrent resets the ephemeral session. The displayed audio is
// revoked only when the session still owns it; resources transferred to
// a history record stay valid.
func (c *SessionController) ClearCurrent() {
	c.resetSession()
	c.events.PhaseChanged(domain.PhaseIdle, domain.ReasonSessionCleared)
}

// ClearHistory empties the stored collection and revokes its resources.
func (c *SessionController) ClearHistory() error {
	if err := c.history.ClearAll(); err != nil {
		c.events.SessionError(domain.ErrorCodePersistence, err.Error())
		return err
	}

	// The displayed audio may have been a history-owned resource that
	// was just revoked.
	c.mu.Lock()
	if c.view.AudioURL != "" {
		if _, ok := c.blobs.Resolve(c.view.AudioURL); !ok && blob.IsLocal(c.view.AudioURL) {
			c.view.AudioURL = ""
		}
	}
	c.view.SelectedID = 0
	view := c.view
	c.mu.Unlock()

	c.events.SessionChanged(view)
	c.events.HistoryChanged(c.history.Records())
	c.events.PhaseChanged(domain.PhaseIdle, domain.ReasonHistoryCleared)
	return nil
}

// LoadFromHistory replaces the displayed transcript/audio/selection with
// a stored record's fields. History is not mutated and no network call
// is made.
func (c *SessionController) LoadFromHistory(id int64) error {
	record, ok := c.history.Select(id)
	if !ok {
		return ErrRecordNotFound
	}

	c.mu.Lock()
	c.revokeSessionAudioLocked()
	c.view = domain.SessionView{
		Transcript: record.Text,
		AudioURL:   record.AudioURL,
		SelectedID: record.ID,
	}
	view := c.view
	c.mu.Unlock()

	c.events.SessionChanged(view)
	c.events.PhaseChanged(domain.PhaseIdle, domain.ReasonHistoryRestored)
	return nil
}

// View returns a copy of the ephemeral session state.
func (c *SessionController) View() domain.SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// History returns the newest-first stored records.
func (c *SessionController) History() []domain.TranscriptionRecord {
	return c.history.Records()
}

// ResolveAudio hands a live resource's payload to the presentation
// layer for playback.
func (c *SessionController) ResolveAudio(locator string) ([]byte, string, bool) {
	res, ok := c.blobs.Resolve(locator)
	if !ok {
		return nil, "", false
	}
	return res.Bytes(), res.MIMEType(), true
}

// Status summarizes the composite runtime state.
func (c *SessionController) Status() domain.Status {
	recording := c.recorder.State()
	phase := domain.PhaseIdle
	switch recording {
	case domain.RecordingRequesting:
		phase = domain.PhaseRequesting
	case domain.RecordingActive:
		phase = domain.PhaseRecording
	case domain.RecordingStopping:
		phase = domain.PhaseStopping
	default:
		if c.uploads.InFlight() {
			phase = domain.PhaseTranscribing
		}
	}
	return domain.Status{
		Recording:      recording,
		Upload:         c.uploads.State(),
		Phase:          phase,
		ElapsedSeconds: c.recorder.Elapsed(),
		HistorySize:    c.history.Size(),
	}
}

// Shutdown aborts any active capture, discarding buffered chunks, and
// abandons a pending upload. Used on application teardown.
func (c *SessionController) Shutdown() {
	if err := c.recorder.Abort(); err != nil && !errors.Is(err, recorder.ErrNotRecording) {
		c.events.SessionError(domain.ErrorCodeDevice, err.Error())
	}
	c.supersedePendingUpload()
}

// supersedePendingUpload invalidates outcome handlers for any pending
// exchange, then cancels it. The superseded outcome cannot touch the
// view.
func (c *SessionController) supersedePendingUpload() {
	c.mu.Lock()
	c.uploadGen++
	c.mu.Unlock()
	if err := c.uploads.Cancel(); err != nil && !errors.Is(err, upload.ErrNotPending) {
		c.events.SessionError(domain.ErrorCodeCancelled, err.Error())
	}
}

func (c *SessionController) beginUpload(ctx context.Context, res *blob.Resource, filename string) {
	c.mu.Lock()
	c.uploadGen++
	gen := c.uploadGen
	c.mu.Unlock()

	c.events.PhaseChanged(domain.PhaseTranscribing, domain.ReasonUploadSubmitted)
	c.uploads.Submit(ctx, res.Bytes(), filename, func(out upload.Outcome) {
		c.handleUploadOutcome(gen, res, filename, out)
	})
}

// handleUploadOutcome commits one exchange's terminal outcome. The
// generation check happens inside the same critical section that
// mutates state, so an outcome that lost to a concurrent supersession
// cannot commit anything.
func (c *SessionController) handleUploadOutcome(gen uint64, res *blob.Resource, filename string, out upload.Outcome) {
	if out.State == domain.UploadSucceeded {
		c.completeUpload(gen, res, filename, out.Result)
		return
	}

	code := domain.ErrorCodeCancelled
	reason := domain.ReasonUploadCancelled
	if out.State != domain.UploadCancelled {
		code = errorCode(out.Err)
		reason = domain.ReasonTranscriptFailed
	}
	detail := ""
	if out.Err != nil {
		detail = out.Err.Error()
	}

	c.mu.Lock()
	if gen != c.uploadGen {
		c.mu.Unlock()
		return
	}
	c.view.ErrorMessage = detail
	c.view.Success = false
	view := c.view
	c.mu.Unlock()

	c.events.SessionError(code, detail)
	c.events.SessionChanged(view)
	c.events.PhaseChanged(domain.PhaseIdle, reason)
}

func (c *SessionController) completeUpload(gen uint64, res *blob.Resource, filename string, result domain.Transcription) {
	record := domain.TranscriptionRecord{
		ID:             c.history.NextID(),
		Timestamp:      time.Now().Format("1/2/2006, 3:04:05 PM"),
		Text:           result.Text,
		Filename:       filename,
		AudioURL:       res.Locator(),
		WordCount:      countWords(result.Text),
		CharCount:      utf8.RuneCountInString(result.Text),
		AudioAvailable: true,
	}

	c.mu.Lock()
	if gen != c.uploadGen {
		c.mu.Unlock()
		return
	}

	// The record becomes the resource's sole long-lived owner.
	c.blobs.Retag(res.Locator(), blob.OwnerHistory)
	insertErr := c.history.Insert(record)

	c.view.Transcript = result.Text
	c.view.AudioURL = res.Locator()
	c.view.Language = result.Language
	c.view.ErrorMessage = ""
	c.view.Success = true
	c.view.SelectedID = 0
	view := c.view
	c.mu.Unlock()

	if insertErr != nil {
		c.events.SessionError(domain.ErrorCodePersistence, insertErr.Error())
	}
	c.events.SessionChanged(view)
	c.events.HistoryChanged(c.history.Records())
	c.events.PhaseChanged(domain.PhaseIdle, domain.ReasonTranscriptReady)
}

// resetSession clears ephemeral fields, revoking a still session-owned
// displayed resource.
func (c *SessionController) resetSession() {
	c.mu.Lock()
	c.revokeSessionAudioLocked()
	c.view = domain.SessionView{}
	view := c.view
	c.mu.Unlock()
	c.events.SessionChanged(view)
}

func (c *SessionController) revokeSessionAudioLocked() {
	locator := c.view.AudioURL
	if locator == "" {
		return
	}
	if owner, ok := c.blobs.Owner(locator); ok && owner == blob.OwnerSession {
		c.blobs.Revoke(locator)
	}
}

// failSession surfaces one error, clearing any previous success. Error
// and success are mutually exclusive.
func (c *SessionController) failSession(code domain.ErrorCode, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}

	c.mu.Lock()
	c.view.ErrorMessage = detail
	c.view.Success = false
	view := c.view
	c.mu.Unlock()

	c.events.SessionError(code, detail)
	c.events.SessionChanged(view)
}

func (c *SessionController) onElapsed(seconds int) {
	c.mu.Lock()
	c.view.ElapsedSeconds = seconds
	c.mu.Unlock()
	c.events.ElapsedChanged(seconds)
}

func errorCode(err error) domain.ErrorCode {
	var serverErr *domain.ServerError
	var netErr *domain.NetworkError
	var deviceErr *domain.DeviceError
	switch {
	case errors.Is(err, validate.ErrInvalidType):
		return domain.ErrorCodeInvalidType
	case errors.Is(err, validate.ErrOversize):
		return domain.ErrorCodeOversize
	case errors.Is(err, upload.ErrCancelled):
		return domain.ErrorCodeCancelled
	case errors.Is(err, recorder.ErrNoAudio):
		return domain.ErrorCodeNoAudio
	case errors.As(err, &serverErr):
		return domain.ErrorCodeServer
	case errors.As(err, &netErr):
		return domain.ErrorCodeNetwork
	case errors.As(err, &deviceErr):
		return domain.ErrorCodeDevice
	default:
		return domain.ErrorCodeNetwork
	}
}

// countWords tokenizes on whitespace, discarding empty tokens.
func countWords(text string) int {
	return len(strings.Fields(text))
}
