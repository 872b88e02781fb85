package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"voxpad/internal/bootstrap"
	"voxpad/internal/config"
	"voxpad/internal/domain"
	"voxpad/internal/ports"
	"voxpad/internal/usecase"
)

const (
	eventPhase   = "voxpad:phase"
	eventElapsed = "voxpad:elapsed"
	eventSession = "voxpad:session"
	eventHistory = "voxpad:history"
	eventError   = "voxpad:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller *usecase.SessionController
	client     ports.TranscriptionClient
	closeStore func() error
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.client = services.Client
	a.closeStore = services.Store.Close
	a.PhaseChanged(domain.PhaseIdle, domain.ReasonReady)
	a.HistoryChanged(a.controller.History())
}

func (a *App) shutdown(_ context.Context) {
	if a.controller != nil {
		a.controller.Shutdown()
	}
	if a.closeStore != nil {
		_ = a.closeStore()
	}
}

// StartRecording begins a microphone capture session.
func (a *App) StartRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.StartRecording(a.ctx); err != nil {
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// StopRecording finalizes the capture and submits it for transcription.
func (a *App) StopRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.StopRecording(a.ctx); err != nil {
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// UploadFile submits a picked audio file for transcription. Data
// arrives base64-encoded from the frontend.
func (a *App) UploadFile(name string, mimeType string, data []byte) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	err := a.controller.UploadFile(a.ctx, domain.UploadCandidate{
		Name:     name,
		MIMEType: mimeType,
		Data:     data,
	})
	return a.controller.Status(), err
}

// CancelUpload abandons the pending transcription exchange.
func (a *App) CancelUpload() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.CancelUpload()
}

// ClearCurrent resets the displayed transcript and audio.
func (a *App) ClearCurrent() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.controller.ClearCurrent()
	return nil
}

// ClearHistory deletes all stored transcriptions.
func (a *App) ClearHistory() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.ClearHistory()
}

// LoadFromHistory restores a stored record into the current session.
func (a *App) LoadFromHistory(id int64) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.LoadFromHistory(id)
}

// GetSession returns the current session view.
func (a *App) GetSession() domain.SessionView {
	if a.controller == nil {
		return domain.SessionView{}
	}
	return a.controller.View()
}

// GetHistory returns stored transcriptions, newest first.
func (a *App) GetHistory() []domain.TranscriptionRecord {
	if a.controller == nil {
		return nil
	}
	return a.controller.History()
}

// GetStatus returns the current composite status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		return domain.Status{
			Recording: domain.RecordingIdle,
			Upload:    domain.UploadIdle,
			Phase:     domain.PhaseIdle,
		}
	}
	return a.controller.Status()
}

// AudioPayload carries a resolved audio resource to the frontend. Data
// is base64-encoded on the wire.
type AudioPayload struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"mimeType"`
}

// GetAudio resolves a locator to its payload for playback.
func (a *App) GetAudio(locator string) (AudioPayload, error) {
	if err := a.requireReady(); err != nil {
		return AudioPayload{}, err
	}
	data, mimeType, ok := a.controller.ResolveAudio(locator)
	if !ok {
		return AudioPayload{}, fmt.Errorf("audio resource not found")
	}
	return AudioPayload{Data: data, MIMEType: mimeType}, nil
}

// CopyTranscript writes the current transcript to the clipboard.
func (a *App) CopyTranscript() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	text := a.controller.View().Transcript
	if text == "" {
		return fmt.Errorf("no transcript to copy")
	}
	return runtime.ClipboardSetText(a.ctx, text)
}

// GetRuntimeInfo returns non-sensitive config plus backend
// reachability for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	serverStatus := "ok"
	if err := a.client.Health(a.ctx); err != nil {
		serverStatus = err.Error()
	}

	return map[string]string{
		"serverUrl":        a.cfg.Server.TranscribeURL,
		"serverStatus":     serverStatus,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"historyCapacity":  fmt.Sprintf("%d", a.cfg.Session.HistoryCapacity),
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// PhaseChanged emits session lifecycle updates to the frontend.
func (a *App) PhaseChanged(phase domain.SessionPhase, reason domain.PhaseReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPhase, map[string]string{
		"phase":   string(phase),
		"reason":  string(reason),
		"message": phaseReasonMessage(reason),
	})
}

// ElapsedChanged emits the recording timer value.
func (a *App) ElapsedChanged(seconds int) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventElapsed, seconds)
}

// SessionChanged emits the refreshed session view.
func (a *App) SessionChanged(view domain.SessionView) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSession, view)
}

// HistoryChanged emits the refreshed history collection.
func (a *App) HistoryChanged(records []domain.TranscriptionRecord) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventHistory, records)
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func phaseReasonMessage(reason domain.PhaseReason) string {
	switch reason {
	case domain.ReasonReady:
		return "Ready"
	case domain.ReasonStartRequested:
		return "Requesting microphone..."
	case domain.ReasonPermissionDenied:
		return "Microphone access denied"
	case domain.ReasonRecordingStarted:
		return "Recording..."
	case domain.ReasonRecordingStopped:
		return "Recording stopped"
	case domain.ReasonUploadSubmitted:
		return "Transcribing..."
	case domain.ReasonUploadRejected:
		return "File rejected"
	case domain.ReasonTranscriptReady:
		return "Transcription complete"
	case domain.ReasonTranscriptFailed:
		return "Transcription failed"
	case domain.ReasonUploadCancelled:
		return "Transcription cancelled"
	case domain.ReasonSessionCleared:
		return "Cleared"
	case domain.ReasonHistoryRestored:
		return "Loaded from history"
	case domain.ReasonHistoryCleared:
		return "History cleared"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeDevice:
		return "Could not access microphone"
	case domain.ErrorCodeInvalidType:
		return "Please select an audio file"
	case domain.ErrorCodeOversize:
		return "File is too large (max 10MB)"
	case domain.ErrorCodeNetwork:
		return "Could not reach transcription server"
	case domain.ErrorCodeServer:
		return "Transcription server error"
	case domain.ErrorCodeCancelled:
		return "Transcription cancelled"
	case domain.ErrorCodeNoAudio:
		return "No audio captured"
	case domain.ErrorCodePersistence:
		return "Could not save history"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
