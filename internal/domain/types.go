package domain

// RecordingState models the capture lifecycle.
type RecordingState string

const (
	RecordingIdle       RecordingState = "idle"
	RecordingRequesting RecordingState = "requesting"
	RecordingActive     RecordingState = "recording"
	RecordingStopping   RecordingState = "stopping"
)

// UploadState models one transcription exchange.
type UploadState string

const (
	UploadIdle      UploadState = "idle"
	UploadPending   UploadState = "pending"
	UploadSucceeded UploadState = "succeeded"
	UploadFailed    UploadState = "failed"
	UploadCancelled UploadState = "cancelled"
)

// SessionPhase is the composite lifecycle surfaced to the UI.
type SessionPhase string

const (
	PhaseIdle         SessionPhase = "idle"
	PhaseRequesting   SessionPhase = "requesting"
	PhaseRecording    SessionPhase = "recording"
	PhaseStopping     SessionPhase = "stopping"
	PhaseTranscribing SessionPhase = "transcribing"
)

// PhaseReason provides a structured reason for phase transitions.
type PhaseReason string

const (
	ReasonReady            PhaseReason = "ready"
	ReasonStartRequested   PhaseReason = "start_requested"
	ReasonPermissionDenied PhaseReason = "permission_denied"
	ReasonRecordingStarted PhaseReason = "recording_started"
	ReasonRecordingStopped PhaseReason = "recording_stopped"
	ReasonUploadSubmitted  PhaseReason = "upload_submitted"
	ReasonUploadRejected   PhaseReason = "upload_rejected"
	ReasonTranscriptReady  PhaseReason = "transcript_ready"
	ReasonTranscriptFailed PhaseReason = "transcript_failed"
	ReasonUploadCancelled  PhaseReason = "upload_cancelled"
	ReasonSessionCleared   PhaseReason = "session_cleared"
	ReasonHistoryRestored  PhaseReason = "history_restored"
	ReasonHistoryCleared   PhaseReason = "history_cleared"
)

// ErrorCode identifies surfaced session errors.
type ErrorCode string

const (
	ErrorCodeDevice      ErrorCode = "device"
	ErrorCodeInvalidType ErrorCode = "invalid_type"
	ErrorCodeOversize    ErrorCode = "oversize"
	ErrorCodeNetwork     ErrorCode = "network"
	ErrorCodeServer      ErrorCode = "server"
	ErrorCodeCancelled   ErrorCode = "cancelled"
	ErrorCodeNoAudio     ErrorCode = "no_audio"
	ErrorCodePersistence ErrorCode = "persistence"
	ErrorCodeStartup     ErrorCode = "startup"
)

// TranscriptionRecord is one completed transcription kept in history.
type TranscriptionRecord struct {
	ID             int64  `json:"id"`
	Timestamp      string `json:"timestamp"`
	Text           string `json:"text"`
	Filename       string `json:"filename"`
	AudioURL       string `json:"audioUrl"`
	WordCount      int    `json:"wordCount"`
	CharCount      int    `json:"charCount"`
	AudioAvailable bool   `json:"audioAvailable"`
}

// Transcription is a parsed backend response.
type Transcription struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Filename string `json:"filename"`
}

// UploadCandidate is a user-picked file offered for transcription.
type UploadCandidate struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

// SessionView is the ephemeral session state shown by the UI.
// It is never persisted.
type SessionView struct {
	Transcript     string `json:"transcript"`
	AudioURL       string `json:"audioUrl"`
	Language       string `json:"language"`
	ErrorMessage   string `json:"errorMessage"`
	Success        bool   `json:"success"`
	SelectedID     int64  `json:"selectedId"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
}

// Status summarizes the current runtime status.
type Status struct {
	Recording      RecordingState `json:"recording"`
	Upload         UploadState    `json:"upload"`
	Phase          SessionPhase   `json:"phase"`
	ElapsedSeconds int            `json:"elapsedSeconds"`
	HistorySize    int            `json:"historySize"`
}
