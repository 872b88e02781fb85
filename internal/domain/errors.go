package domain

import "fmt"

// DeviceError reports a capture grant failure. Retrying start is safe.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("capture device unavailable: %v", e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// NetworkError reports a transcription exchange that produced no response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("transcription request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError reports a non-success backend status. Message carries the
// backend's error body when one was returned.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("transcription server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("transcription server returned status %d: %s", e.StatusCode, e.Message)
}
