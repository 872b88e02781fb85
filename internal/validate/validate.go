// Package validate gates user-picked files before any resource or
// network allocation. Device recordings bypass it.
package validate

import (
	"errors"
	"strings"

	"voxpad/internal/domain"
)

const (
	// AcceptedTypePrefix is the MIME prefix required of upload candidates.
	AcceptedTypePrefix = "audio/"
	// DefaultMaxUploadBytes is the upload size ceiling when no limit is
	// configured.
	DefaultMaxUploadBytes = 10 * 1024 * 1024
)

var (
	ErrInvalidType = errors.New("file is not an audio type")
	ErrOversize    = errors.New("file exceeds the upload size limit")
)

// CheckUpload verifies type and size of a candidate. A non-positive
// maxBytes falls back to DefaultMaxUploadBytes. The checks are
// independent; type is reported first when both fail.
func CheckUpload(candidate domain.UploadCandidate, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if !strings.HasPrefix(candidate.MIMEType, AcceptedTypePrefix) {
		return ErrInvalidType
	}
	if int64(len(candidate.Data)) > maxBytes {
		return ErrOversize
	}
	return nil
}
