// Package transcribe talks to the whisper transcription backend over
// multipart HTTP.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"voxpad/internal/domain"
)

// FallbackText is returned when the backend reports success without any
// transcription content.
const FallbackText = "No transcription available"

// Client posts audio payloads to the configured endpoint.
type Client struct {
	endpoint  string
	healthURL string
	httpc     *http.Client
}

// NewClient derives the health URL from the endpoint's origin.
func NewClient(endpoint string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("endpoint %q is not an absolute URL", endpoint)
	}
	health := *parsed
	health.Path = "/health"
	health.RawQuery = ""

	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		endpoint:  endpoint,
		healthURL: health.String(),
		httpc:     &http.Client{Timeout: timeout},
	}, nil
}

type transcribeResponse struct {
	Transcription string `json:"transcription"`
	Text          string `json:"text"`
	Language      string `json:"language"`
	Filename      string `json:"filename"`
	Status        string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Transcribe sends payload as the multipart `file` field. Cancellation
// of ctx surfaces as a context error; transport failures as
// NetworkError; non-2xx statuses as ServerError carrying the backend's
// error body when one decodes.
func (c *Client) Transcribe(ctx context.Context, payload []byte, filename string) (domain.Transcription, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := fw.Write(payload); err != nil {
		return domain.Transcription{}, fmt.Errorf("build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return domain.Transcription{}, fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Transcription{}, ctx.Err()
		}
		return domain.Transcription{}, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Transcription{}, &domain.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var serverErr errorResponse
		_ = json.Unmarshal(raw, &serverErr)
		return domain.Transcription{}, &domain.ServerError{StatusCode: resp.StatusCode, Message: serverErr.Error}
	}

	var decoded transcribeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.Transcription{}, &domain.NetworkError{Err: fmt.Errorf("decode response: %w", err)}
	}

	text := decoded.Transcription
	if text == "" {
		text = decoded.Text
	}
	if text == "" {
		text = FallbackText
	}

	return domain.Transcription{
		Text:     text,
		Language: decoded.Language,
		Filename: decoded.Filename,
	}, nil
}

// Health probes the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ServerError{StatusCode: resp.StatusCode}
	}
	return nil
}
