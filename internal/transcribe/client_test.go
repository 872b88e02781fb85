package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voxpad/internal/domain"
)

func TestTranscribeSendsMultipartFileField(t *testing.T) {
	t.Parallel()

	var gotFilename string
	var gotBytes []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file field: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotBytes, _ = io.ReadAll(file)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transcription": "hello there", "language": "en", "filename": "a.webm", "status": "success"}`))
	}))
	defer server.Close()

	client := mustClient(t, server.URL+"/transcribe")
	result, err := client.Transcribe(context.Background(), []byte("audio-bytes"), "a.webm")
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if result.Text != "hello there" || result.Language != "en" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotFilename != "a.webm" || string(gotBytes) != "audio-bytes" {
		t.Fatalf("unexpected upload: filename=%q bytes=%q", gotFilename, gotBytes)
	}
}

func TestTranscribeTextFieldFallbacks(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		body string
		want string
	}{
		"transcription field": {body: `{"transcription": "hi"}`, want: "hi"},
		"text field":          {body: `{"text": "hi"}`, want: "hi"},
		"empty object":        {body: `{}`, want: FallbackText},
		"empty strings":       {body: `{"transcription": "", "text": ""}`, want: FallbackText},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			result, err := mustClient(t, server.URL).Transcribe(context.Background(), []byte("x"), "x.webm")
			if err != nil {
				t.Fatalf("transcribe failed: %v", err)
			}
			if result.Text != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, result.Text)
			}
		})
	}
}

func TestTranscribeServerErrorCarriesStatusAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Transcription failed: boom"}`))
	}))
	defer server.Close()

	_, err := mustClient(t, server.URL).Transcribe(context.Background(), []byte("x"), "x.webm")
	var serverErr *domain.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serverErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", serverErr.StatusCode)
	}
	if serverErr.Message != "Transcription failed: boom" {
		t.Fatalf("unexpected message: %q", serverErr.Message)
	}
}

func TestTranscribeNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close()

	_, err := mustClient(t, server.URL).Transcribe(context.Background(), []byte("x"), "x.webm")
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestTranscribeCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		// Drain the request so the connection is not left mid-body, then
		// hold the response until the test has observed the cancellation.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := mustClient(t, server.URL).Transcribe(ctx, []byte("x"), "x.webm")
		errCh <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for cancellation")
	}
}

func TestHealthProbe(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	}))
	defer server.Close()

	client := mustClient(t, server.URL+"/transcribe")
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if gotPath != "/health" {
		t.Fatalf("unexpected health path: %q", gotPath)
	}
}

func TestNewClientRejectsRelativeEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("/transcribe", 0); err == nil {
		t.Fatalf("expected error for relative endpoint")
	}
}

func mustClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	client, err := NewClient(endpoint, 5*time.Second)
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return client
}
