// Package audio provides the ffmpeg-backed capture device.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"voxpad/internal/ports"
)

// FFMPEGDevice captures microphone audio through an ffmpeg subprocess
// encoding to webm/opus on stdout.
type FFMPEGDevice struct {
	command string
}

func NewFFMPEGDevice(command string) *FFMPEGDevice {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGDevice{command: command}
}

func (d *FFMPEGDevice) Acquire(ctx context.Context, cfg ports.CaptureConfig) (ports.CaptureStream, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	if cfg.ChunkInterval <= 0 {
		cfg.ChunkInterval = time.Second
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-c:a", "libopus",
		"-f", "webm",
		"-",
	}

	cmd := exec.CommandContext(ctx, d.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("ffmpeg exited before capture started: %w: %s", err, trimSpaceSafe(stderr.String()))
		}
		return nil, errors.New("ffmpeg exited before capture started")
	case <-time.After(250 * time.Millisecond):
	}

	stream := &ffmpegStream{
		stdout:   stdout,
		stderr:   &stderr,
		process:  cmd.Process,
		waitErr:  waitErr,
		chunks:   make(chan []byte, 16),
		raw:      make(chan []byte, 16),
		pumpDone: make(chan struct{}),
	}
	go stream.readStdout()
	go stream.pump(cfg.ChunkInterval)
	return stream, nil
}

// ffmpegStream groups stdout bytes into chunks on a fixed cadence. The
// chunk channel closes only after the final partial chunk is emitted.
type ffmpegStream struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	chunks   chan []byte
	raw      chan []byte
	pumpDone chan struct{}

	stopOnce sync.Once
	stopErr  error
}

func (s *ffmpegStream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *ffmpegStream) readStdout() {
	defer close(s.raw)
	buf := make([]byte, 4096)
	for {
		n, err := s.stdout.Read(buf)
		if n > 0 {
			s.raw <- append([]byte(nil), buf[:n]...)
		}
		if err != nil {
			return
		}
	}
}

func (s *ffmpegStream) pump(interval time.Duration) {
	defer close(s.pumpDone)
	defer close(s.chunks)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []byte
	flush := func() {
		if len(pending) == 0 {
			return
		}
		s.chunks <- pending
		pending = nil
	}

	for {
		select {
		case data, ok := <-s.raw:
			if !ok {
				flush()
				return
			}
			pending = append(pending, data...)
		case <-ticker.C:
			flush()
		}
	}
}

// Release stops the subprocess, waits for the tail chunk to flush, and
// closes the chunk channel.
func (s *ffmpegStream) Release() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			if s.stopErr == nil {
				s.stopErr = closeErr
			}
		}
		<-s.pumpDone

		if s.stopErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, trimSpaceSafe(s.stderr.String()))
		}
	})

	return s.stopErr
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimSpaceSafe(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
