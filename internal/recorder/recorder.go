// Package recorder owns the capture lifecycle and the elapsed-time
// counter. It consumes chunks from a device stream and assembles them
// into one payload on stop.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voxpad/internal/domain"
	"voxpad/internal/ports"
)

var (
	ErrNotIdle      = errors.New("a recording is already in progress")
	ErrNotRecording = errors.New("no recording is in progress")
	ErrNoAudio      = errors.New("no audio captured")
)

// Config controls capture behavior.
type Config struct {
	Capture      ports.CaptureConfig
	TickInterval time.Duration
}

// Result is the assembled outcome of a stopped recording.
type Result struct {
	Payload  []byte
	Filename string
}

// Controller drives Idle -> Requesting -> Active -> Stopping -> Idle.
type Controller struct {
	device    ports.DeviceProvider
	ticks     ports.TickSource
	onElapsed func(seconds int)
	cfg       Config

	mu     sync.Mutex
	state  domain.RecordingState
	active *activeCapture
}

type activeCapture struct {
	stream    ports.CaptureStream
	stopTicks func()
	tickQuit  chan struct{}
	tickDone  chan struct{}
	collected chan struct{}

	chunkMu sync.Mutex
	chunks  [][]byte
	elapsed int
}

// NewController wires a capture device and tick source. onElapsed is
// invoked once per tick while recording and with zero when the counter
// resets; it may be nil.
func NewController(device ports.DeviceProvider, ticks ports.TickSource, onElapsed func(seconds int), cfg Config) *Controller {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Capture.ChunkInterval <= 0 {
		cfg.Capture.ChunkInterval = time.Second
	}
	if onElapsed == nil {
		onElapsed = func(int) {}
	}
	return &Controller{
		device:    device,
		ticks:     ticks,
		onElapsed: onElapsed,
		cfg:       cfg,
		state:     domain.RecordingIdle,
	}
}

// Start requests a capture stream. It suspends until the device grant
// resolves; a denied grant returns a DeviceError and the controller is
// back at Idle.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != domain.RecordingIdle {
		c.mu.Unlock()
		return ErrNotIdle
	}
	c.state = domain.RecordingRequesting
	c.mu.Unlock()

	stream, err := c.device.Acquire(ctx, c.cfg.Capture)
	if err != nil {
		c.mu.Lock()
		c.state = domain.RecordingIdle
		c.mu.Unlock()
		return &domain.DeviceError{Err: err}
	}

	active := &activeCapture{
		stream:    stream,
		tickQuit:  make(chan struct{}),
		tickDone:  make(chan struct{}),
		collected: make(chan struct{}),
	}
	tickCh, stopTicks := c.ticks.Ticks(c.cfg.TickInterval)
	active.stopTicks = stopTicks

	c.mu.Lock()
	c.state = domain.RecordingActive
	c.active = active
	c.mu.Unlock()

	go collectChunks(active)
	go c.countElapsed(active, tickCh)
	return nil
}

// Stop drains buffered chunks, finalizes the payload, and releases the
// device stream. It is an error unless a recording is active.
func (c *Controller) Stop() (Result, error) {
	c.mu.Lock()
	if c.state != domain.RecordingActive {
		c.mu.Unlock()
		return Result{}, ErrNotRecording
	}
	c.state = domain.RecordingStopping
	active := c.active
	c.mu.Unlock()

	close(active.tickQuit)
	active.stopTicks()
	<-active.tickDone
	c.onElapsed(0)

	// Release flushes the device's tail chunk and closes the chunk
	// channel; waiting on collected guarantees every chunk emitted
	// before this stop has been appended.
	releaseErr := active.stream.Release()
	<-active.collected

	var size int
	active.chunkMu.Lock()
	for _, chunk := range active.chunks {
		size += len(chunk)
	}
	payload := make([]byte, 0, size)
	for _, chunk := range active.chunks {
		payload = append(payload, chunk...)
	}
	active.chunkMu.Unlock()

	c.mu.Lock()
	c.state = domain.RecordingIdle
	c.active = nil
	c.mu.Unlock()

	if len(payload) == 0 {
		if releaseErr != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrNoAudio, releaseErr)
		}
		return Result{}, ErrNoAudio
	}

	return Result{
		Payload:  payload,
		Filename: fmt.Sprintf("recording-%s.webm", time.Now().Format("20060102-150405")),
	}, nil
}

// Abort releases the device stream and discards buffered chunks.
func (c *Controller) Abort() error {
	c.mu.Lock()
	if c.state != domain.RecordingActive {
		c.mu.Unlock()
		return ErrNotRecording
	}
	c.state = domain.RecordingStopping
	active := c.active
	c.mu.Unlock()

	close(active.tickQuit)
	active.stopTicks()
	<-active.tickDone
	c.onElapsed(0)

	_ = active.stream.Release()
	<-active.collected

	c.mu.Lock()
	c.state = domain.RecordingIdle
	c.active = nil
	c.mu.Unlock()
	return nil
}

// State reports the current lifecycle state.
func (c *Controller) State() domain.RecordingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Elapsed reports whole seconds recorded so far, zero when idle.
func (c *Controller) Elapsed() int {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active == nil {
		return 0
	}
	active.chunkMu.Lock()
	defer active.chunkMu.Unlock()
	return active.elapsed
}

func collectChunks(active *activeCapture) {
	defer close(active.collected)
	for chunk := range active.stream.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		active.chunkMu.Lock()
		active.chunks = append(active.chunks, chunk)
		active.chunkMu.Unlock()
	}
}

func (c *Controller) countElapsed(active *activeCapture, ticks <-chan time.Time) {
	defer close(active.tickDone)
	for {
		select {
		case <-ticks:
			active.chunkMu.Lock()
			active.elapsed++
			seconds := active.elapsed
			active.chunkMu.Unlock()
			c.onElapsed(seconds)
		case <-active.tickQuit:
			return
		}
	}
}
