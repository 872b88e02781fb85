package bootstrap

import (
	"voxpad/internal/audio"
	"voxpad/internal/clock"
	"voxpad/internal/config"
	"voxpad/internal/ports"
	"voxpad/internal/store"
	"voxpad/internal/transcribe"
	"voxpad/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.SessionController
	Config     config.Config
	Store      *store.SQLite
	Client     ports.TranscriptionClient
}

// Build wires all backend dependencies for the current runtime. The
// caller owns closing Services.Store on shutdown.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	durable, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return Services{}, err
	}

	client, err := transcribe.NewClient(cfg.Server.TranscribeURL, cfg.Server.RequestTimeout)
	if err != nil {
		_ = durable.Close()
		return Services{}, err
	}

	controller := usecase.NewSessionController(
		audio.NewFFMPEGDevice(cfg.Audio.RecorderCommand),
		client,
		durable,
		clock.Wall{},
		eventSink,
		usecase.Config{
			Capture: ports.CaptureConfig{
				InputFormat:   cfg.Audio.InputFormat,
				InputDevice:   cfg.Audio.InputDevice,
				SampleRate:    cfg.Audio.SampleRate,
				Channels:      cfg.Audio.Channels,
				ChunkInterval: cfg.Audio.ChunkInterval,
			},
			TickInterval:    cfg.Session.TickInterval,
			HistoryCapacity: cfg.Session.HistoryCapacity,
			MaxUploadBytes:  cfg.Session.MaxUploadBytes,
		},
	)

	return Services{Controller: controller, Config: cfg, Store: durable, Client: client}, nil
}
