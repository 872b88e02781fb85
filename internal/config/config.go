package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the app.
type Config struct {
	Server  ServerConfig
	Audio   AudioConfig
	Session SessionConfig
	Storage StorageConfig
}

type ServerConfig struct {
	TranscribeURL  string
	RequestTimeout time.Duration
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	ChunkInterval   time.Duration
}

type SessionConfig struct {
	TickInterval    time.Duration
	HistoryCapacity int
	MaxUploadBytes  int64
}

type StorageConfig struct {
	DBPath string
}

// Load resolves configuration from a local .env file, environment
// variables, and sensible defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			TranscribeURL:  envOrDefault("VOXPAD_TRANSCRIBE_URL", "http://localhost:5000/transcribe"),
			RequestTimeout: time.Duration(envOrDefaultInt("VOXPAD_REQUEST_TIMEOUT_MS", 120000)) * time.Millisecond,
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("VOXPAD_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("VOXPAD_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("VOXPAD_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("VOXPAD_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("VOXPAD_CHANNELS", 1),
			ChunkInterval:   time.Duration(envOrDefaultInt("VOXPAD_CHUNK_INTERVAL_MS", 1000)) * time.Millisecond,
		},
		Session: SessionConfig{
			TickInterval:    time.Duration(envOrDefaultInt("VOXPAD_TICK_INTERVAL_MS", 1000)) * time.Millisecond,
			HistoryCapacity: envOrDefaultInt("VOXPAD_HISTORY_CAPACITY", 10),
			MaxUploadBytes:  int64(envOrDefaultInt("VOXPAD_MAX_UPLOAD_BYTES", 10*1024*1024)),
		},
		Storage: StorageConfig{
			DBPath: strings.TrimSpace(os.Getenv("VOXPAD_DB_PATH")),
		},
	}

	if _, err := url.ParseRequestURI(cfg.Server.TranscribeURL); err != nil {
		return Config{}, errors.New("VOXPAD_TRANSCRIBE_URL is not a valid URL")
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 120 * time.Second
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.ChunkInterval <= 0 {
		cfg.Audio.ChunkInterval = time.Second
	}
	if cfg.Session.TickInterval <= 0 {
		cfg.Session.TickInterval = time.Second
	}
	if cfg.Session.HistoryCapacity <= 0 {
		cfg.Session.HistoryCapacity = 10
	}
	if cfg.Session.MaxUploadBytes <= 0 {
		cfg.Session.MaxUploadBytes = 10 * 1024 * 1024
	}
	if cfg.Storage.DBPath == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, errors.New("could not determine user config directory")
		}
		cfg.Storage.DBPath = filepath.Join(base, "voxpad", "voxpad.sqlite")
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
