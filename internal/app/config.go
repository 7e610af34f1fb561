package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/molebeat/molebeat/internal/adapter/lyrics/lrclib"
	"github.com/molebeat/molebeat/internal/logger"
)

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// DBPath is the sqlite database location ("" resolves to the user
	// config directory)
	DBPath string

	// SampleRate is the audio output sample rate
	SampleRate int

	// LyricsBaseURL is the lyrics API root
	LyricsBaseURL string

	// LyricsTimeout bounds each lyrics fetch
	LyricsTimeout time.Duration

	// UseMockAudio swaps in a silent audio engine (for testing and
	// headless environments)
	UseMockAudio bool

	// LogLevel controls logging verbosity
	LogLevel slog.Level
}

// DefaultConfig returns the default application configuration. A .env file
// in the working directory and MOLEBEAT_* environment variables override
// the defaults.
func DefaultConfig() Config {
	// missing .env is the normal case
	_ = godotenv.Load()

	loggerCfg := logger.DefaultConfig()
	cfg := Config{
		AppID:         "com.molebeat.app",
		AppName:       "MoleBeat",
		SampleRate:    44100,
		LyricsBaseURL: lrclib.DefaultBaseURL,
		LyricsTimeout: 10 * time.Second,
		LogLevel:      loggerCfg.Level,
	}

	if path := os.Getenv("MOLEBEAT_DB_PATH"); path != "" {
		cfg.DBPath = path
	}
	if url := os.Getenv("MOLEBEAT_LYRICS_URL"); url != "" {
		cfg.LyricsBaseURL = url
	}
	if rate := os.Getenv("MOLEBEAT_SAMPLE_RATE"); rate != "" {
		if parsed, err := strconv.Atoi(rate); err == nil && parsed > 0 {
			cfg.SampleRate = parsed
		}
	}
	if mock := os.Getenv("MOLEBEAT_MOCK_AUDIO"); mock != "" {
		if parsed, err := strconv.ParseBool(mock); err == nil {
			cfg.UseMockAudio = parsed
		}
	}

	return cfg
}

// databasePath resolves the configured path, falling back to the user
// config directory.
func (c Config) databasePath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(base, "molebeat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "molebeat.db"), nil
}
