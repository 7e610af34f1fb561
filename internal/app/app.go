// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/molebeat/molebeat/internal/adapter/audio/beepengine"
	"github.com/molebeat/molebeat/internal/adapter/audio/mock"
	"github.com/molebeat/molebeat/internal/adapter/eventbus"
	"github.com/molebeat/molebeat/internal/adapter/lyrics/lrclib"
	"github.com/molebeat/molebeat/internal/adapter/metadata"
	"github.com/molebeat/molebeat/internal/adapter/repository/sqlite"
	"github.com/molebeat/molebeat/internal/adapter/shell"
	"github.com/molebeat/molebeat/internal/logger"
	"github.com/molebeat/molebeat/internal/ports"
	"github.com/molebeat/molebeat/internal/service"
	"github.com/molebeat/molebeat/internal/worker"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for main.go
type Application struct {
	// Core dependencies
	logger *slog.Logger

	// Infrastructure
	eventBus    ports.EventBus
	audioEngine ports.AudioEngine
	store       *sqlite.Store
	writer      *worker.Writer

	// Services
	playbackService   *service.PlaybackService
	queueService      *service.QueueService
	libraryService    *service.LibraryService
	playlistService   *service.PlaylistService
	lyricsService     *service.LyricsService
	equalizerService  *service.EqualizerService
	preferenceService *service.PreferenceService
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	app := &Application{}

	// Step 1: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: "text",
	})
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("app_name", config.AppName))

	// Step 2: Open the store and start the persistence writer
	dbPath, err := config.databasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	app.store, err = sqlite.Open(dbPath, app.logger.With(slog.String("component", "store")))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	app.writer = worker.NewWriter(
		app.store.Tracks(),
		app.store.Playlists(),
		app.store.Preferences(),
		app.logger.With(slog.String("component", "writer")),
	)
	app.writer.Start()

	// Step 3: Create an event bus
	syncBus := eventbus.NewSyncEventBus()
	syncBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = syncBus

	// Step 4: Create an audio engine. Activation is deferred to the first
	// play command, so construction never touches the audio device.
	if config.UseMockAudio {
		app.audioEngine = mock.NewEngine()
	} else {
		app.audioEngine = beepengine.NewEngine(
			app.logger.With(slog.String("engine", "beep")),
			config.SampleRate,
		)
	}

	// Step 5: Create services (with dependency injection)
	app.playbackService = service.NewPlaybackService(
		app.logger.With(slog.String("service", "playback")),
		app.audioEngine,
		app.eventBus,
		app.store.Tracks(),
	)

	app.libraryService, err = service.NewLibraryService(
		app.logger.With(slog.String("service", "library")),
		app.eventBus,
		app.store.Tracks(),
		app.writer,
		metadata.NewExtractor(app.logger.With(slog.String("component", "metadata"))),
		app.audioEngine,
		app.playbackService,
	)
	if err != nil {
		app.abortStartup()
		return nil, err
	}

	app.queueService = service.NewQueueService(
		app.logger.With(slog.String("service", "queue")),
		app.eventBus,
		app.playbackService,
		app.libraryService,
	)

	app.playlistService, err = service.NewPlaylistService(
		app.logger.With(slog.String("service", "playlist")),
		app.eventBus,
		app.store.Playlists(),
		app.store.Preferences(),
		app.writer,
	)
	if err != nil {
		app.abortStartup()
		return nil, err
	}

	app.lyricsService = service.NewLyricsService(
		app.logger.With(slog.String("service", "lyrics")),
		app.eventBus,
		lrclib.NewClient(config.LyricsBaseURL, config.LyricsTimeout,
			app.logger.With(slog.String("component", "lrclib"))),
		config.LyricsTimeout,
	)

	app.equalizerService = service.NewEqualizerService(
		app.logger.With(slog.String("service", "equalizer")),
		app.audioEngine,
		app.eventBus,
	)

	app.preferenceService, err = service.NewPreferenceService(
		app.logger.With(slog.String("service", "preference")),
		app.eventBus,
		app.store.Preferences(),
		app.writer,
		shell.NewNoop(app.logger.With(slog.String("component", "shell"))),
	)
	if err != nil {
		app.abortStartup()
		return nil, err
	}

	return app, nil
}

// abortStartup tears down whatever a failed NewApplication already built.
func (a *Application) abortStartup() {
	if a.playbackService != nil {
		if err := a.playbackService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown playback service", slog.Any("error", err))
		}
	}
	a.closeInfrastructure()
}

// Playback returns the playback service.
func (a *Application) Playback() *service.PlaybackService { return a.playbackService }

// Queue returns the queue service.
func (a *Application) Queue() *service.QueueService { return a.queueService }

// Library returns the library service.
func (a *Application) Library() *service.LibraryService { return a.libraryService }

// Playlists returns the playlist service.
func (a *Application) Playlists() *service.PlaylistService { return a.playlistService }

// Lyrics returns the lyrics service.
func (a *Application) Lyrics() *service.LyricsService { return a.lyricsService }

// Equalizer returns the equalizer service.
func (a *Application) Equalizer() *service.EqualizerService { return a.equalizerService }

// Preferences returns the preference service.
func (a *Application) Preferences() *service.PreferenceService { return a.preferenceService }

// EventBus returns the application event bus.
func (a *Application) EventBus() ports.EventBus { return a.eventBus }

// Run blocks until the context is cancelled.
// This is called from main.go after the application is created.
func (a *Application) Run(ctx context.Context) {
	a.logger.Info("MoleBeat started",
		slog.Int("tracks", len(a.libraryService.Tracks())),
		slog.Int("playlists", len(a.playlistService.Playlists())))

	<-ctx.Done()
}

// Shutdown gracefully shuts down the application.
// This should be called via deferring in main.go.
func (a *Application) Shutdown() {
	a.logger.Info("shutting down application")

	// Shutdown services (in reverse order of creation)
	if a.lyricsService != nil {
		a.lyricsService.Shutdown()
	}
	if a.playlistService != nil {
		a.playlistService.Shutdown()
	}
	if a.queueService != nil {
		a.queueService.Shutdown()
	}
	if a.libraryService != nil {
		a.libraryService.Shutdown()
	}
	if a.playbackService != nil {
		if err := a.playbackService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown playback service", slog.Any("error", err))
		}
	}

	if a.audioEngine != nil {
		if err := a.audioEngine.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown audio engine", slog.Any("error", err))
		}
	}

	a.closeInfrastructure()
	a.logger.Info("application shutdown complete")
}

// closeInfrastructure drains pending writes and closes the store.
func (a *Application) closeInfrastructure() {
	if a.writer != nil {
		a.writer.Stop()
		a.writer = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close database", slog.Any("error", err))
		}
		a.store = nil
	}
	if bus, ok := a.eventBus.(*eventbus.SyncEventBus); ok && bus != nil {
		if err := bus.Close(); err != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", err))
		}
	}
}
