// Package sqlite provides SQLite-backed implementations of the repository
// ports. Track audio and cover art are stored inline as blobs, so the whole
// library travels in a single database file.
package sqlite

import (
	"database/sql"
	"log/slog"

	_ "github.com/mattn/go-sqlite3" // database/sql driver
	"github.com/molebeat/molebeat/internal/domain"
)

// Store owns the database connection shared by the track, playlist and
// preferences repositories.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a connection to the database file at path and runs the
// schema migration. The file is created if it does not exist.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, domain.NewRepositoryError("open", "sqlite", "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, domain.NewRepositoryError("open", "sqlite", "failed to ping database", err)
	}

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, domain.NewRepositoryError("migrate", "sqlite", "schema migration failed", err)
	}

	logger.Info("database opened", slog.String("path", path))
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tracks returns the track repository backed by this store.
func (s *Store) Tracks() *TrackRepository {
	return &TrackRepository{store: s}
}

// Playlists returns the playlist repository backed by this store.
func (s *Store) Playlists() *PlaylistRepository {
	return &PlaylistRepository{store: s}
}

// Preferences returns the preferences repository backed by this store.
func (s *Store) Preferences() *PreferencesRepository {
	return &PreferencesRepository{store: s}
}

// migrate creates the schema on startup when missing.
func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT NOT NULL,
		duration TEXT NOT NULL,
		image_url TEXT NOT NULL,
		format TEXT NOT NULL,
		play_count INTEGER NOT NULL DEFAULT 0,
		last_played DATETIME,
		added_at DATETIME NOT NULL,
		audio BLOB,
		image BLOB
	);

	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id TEXT NOT NULL,
		track_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (playlist_id, track_id),
		FOREIGN KEY(playlist_id) REFERENCES playlists(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(query)
	return err
}
