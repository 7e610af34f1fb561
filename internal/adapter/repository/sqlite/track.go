package sqlite

import (
	"bytes"
	"database/sql"
	"io"
	"time"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
)

// TrackRepository persists tracks with their audio and cover-art blobs.
type TrackRepository struct {
	store *Store
}

// Save inserts or replaces a track record with its binaries.
func (r *TrackRepository) Save(track *domain.Track, audio, image []byte) error {
	query := `
		INSERT INTO tracks (id, title, artist, album, duration, image_url, format,
			play_count, last_played, added_at, audio, image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			artist=excluded.artist,
			album=excluded.album,
			duration=excluded.duration,
			image_url=excluded.image_url,
			format=excluded.format,
			play_count=excluded.play_count,
			last_played=excluded.last_played,
			added_at=excluded.added_at,
			audio=excluded.audio,
			image=excluded.image;
	`
	_, err := r.store.db.Exec(query,
		track.ID, track.Title, track.Artist, track.Album, track.Duration,
		track.ImageURL, track.Format, track.PlayCount,
		nullableTime(track.LastPlayed), track.AddedAt, audio, image)
	if err != nil {
		return domain.NewRepositoryError("save", "track", "failed to save track", err)
	}
	return nil
}

// UpdateMetadata rewrites a track's metadata fields, preserving the stored
// audio and image blobs. Missing records are a no-op.
func (r *TrackRepository) UpdateMetadata(track *domain.Track) error {
	query := `
		UPDATE tracks
		SET title = ?, artist = ?, album = ?, duration = ?, image_url = ?,
			play_count = ?, last_played = ?
		WHERE id = ?
	`
	_, err := r.store.db.Exec(query,
		track.Title, track.Artist, track.Album, track.Duration, track.ImageURL,
		track.PlayCount, nullableTime(track.LastPlayed), track.ID)
	if err != nil {
		return domain.NewRepositoryError("update_metadata", "track", "failed to update track", err)
	}
	return nil
}

// LoadAll retrieves all stored tracks, newest import first. Audio blobs are
// not materialized; HasAudio is derived from their presence.
func (r *TrackRepository) LoadAll() ([]domain.Track, error) {
	query := `
		SELECT id, title, artist, album, duration, image_url, format,
			play_count, last_played, added_at, audio IS NOT NULL
		FROM tracks
		ORDER BY added_at DESC, id DESC
	`
	rows, err := r.store.db.Query(query)
	if err != nil {
		return nil, domain.NewRepositoryError("load_all", "track", "failed to query tracks", err)
	}
	defer rows.Close()

	tracks := make([]domain.Track, 0)
	for rows.Next() {
		var track domain.Track
		var lastPlayed sql.NullTime
		if err := rows.Scan(
			&track.ID, &track.Title, &track.Artist, &track.Album,
			&track.Duration, &track.ImageURL, &track.Format,
			&track.PlayCount, &lastPlayed, &track.AddedAt, &track.HasAudio,
		); err != nil {
			return nil, domain.NewRepositoryError("load_all", "track", "failed to scan track", err)
		}
		if lastPlayed.Valid {
			track.LastPlayed = lastPlayed.Time
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRepositoryError("load_all", "track", "failed to iterate tracks", err)
	}

	return tracks, nil
}

// AudioReader opens the stored audio blob for a track.
func (r *TrackRepository) AudioReader(id int64) (io.ReadSeekCloser, string, error) {
	var audio []byte
	var format string
	row := r.store.db.QueryRow("SELECT audio, format FROM tracks WHERE id = ?", id)
	if err := row.Scan(&audio, &format); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", domain.ErrTrackNotFound
		}
		return nil, "", domain.NewRepositoryError("audio_reader", "track", "failed to load audio", err)
	}
	if len(audio) == 0 {
		return nil, "", domain.ErrAudioUnavailable
	}
	return blobReader{bytes.NewReader(audio)}, format, nil
}

// Image returns the stored cover-art blob, or nil when none exists.
func (r *TrackRepository) Image(id int64) ([]byte, error) {
	var image []byte
	row := r.store.db.QueryRow("SELECT image FROM tracks WHERE id = ?", id)
	if err := row.Scan(&image); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrTrackNotFound
		}
		return nil, domain.NewRepositoryError("image", "track", "failed to load image", err)
	}
	return image, nil
}

// Delete removes a track record by id. Missing records are a no-op.
func (r *TrackRepository) Delete(id int64) error {
	if _, err := r.store.db.Exec("DELETE FROM tracks WHERE id = ?", id); err != nil {
		return domain.NewRepositoryError("delete", "track", "failed to delete track", err)
	}
	return nil
}

// Clear removes all track records.
func (r *TrackRepository) Clear() error {
	if _, err := r.store.db.Exec("DELETE FROM tracks"); err != nil {
		return domain.NewRepositoryError("clear", "track", "failed to clear tracks", err)
	}
	return nil
}

// blobReader adapts an in-memory blob to the stream interface the audio
// engine consumes.
type blobReader struct {
	*bytes.Reader
}

func (blobReader) Close() error { return nil }

// nullableTime maps the zero time onto NULL so "never played" round-trips.
func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// Verify that TrackRepository implements the port
var _ ports.TrackRepository = (*TrackRepository)(nil)
