package sqlite

import (
	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
)

// PlaylistRepository persists playlists with ordered track memberships in a
// join table.
type PlaylistRepository struct {
	store *Store
}

// Save inserts or replaces a playlist, rewriting its membership rows so the
// stored order always matches the in-memory order.
func (r *PlaylistRepository) Save(playlist *domain.Playlist) error {
	tx, err := r.store.db.Begin()
	if err != nil {
		return domain.NewRepositoryError("save", "playlist", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO playlists (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name;
	`
	if _, err := tx.Exec(query, playlist.ID, playlist.Name, playlist.Created); err != nil {
		return domain.NewRepositoryError("save", "playlist", "failed to save playlist", err)
	}

	if _, err := tx.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ?", playlist.ID); err != nil {
		return domain.NewRepositoryError("save", "playlist", "failed to clear memberships", err)
	}

	stmt, err := tx.Prepare("INSERT INTO playlist_tracks (playlist_id, track_id, position) VALUES (?, ?, ?)")
	if err != nil {
		return domain.NewRepositoryError("save", "playlist", "failed to prepare membership insert", err)
	}
	defer stmt.Close()

	for position, trackID := range playlist.TrackIDs {
		if _, err := stmt.Exec(playlist.ID, trackID, position); err != nil {
			return domain.NewRepositoryError("save", "playlist", "failed to save membership", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewRepositoryError("save", "playlist", "failed to commit", err)
	}
	return nil
}

// LoadAll retrieves all saved playlists in creation order, memberships in
// stored position order.
func (r *PlaylistRepository) LoadAll() ([]domain.Playlist, error) {
	rows, err := r.store.db.Query("SELECT id, name, created_at FROM playlists ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, domain.NewRepositoryError("load_all", "playlist", "failed to query playlists", err)
	}
	defer rows.Close()

	playlists := make([]domain.Playlist, 0)
	for rows.Next() {
		var playlist domain.Playlist
		if err := rows.Scan(&playlist.ID, &playlist.Name, &playlist.Created); err != nil {
			return nil, domain.NewRepositoryError("load_all", "playlist", "failed to scan playlist", err)
		}
		playlist.TrackIDs = make([]int64, 0)
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewRepositoryError("load_all", "playlist", "failed to iterate playlists", err)
	}

	for i := range playlists {
		trackIDs, err := r.loadMemberships(playlists[i].ID)
		if err != nil {
			return nil, err
		}
		playlists[i].TrackIDs = trackIDs
	}

	return playlists, nil
}

func (r *PlaylistRepository) loadMemberships(playlistID string) ([]int64, error) {
	rows, err := r.store.db.Query(
		"SELECT track_id FROM playlist_tracks WHERE playlist_id = ? ORDER BY position ASC", playlistID)
	if err != nil {
		return nil, domain.NewRepositoryError("load_all", "playlist", "failed to query memberships", err)
	}
	defer rows.Close()

	trackIDs := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, domain.NewRepositoryError("load_all", "playlist", "failed to scan membership", err)
		}
		trackIDs = append(trackIDs, id)
	}
	return trackIDs, rows.Err()
}

// Delete removes a playlist by id; membership rows cascade.
func (r *PlaylistRepository) Delete(id string) error {
	if _, err := r.store.db.Exec("DELETE FROM playlists WHERE id = ?", id); err != nil {
		return domain.NewRepositoryError("delete", "playlist", "failed to delete playlist", err)
	}
	return nil
}

// Verify that PlaylistRepository implements the port
var _ ports.PlaylistRepository = (*PlaylistRepository)(nil)
