package sqlite

import (
	"database/sql"
	"encoding/json"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
)

const (
	keyFavorites = "favorites"
	keyTheme     = "theme"
)

// PreferencesRepository persists scalar preferences in a key/value table.
// Favorites are stored as a JSON id array.
type PreferencesRepository struct {
	store *Store
}

// SaveFavorites persists the favorite-track-id list.
func (r *PreferencesRepository) SaveFavorites(ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	value, err := json.Marshal(ids)
	if err != nil {
		return domain.NewRepositoryError("save_favorites", "preferences", "failed to encode favorites", err)
	}
	return r.set(keyFavorites, string(value))
}

// LoadFavorites retrieves the favorite-track-id list, empty when unset.
func (r *PreferencesRepository) LoadFavorites() ([]int64, error) {
	value, err := r.get(keyFavorites)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return []int64{}, nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		return nil, domain.NewRepositoryError("load_favorites", "preferences", "failed to decode favorites", err)
	}
	return ids, nil
}

// SaveTheme persists the accent theme color.
func (r *PreferencesRepository) SaveTheme(color string) error {
	return r.set(keyTheme, color)
}

// LoadTheme retrieves the saved accent color, or "" when unset.
func (r *PreferencesRepository) LoadTheme() (string, error) {
	return r.get(keyTheme)
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	if _, err := r.store.db.Exec("DELETE FROM preferences"); err != nil {
		return domain.NewRepositoryError("clear", "preferences", "failed to clear preferences", err)
	}
	return nil
}

func (r *PreferencesRepository) set(key, value string) error {
	query := `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value;
	`
	if _, err := r.store.db.Exec(query, key, value); err != nil {
		return domain.NewRepositoryError("set", "preferences", "failed to save preference", err)
	}
	return nil
}

func (r *PreferencesRepository) get(key string) (string, error) {
	var value string
	row := r.store.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", domain.NewRepositoryError("get", "preferences", "failed to load preference", err)
	}
	return value, nil
}

// Verify that PreferencesRepository implements the port
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
