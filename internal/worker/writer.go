// Package worker provides background processing for persistence jobs.
package worker

import (
	"log/slog"
	"sync"

	"github.com/molebeat/molebeat/internal/domain"
	"github.com/molebeat/molebeat/internal/ports"
)

// defaultQueueSize bounds how many persistence jobs may be pending before
// submitters block.
const defaultQueueSize = 256

// job is one queued persistence operation. trackID is set for track jobs so
// the writer can drop writes against deleted records.
type job struct {
	trackID int64
	run     func()
	done    chan struct{}
}

// Writer serializes persistence work on a single background goroutine, so
// writes execute in submission order. Deleting a track tombstones its id:
// queued or later-submitted saves for that id are discarded instead of
// resurrecting the record.
type Writer struct {
	tracks    ports.TrackRepository
	playlists ports.PlaylistRepository
	prefs     ports.PreferencesRepository
	logger    *slog.Logger

	jobs chan job
	wg   sync.WaitGroup

	mu        sync.Mutex
	tombstone map[int64]struct{}
}

// NewWriter creates a persistence writer over the given repositories.
func NewWriter(tracks ports.TrackRepository, playlists ports.PlaylistRepository, prefs ports.PreferencesRepository, logger *slog.Logger) *Writer {
	return &Writer{
		tracks:    tracks,
		playlists: playlists,
		prefs:     prefs,
		logger:    logger,
		jobs:      make(chan job, defaultQueueSize),
		tombstone: make(map[int64]struct{}),
	}
}

// Start launches the writer goroutine.
func (w *Writer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for j := range w.jobs {
			if j.run != nil && !w.buried(j.trackID) {
				j.run()
			}
			if j.done != nil {
				close(j.done)
			}
		}
	}()
}

// Stop drains the queue and waits for the writer goroutine to exit.
func (w *Writer) Stop() {
	close(w.jobs)
	w.wg.Wait()
}

// Flush blocks until every job submitted before it has executed.
func (w *Writer) Flush() {
	done := make(chan struct{})
	w.jobs <- job{done: done}
	<-done
}

// SaveTrack queues a full track save with its binaries.
func (w *Writer) SaveTrack(track domain.Track, audio, image []byte) {
	w.submit(track.ID, func() {
		if err := w.tracks.Save(&track, audio, image); err != nil {
			w.logger.Warn("failed to persist track",
				slog.Int64("track_id", track.ID),
				slog.String("error", err.Error()))
		}
	})
}

// UpdateTrackMetadata queues a metadata-only track update.
func (w *Writer) UpdateTrackMetadata(track domain.Track) {
	w.submit(track.ID, func() {
		if err := w.tracks.UpdateMetadata(&track); err != nil {
			w.logger.Warn("failed to persist track metadata",
				slog.Int64("track_id", track.ID),
				slog.String("error", err.Error()))
		}
	})
}

// DeleteTrack tombstones the id, so pending saves are dropped, then queues
// the deletion itself.
func (w *Writer) DeleteTrack(id int64) {
	w.mu.Lock()
	w.tombstone[id] = struct{}{}
	w.mu.Unlock()

	w.submit(0, func() {
		if err := w.tracks.Delete(id); err != nil {
			w.logger.Warn("failed to delete track",
				slog.Int64("track_id", id),
				slog.String("error", err.Error()))
		}
	})
}

// ClearTracks tombstones the given ids and queues removal of all records.
func (w *Writer) ClearTracks(ids []int64) {
	w.mu.Lock()
	for _, id := range ids {
		w.tombstone[id] = struct{}{}
	}
	w.mu.Unlock()

	w.submit(0, func() {
		if err := w.tracks.Clear(); err != nil {
			w.logger.Warn("failed to clear tracks", slog.String("error", err.Error()))
		}
	})
}

// SavePlaylist queues a playlist save.
func (w *Writer) SavePlaylist(playlist domain.Playlist) {
	playlist.TrackIDs = append([]int64(nil), playlist.TrackIDs...)
	w.submit(0, func() {
		if err := w.playlists.Save(&playlist); err != nil {
			w.logger.Warn("failed to persist playlist",
				slog.String("playlist_id", playlist.ID),
				slog.String("error", err.Error()))
		}
	})
}

// DeletePlaylist queues a playlist deletion.
func (w *Writer) DeletePlaylist(id string) {
	w.submit(0, func() {
		if err := w.playlists.Delete(id); err != nil {
			w.logger.Warn("failed to delete playlist",
				slog.String("playlist_id", id),
				slog.String("error", err.Error()))
		}
	})
}

// SaveFavorites queues a favorites save.
func (w *Writer) SaveFavorites(ids []int64) {
	ids = append([]int64(nil), ids...)
	w.submit(0, func() {
		if err := w.prefs.SaveFavorites(ids); err != nil {
			w.logger.Warn("failed to persist favorites", slog.String("error", err.Error()))
		}
	})
}

// SaveTheme queues a theme save.
func (w *Writer) SaveTheme(color string) {
	w.submit(0, func() {
		if err := w.prefs.SaveTheme(color); err != nil {
			w.logger.Warn("failed to persist theme", slog.String("error", err.Error()))
		}
	})
}

// submit queues a job, blocking when the queue is full so write order is
// never sacrificed to backpressure.
func (w *Writer) submit(trackID int64, run func()) {
	w.jobs <- job{trackID: trackID, run: run}
}

// buried reports whether a track id has been tombstoned. Non-track jobs
// carry id 0, which is never a valid track id.
func (w *Writer) buried(trackID int64) bool {
	if trackID == 0 {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.tombstone[trackID]
	return ok
}
