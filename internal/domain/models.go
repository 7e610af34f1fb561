// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the MoleBeat music player.
package domain

import (
	"fmt"
	"math"
	"time"
)

// Track represents a single audio item with metadata and an optionally
// playable source stored in the library database.
type Track struct {
	// ID is a unique numeric identifier, generated at import time from a
	// timestamp+random composite. Immutable once assigned.
	ID int64

	// Title is the song title (from tags or filename)
	Title string

	// Artist is the performing artist name
	Artist string

	// Album is the album name
	Album string

	// Duration is the track length rendered as "M:SS"
	Duration string

	// ImageURL references cover art; a placeholder when no art is embedded
	ImageURL string

	// Format is the file extension of the imported audio (".mp3", ".flac", ...)
	Format string

	// HasAudio reports whether audio bytes are stored for this track.
	// Seed tracks and not-yet-hydrated records have no audio.
	HasAudio bool

	// PlayCount is a monotonic counter incremented on every play-start
	PlayCount int

	// LastPlayed is overwritten on every play-start (zero if never played)
	LastPlayed time.Time

	// AddedAt is the import timestamp; the library orders newest-first
	AddedAt time.Time
}

// DurationSeconds converts the "M:SS" duration string to seconds.
// Malformed strings yield 0.
func (t Track) DurationSeconds() int {
	var min, sec int
	if _, err := fmt.Sscanf(t.Duration, "%d:%d", &min, &sec); err != nil {
		return 0
	}
	return min*60 + sec
}

// FormatDuration renders a duration as "M:SS" for display and storage.
func FormatDuration(d time.Duration) string {
	total := int(math.Floor(d.Seconds()))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Playlist is a named, user-ordered list of track references.
// TrackIDs may reference tracks that no longer exist; readers must treat
// dangling ids defensively.
type Playlist struct {
	// ID is an opaque unique string (UUID), generated at creation
	ID string

	// Name is the playlist name
	Name string

	// Created is the creation timestamp
	Created time.Time

	// TrackIDs is the ordered list of member track ids (no duplicates)
	TrackIDs []int64
}

// Contains reports whether the playlist already references the given track.
func (p *Playlist) Contains(trackID int64) bool {
	for _, id := range p.TrackIDs {
		if id == trackID {
			return true
		}
	}
	return false
}

// PlaybackStatus represents the current playback state.
type PlaybackStatus int

const (
	// StatusStopped indicates no audible track
	StatusStopped PlaybackStatus = iota

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is suspended at a position
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// RepeatMode controls what happens at queue boundaries and track completion.
type RepeatMode string

const (
	// RepeatOff stops at the end of the library
	RepeatOff RepeatMode = "off"

	// RepeatAll wraps around to the first track
	RepeatAll RepeatMode = "all"

	// RepeatOne restarts the finished track from zero
	RepeatOne RepeatMode = "one"
)

// PlaybackState is a snapshot of the playback session.
// Position and Duration are derived from the audio engine and are not
// independently authoritative.
type PlaybackState struct {
	// CurrentTrack is the currently loaded track (nil if none)
	CurrentTrack *Track

	// Status is the current playback status
	Status PlaybackStatus

	// Position is the current playback position within the track
	Position time.Duration

	// Duration is the total length of the loaded track
	Duration time.Duration

	// Volume is the current volume level (0.0 to 1.0)
	Volume float64

	// Rate is the playback-rate multiplier (1.0 = normal speed)
	Rate float64

	// Shuffling indicates random track selection on Next/Previous
	Shuffling bool

	// Repeat is the boundary policy (off, all, one)
	Repeat RepeatMode
}

// LyricLine is one timed line of synchronized lyrics.
type LyricLine struct {
	// Time is the line's position in seconds from track start
	Time float64

	// Text is the display string (never empty in a parsed sequence)
	Text string
}

// DefaultImageURL is the cover placeholder for tracks without embedded art.
const DefaultImageURL = "https://source.unsplash.com/random/50x50?music"

// SeedTracks returns the static library entries the player starts with.
// Seed tracks carry no audio; they exist so the library is never empty on
// first launch and sort below freshly imported tracks.
func SeedTracks() []Track {
	mk := func(id int64, title, artist, duration string) Track {
		return Track{
			ID:       id,
			Title:    title,
			Artist:   artist,
			Album:    "MoleBeat Selection",
			Duration: duration,
			ImageURL: fmt.Sprintf("https://source.unsplash.com/random/50x50?sig=%d", id),
		}
	}
	return []Track{
		mk(1, "Qui sait ?", "Niro, ElGrandeToto", "2:02"),
		mk(2, "Adios", "Klass-A", "4:17"),
		mk(3, "POWER - A COLORS SHOW", "Shobee", "3:23"),
		mk(4, "EMO ERR", "Moro", "2:02"),
		mk(5, "Helma", "Tagne", "2:30"),
		mk(6, "Ojos Sin Ver", "Morad, ElGrandeToto", "4:17"),
		mk(7, "Let me love you ~ Krisx", "Krisx", "4:17"),
		mk(8, "M3a L3echrane", "Dizzy DROS", "2:30"),
		mk(9, "Hiphop is dead", "Fat Mizzo", "3:23"),
	}
}
