// Package domain defines events for the event-driven architecture.
// Events enable loose coupling between the services and their consumers.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventTrackStarted   EventType = "track.started"
	EventTrackPaused    EventType = "track.paused"
	EventTrackStopped   EventType = "track.stopped"
	EventTrackCompleted EventType = "track.completed"
	EventTrackProgress  EventType = "track.progress"
	EventTrackError     EventType = "track.error"
	EventAutoNext       EventType = "track.auto_next"

	// Session scalar events
	EventVolumeChanged EventType = "volume.changed"
	EventRateChanged   EventType = "rate.changed"

	// Navigation mode events
	EventShuffleToggled    EventType = "shuffle.toggled"
	EventRepeatModeChanged EventType = "repeat.changed"

	// Library events
	EventLibraryUpdated   EventType = "library.updated"
	EventFavoritesChanged EventType = "favorites.changed"
	EventPlaylistsUpdated EventType = "playlists.updated"

	// Lyrics events
	EventLyricsLoaded     EventType = "lyrics.loaded"
	EventLyricLineChanged EventType = "lyrics.line_changed"

	// Equalizer events
	EventEqualizerChanged EventType = "equalizer.changed"

	// Shell/preference events
	EventThemeChanged      EventType = "theme.changed"
	EventMiniPlayerToggled EventType = "miniplayer.toggled"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

// newBaseEvent creates a new base event with the current timestamp.
func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackStartedEvent is published when playback of a track starts or resumes.
type TrackStartedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType { return EventTrackStarted }

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track Track) TrackStartedEvent {
	return TrackStartedEvent{baseEvent: newBaseEvent(), Track: track}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
	Track    Track
	Position time.Duration
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType { return EventTrackPaused }

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(track Track, position time.Duration) TrackPausedEvent {
	return TrackPausedEvent{baseEvent: newBaseEvent(), Track: track, Position: position}
}

// TrackStoppedEvent is published when playback is stopped and the session cleared.
type TrackStoppedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackStoppedEvent) Type() EventType { return EventTrackStopped }

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent(track Track) TrackStoppedEvent {
	return TrackStoppedEvent{baseEvent: newBaseEvent(), Track: track}
}

// TrackCompletedEvent is published when a track finishes playing naturally.
type TrackCompletedEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e TrackCompletedEvent) Type() EventType { return EventTrackCompleted }

// NewTrackCompletedEvent creates a new TrackCompletedEvent.
func NewTrackCompletedEvent(track Track) TrackCompletedEvent {
	return TrackCompletedEvent{baseEvent: newBaseEvent(), Track: track}
}

// TrackProgressEvent is published periodically during playback.
type TrackProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e TrackProgressEvent) Type() EventType { return EventTrackProgress }

// NewTrackProgressEvent creates a new TrackProgressEvent.
func NewTrackProgressEvent(position, duration time.Duration) TrackProgressEvent {
	return TrackProgressEvent{baseEvent: newBaseEvent(), Position: position, Duration: duration}
}

// TrackErrorEvent is published when an error occurs with a track.
type TrackErrorEvent struct {
	baseEvent
	Track Track
	Error error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType { return EventTrackError }

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(track Track, err error) TrackErrorEvent {
	return TrackErrorEvent{baseEvent: newBaseEvent(), Track: track, Error: err}
}

// AutoNextEvent is published when a track finishes and navigation should
// advance. The QueueService consumes it.
type AutoNextEvent struct {
	baseEvent
	Track Track
}

// Type returns the event type.
func (e AutoNextEvent) Type() EventType { return EventAutoNext }

// NewAutoNextEvent creates a new AutoNextEvent.
func NewAutoNextEvent(track Track) AutoNextEvent {
	return AutoNextEvent{baseEvent: newBaseEvent(), Track: track}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType { return EventVolumeChanged }

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{baseEvent: newBaseEvent(), Volume: volume}
}

// RateChangedEvent is published when the playback-rate multiplier changes.
type RateChangedEvent struct {
	baseEvent
	Rate float64
}

// Type returns the event type.
func (e RateChangedEvent) Type() EventType { return EventRateChanged }

// NewRateChangedEvent creates a new RateChangedEvent.
func NewRateChangedEvent(rate float64) RateChangedEvent {
	return RateChangedEvent{baseEvent: newBaseEvent(), Rate: rate}
}

// ShuffleToggledEvent is published when shuffle mode is toggled.
type ShuffleToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e ShuffleToggledEvent) Type() EventType { return EventShuffleToggled }

// NewShuffleToggledEvent creates a new ShuffleToggledEvent.
func NewShuffleToggledEvent(enabled bool) ShuffleToggledEvent {
	return ShuffleToggledEvent{baseEvent: newBaseEvent(), Enabled: enabled}
}

// RepeatModeChangedEvent is published when the repeat mode changes.
type RepeatModeChangedEvent struct {
	baseEvent
	Mode RepeatMode
}

// Type returns the event type.
func (e RepeatModeChangedEvent) Type() EventType { return EventRepeatModeChanged }

// NewRepeatModeChangedEvent creates a new RepeatModeChangedEvent.
func NewRepeatModeChangedEvent(mode RepeatMode) RepeatModeChangedEvent {
	return RepeatModeChangedEvent{baseEvent: newBaseEvent(), Mode: mode}
}

// LibraryUpdatedEvent is published when the in-memory track list changes
// (import, removal, metadata edit, clear).
type LibraryUpdatedEvent struct {
	baseEvent
	Tracks []Track
}

// Type returns the event type.
func (e LibraryUpdatedEvent) Type() EventType { return EventLibraryUpdated }

// NewLibraryUpdatedEvent creates a new LibraryUpdatedEvent.
func NewLibraryUpdatedEvent(tracks []Track) LibraryUpdatedEvent {
	return LibraryUpdatedEvent{baseEvent: newBaseEvent(), Tracks: tracks}
}

// FavoritesChangedEvent is published when the favorites set changes.
type FavoritesChangedEvent struct {
	baseEvent
	TrackIDs []int64
}

// Type returns the event type.
func (e FavoritesChangedEvent) Type() EventType { return EventFavoritesChanged }

// NewFavoritesChangedEvent creates a new FavoritesChangedEvent.
func NewFavoritesChangedEvent(ids []int64) FavoritesChangedEvent {
	return FavoritesChangedEvent{baseEvent: newBaseEvent(), TrackIDs: ids}
}

// PlaylistsUpdatedEvent is published when playlists are created, deleted or edited.
type PlaylistsUpdatedEvent struct {
	baseEvent
	Playlists []Playlist
}

// Type returns the event type.
func (e PlaylistsUpdatedEvent) Type() EventType { return EventPlaylistsUpdated }

// NewPlaylistsUpdatedEvent creates a new PlaylistsUpdatedEvent.
func NewPlaylistsUpdatedEvent(playlists []Playlist) PlaylistsUpdatedEvent {
	return PlaylistsUpdatedEvent{baseEvent: newBaseEvent(), Playlists: playlists}
}

// LyricsLoadedEvent is published when lyrics resolution finishes for a track.
// Lines is empty when no lyrics were found.
type LyricsLoadedEvent struct {
	baseEvent
	TrackID int64
	Lines   []LyricLine
}

// Type returns the event type.
func (e LyricsLoadedEvent) Type() EventType { return EventLyricsLoaded }

// NewLyricsLoadedEvent creates a new LyricsLoadedEvent.
func NewLyricsLoadedEvent(trackID int64, lines []LyricLine) LyricsLoadedEvent {
	return LyricsLoadedEvent{baseEvent: newBaseEvent(), TrackID: trackID, Lines: lines}
}

// LyricLineChangedEvent is published when the active lyric line index moves.
type LyricLineChangedEvent struct {
	baseEvent
	Index int
}

// Type returns the event type.
func (e LyricLineChangedEvent) Type() EventType { return EventLyricLineChanged }

// NewLyricLineChangedEvent creates a new LyricLineChangedEvent.
func NewLyricLineChangedEvent(index int) LyricLineChangedEvent {
	return LyricLineChangedEvent{baseEvent: newBaseEvent(), Index: index}
}

// EqualizerChangedEvent is published when band gains change (single band or preset).
type EqualizerChangedEvent struct {
	baseEvent
	Bands [BandCount]float64
}

// Type returns the event type.
func (e EqualizerChangedEvent) Type() EventType { return EventEqualizerChanged }

// NewEqualizerChangedEvent creates a new EqualizerChangedEvent.
func NewEqualizerChangedEvent(bands [BandCount]float64) EqualizerChangedEvent {
	return EqualizerChangedEvent{baseEvent: newBaseEvent(), Bands: bands}
}

// ThemeChangedEvent is published when the accent theme color changes.
type ThemeChangedEvent struct {
	baseEvent
	Color string
}

// Type returns the event type.
func (e ThemeChangedEvent) Type() EventType { return EventThemeChanged }

// NewThemeChangedEvent creates a new ThemeChangedEvent.
func NewThemeChangedEvent(color string) ThemeChangedEvent {
	return ThemeChangedEvent{baseEvent: newBaseEvent(), Color: color}
}

// MiniPlayerToggledEvent is published when the compact window mode toggles.
type MiniPlayerToggledEvent struct {
	baseEvent
	Enabled bool
}

// Type returns the event type.
func (e MiniPlayerToggledEvent) Type() EventType { return EventMiniPlayerToggled }

// NewMiniPlayerToggledEvent creates a new MiniPlayerToggledEvent.
func NewMiniPlayerToggledEvent(enabled bool) MiniPlayerToggledEvent {
	return MiniPlayerToggledEvent{baseEvent: newBaseEvent(), Enabled: enabled}
}
