// Package ports defines the host-shell boundary.
package ports

// Shell is the one-way boundary to the desktop windowing layer.
// The core fires notifications and never depends on their outcome.
type Shell interface {
	// SetMiniPlayer asks the shell to enter or leave the compact
	// always-on-top window mode.
	SetMiniPlayer(enabled bool)

	// NotifyUpdateStatus forwards update-availability status text,
	// used only for display.
	NotifyUpdateStatus(status string)
}
