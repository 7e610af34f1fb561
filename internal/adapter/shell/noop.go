// Package shell provides host-shell adapters.
package shell

import (
	"log/slog"

	"github.com/molebeat/molebeat/internal/ports"
)

// Noop is a headless shell adapter. It logs the notifications it receives
// so the core can run without a windowing layer attached.
type Noop struct {
	logger *slog.Logger
}

// NewNoop creates a headless shell adapter.
func NewNoop(logger *slog.Logger) *Noop {
	return &Noop{logger: logger}
}

// SetMiniPlayer records the requested window mode.
func (s *Noop) SetMiniPlayer(enabled bool) {
	s.logger.Debug("mini player toggled", slog.Bool("enabled", enabled))
}

// NotifyUpdateStatus records update-availability status text.
func (s *Noop) NotifyUpdateStatus(status string) {
	s.logger.Debug("update status", slog.String("status", status))
}

// Verify that Noop implements the port
var _ ports.Shell = (*Noop)(nil)
