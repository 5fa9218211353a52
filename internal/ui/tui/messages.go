// Package tui renders usage counters and health checks for the terminal,
// including the Bubble Tea live view behind "srxgate usage --watch".
package tui

import "github.com/imamik/srxgate/internal/usage"

// SnapshotMsg carries the result of one counter poll.
type SnapshotMsg struct {
	Snapshot *usage.Snapshot
	Err      error
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error that ends the program.
type ErrMsg struct {
	Err error
}
