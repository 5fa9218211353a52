package v1alpha1

import (
	"github.com/imamik/srxgate/internal/util/naming"
)

// Answer is the uniform result of a Command. Partial application is never
// reported: Success is all-or-nothing.
type Answer struct {
	// ID echoes Command.ID.
	ID string `json:"id"`

	Success bool `json:"success"`

	// Details holds optional per-item results.
	// +optional
	Details []string `json:"details,omitempty"`

	// Error carries the last underlying failure message.
	// +optional
	Error string `json:"error,omitempty"`

	// Usage is set by GetUsage, keyed by public address or guest VLAN.
	// +optional
	Usage map[naming.UsageKey]UsageTotals `json:"usage,omitempty"`
}

// UsageTotals are the byte counters accumulated for one usage key.
type UsageTotals struct {
	BytesReceived int64 `json:"bytesReceived"`
	BytesSent     int64 `json:"bytesSent"`
}

// Add accumulates bytes in the given direction.
func (t *UsageTotals) Add(dir naming.Direction, bytes int64) {
	switch dir {
	case naming.DirectionIn:
		t.BytesReceived += bytes
	case naming.DirectionOut:
		t.BytesSent += bytes
	}
}

// Succeeded returns a successful answer.
func Succeeded(id string, details ...string) Answer {
	return Answer{ID: id, Success: true, Details: details}
}

// Failed returns a failed answer carrying err's message.
func Failed(id string, err error) Answer {
	a := Answer{ID: id}
	if err != nil {
		a.Error = err.Error()
	}
	return a
}
