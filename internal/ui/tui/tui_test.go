package tui

import (
	"errors"
	"net/netip"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/usage"
	"github.com/imamik/srxgate/internal/util/async"
	"github.com/imamik/srxgate/internal/util/naming"
)

var (
	t0   = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ipA  = naming.IPKey(netip.MustParseAddr("203.0.113.10"))
	ipB  = naming.IPKey(netip.MustParseAddr("198.51.100.7"))
	vlan = naming.VLANKey(100)
)

func snapshot(at time.Time, rx, tx int64) *usage.Snapshot {
	return &usage.Snapshot{
		Time: at,
		Usage: usage.Totals{
			ipA:  {BytesReceived: rx, BytesSent: tx},
			ipB:  {BytesReceived: 1000},
			vlan: {BytesSent: 42},
		},
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m30s"},
		{3600 * time.Second, "1h0m"},
		{3661 * time.Second, "1h1m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d), tt.d.String())
	}
}

func TestFormatRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.0 kB/s", formatRate(10000, 10*time.Second))
	assert.Equal(t, "0 B/s", formatRate(-5, time.Second), "counter reset")
}

func TestSortedKeys(t *testing.T) {
	t.Parallel()

	totals := usage.Totals{
		naming.VLANKey(300): {},
		ipA:                 {},
		vlan:                {},
		ipB:                 {},
	}
	assert.Equal(t, []naming.UsageKey{ipB, ipA, vlan, naming.VLANKey(300)}, sortedKeys(totals))
}

func TestModelUpdate_Snapshots(t *testing.T) {
	t.Parallel()

	m := NewUsageModel("srx1", 10*time.Second)

	first := snapshot(t0, 100, 200)
	next, cmd := m.Update(SnapshotMsg{Snapshot: first})
	assert.Nil(t, cmd)
	m = next.(Model)
	assert.Same(t, first, m.Snapshot)
	assert.Nil(t, m.Previous)
	assert.Equal(t, 1, m.Polls)

	next, _ = m.Update(SnapshotMsg{Err: errors.New("appliance unreachable")})
	m = next.(Model)
	assert.Same(t, first, m.Snapshot, "last good snapshot is kept")
	assert.EqualError(t, m.PollErr, "appliance unreachable")

	second := snapshot(t0.Add(10*time.Second), 10100, 200)
	next, _ = m.Update(SnapshotMsg{Snapshot: second})
	m = next.(Model)
	assert.Same(t, first, m.Previous)
	assert.Same(t, second, m.Snapshot)
	assert.NoError(t, m.PollErr)
	assert.Equal(t, 3, m.Polls)
}

func TestModelUpdate_Quit(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"q", "ctrl+c"} {
		m := NewUsageModel("srx1", time.Second)
		var msg tea.KeyMsg
		if key == "q" {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		}
		next, cmd := m.Update(msg)
		require.NotNil(t, cmd, key)
		assert.True(t, next.(Model).Quitting, key)
	}
}

func TestModelUpdate_Error(t *testing.T) {
	t.Parallel()

	m := NewUsageModel("srx1", time.Second)
	next, cmd := m.Update(ErrMsg{Err: errors.New("boom")})
	require.NotNil(t, cmd)
	assert.EqualError(t, next.(Model).Err, "boom")
}

func TestModelUpdate_TickAdvancesSpinner(t *testing.T) {
	t.Parallel()

	m := NewUsageModel("srx1", time.Second)
	next, cmd := m.Update(TickMsg{})
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, next.(Model).SpinnerFrame)
}

func TestView(t *testing.T) {
	t.Parallel()

	m := NewUsageModel("srx1", 10*time.Second)
	assert.Contains(t, m.View(), "waiting for first poll")

	m.Previous = snapshot(t0, 0, 0)
	m.Snapshot = snapshot(t0.Add(10*time.Second), 10000, 0)
	m.PollErr = errors.New("read timeout")
	out := m.View()

	assert.Contains(t, out, "srxgate usage: srx1")
	assert.Contains(t, out, "203.0.113.10")
	assert.Contains(t, out, "vlan-100")
	assert.Contains(t, out, "1.0 kB/s")
	assert.Contains(t, out, "read timeout")
	assert.Contains(t, out, "q: quit")
	assert.Less(t, strings.Index(out, "198.51.100.7"), strings.Index(out, "203.0.113.10"))
}

func TestRenderUsage(t *testing.T) {
	t.Parallel()

	out := RenderUsage("srx1", snapshot(t0, 2000, 0))
	assert.Contains(t, out, "2024-03-01T12:00:00Z")
	assert.Contains(t, out, "2.0 kB")
	assert.NotContains(t, out, "/s")

	empty := RenderUsage("srx1", &usage.Snapshot{Time: t0, Usage: usage.Totals{}})
	assert.Contains(t, empty, "no counters")
}

func TestRenderChecks(t *testing.T) {
	t.Parallel()

	out := RenderChecks("doctor", []async.Result{
		{Name: "config", Duration: time.Millisecond},
		{Name: "appliance", Err: errors.New("connection refused")},
	})
	assert.Contains(t, out, checkMark)
	assert.Contains(t, out, crossMark)
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "1 of 2 checks failed")

	out = RenderChecks("doctor", []async.Result{{Name: "config"}})
	assert.Contains(t, out, "all checks passed")
}

func TestRenderAnswers(t *testing.T) {
	t.Parallel()

	cmds := []v1alpha1.Command{
		{Kind: v1alpha1.KindAssociateIP},
		{Kind: v1alpha1.KindSetStaticNATRules},
	}
	answers := []v1alpha1.Answer{
		v1alpha1.Succeeded("a-1", "vlan 100 203.0.113.10"),
		v1alpha1.Failed("a-2", errors.New("appliance rejected commit: boom")),
	}

	out := RenderAnswers(cmds, answers)
	assert.Contains(t, out, "AssociateIP")
	assert.Contains(t, out, "vlan 100 203.0.113.10")
	assert.Contains(t, out, "SetStaticNATRules")
	assert.Contains(t, out, "appliance rejected commit: boom")
	assert.Contains(t, out, "1 of 2 commands failed")

	out = RenderAnswers(cmds[:1], answers[:1])
	assert.Contains(t, out, "1 command(s) committed")
}
