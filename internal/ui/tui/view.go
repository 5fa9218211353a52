package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/imamik/srxgate/internal/usage"
	"github.com/imamik/srxgate/internal/util/naming"
)

const rowFormat = "  %-20s %12s %12s %12s %12s\n"

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m.Appliance, m.Snapshot)

	if m.Snapshot == nil {
		b.WriteString(dimStyle.Render("  waiting for first poll..."))
		b.WriteString("\n")
	} else {
		renderTable(&b, m.Snapshot, m.Previous)
	}

	if m.PollErr != nil {
		fmt.Fprintf(&b, "\n  %s %s\n", failedStyle.Render(crossMark), m.PollErr)
	}

	renderFooter(&b, m)

	return b.String()
}

// RenderUsage renders a single snapshot without rates or footer.
func RenderUsage(appliance string, snap *usage.Snapshot) string {
	var b strings.Builder
	renderHeader(&b, appliance, snap)
	if snap == nil || len(snap.Usage) == 0 {
		b.WriteString(dimStyle.Render("  no counters"))
		b.WriteString("\n")
		return b.String()
	}
	renderTable(&b, snap, nil)
	return b.String()
}

func renderHeader(b *strings.Builder, appliance string, snap *usage.Snapshot) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("  srxgate usage: %s", appliance)))
	if snap != nil {
		b.WriteString(subtitleStyle.Render("  " + snap.Time.Format(time.RFC3339)))
	}
	b.WriteString("\n\n")
}

func renderTable(b *strings.Builder, snap, prev *usage.Snapshot) {
	b.WriteString(headerStyle.Render(fmt.Sprintf(rowFormat, "KEY", "RECEIVED", "SENT", "RX/S", "TX/S")))

	elapsed := time.Duration(0)
	if prev != nil {
		elapsed = snap.Time.Sub(prev.Time)
	}

	for _, key := range sortedKeys(snap.Usage) {
		cur := snap.Usage[key]
		rx, tx := "-", "-"
		if elapsed > 0 {
			before := prev.Usage[key]
			rx = formatRate(cur.BytesReceived-before.BytesReceived, elapsed)
			tx = formatRate(cur.BytesSent-before.BytesSent, elapsed)
		}
		fmt.Fprintf(b, rowFormat, key.String(), formatBytes(cur.BytesReceived), formatBytes(cur.BytesSent), rx, tx)
	}
}

func renderFooter(b *strings.Builder, m Model) {
	parts := []string{
		fmt.Sprintf("polls: %d", m.Polls),
		fmt.Sprintf("every %s", m.Interval),
		fmt.Sprintf("elapsed: %s", formatDuration(time.Since(m.StartTime))),
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  %s %s  |  q: quit",
		currentSpinner(m.SpinnerFrame), strings.Join(parts, "  |  "))))
	b.WriteString("\n")
}

// sortedKeys orders address keys before VLAN keys.
func sortedKeys(totals usage.Totals) []naming.UsageKey {
	keys := make([]naming.UsageKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b naming.UsageKey) int {
		switch {
		case a.IP.IsValid() && b.IP.IsValid():
			return a.IP.Compare(b.IP)
		case a.IP.IsValid():
			return -1
		case b.IP.IsValid():
			return 1
		}
		return a.VLAN - b.VLAN
	})
	return keys
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// formatRate reports a counter delta per second. A negative delta means the
// counter was reset and is shown as zero.
func formatRate(delta int64, elapsed time.Duration) string {
	if delta < 0 {
		delta = 0
	}
	return formatBytes(int64(float64(delta)/elapsed.Seconds())) + "/s"
}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
