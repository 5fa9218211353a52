package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/srxgate/internal/usage"
)

// Model is the Bubble Tea model of the usage watch.
type Model struct {
	Appliance string
	Interval  time.Duration

	// Snapshot is the latest successful poll; Previous the one before it.
	Snapshot *usage.Snapshot
	Previous *usage.Snapshot
	// PollErr is the error of the latest poll. The last good snapshot stays
	// on screen while it is set.
	PollErr error
	Polls   int

	SpinnerFrame int
	Width        int
	Height       int
	StartTime    time.Time

	Quitting bool
	Err      error
}

// NewUsageModel returns the model for watching appliance.
func NewUsageModel(appliance string, interval time.Duration) Model {
	return Model{
		Appliance: appliance,
		Interval:  interval,
		StartTime: time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case SnapshotMsg:
		m.Polls++
		if msg.Err != nil {
			m.PollErr = msg.Err
			return m, nil
		}
		m.PollErr = nil
		m.Previous = m.Snapshot
		m.Snapshot = msg.Snapshot

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
