package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Screen identifies which view the application is showing
type Screen int

const (
	ScreenDiscovery Screen = iota
	ScreenDetail
)

// AppModel coordinates the browser screens: device discovery and the
// per-device detail view. Key handling that moves between screens
// lives here; everything screen-local stays in the child models.
type AppModel struct {
	screen    Screen
	discovery DiscoveryModel
	detail    DetailModel

	width  int
	height int
}

// NewAppModel creates the top-level browser model
func NewAppModel(scanTimeout time.Duration) AppModel {
	return AppModel{
		screen:    ScreenDiscovery,
		discovery: NewDiscoveryModel(scanTimeout),
	}
}

// Init starts the initial device scan
func (m AppModel) Init() tea.Cmd {
	return m.discovery.Init()
}

// Update routes messages to the active screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.screen {
		case ScreenDiscovery:
			return m.updateDiscoveryKeys(keyMsg)
		case ScreenDetail:
			return m.updateDetailKeys(keyMsg)
		}
	}

	var cmd tea.Cmd
	switch m.screen {
	case ScreenDiscovery:
		m.discovery, cmd = m.discovery.Update(msg)
	case ScreenDetail:
		m.detail, cmd = m.detail.Update(msg)
	}

	return m, cmd
}

func (m AppModel) updateDiscoveryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.discovery.ManualMode {
		switch msg.String() {
		case "esc":
			m.discovery = m.discovery.LeaveManualMode()
			return m, nil
		case "enter":
			if host := m.discovery.HostInput.Value(); host != "" {
				m.discovery = m.discovery.AddManualDevice(host)
			}
			return m, nil
		}

		m.discovery.HostInput, cmd = m.discovery.HostInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "enter":
		if device := m.discovery.SelectedDevice(); device != nil {
			m.detail = NewDetailModel(device)
			m.detail.Width = m.width
			m.detail.Height = m.height
			m.screen = ScreenDetail
			return m, m.detail.Init()
		}
		return m, nil

	case "r":
		if !m.discovery.Scanning {
			m.discovery, cmd = m.discovery.StartRescan()
			return m, cmd
		}
		return m, nil

	case "m":
		m.discovery = m.discovery.EnterManualMode()
		return m, nil
	}

	m.discovery, cmd = m.discovery.Update(msg)
	return m, cmd
}

func (m AppModel) updateDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc":
		m.screen = ScreenDiscovery
		return m, nil

	case "r":
		if !m.detail.Loading {
			m.detail, cmd = m.detail.Refresh()
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// View renders the active screen
func (m AppModel) View() string {
	switch m.screen {
	case ScreenDetail:
		return m.detail.View()
	default:
		return m.discovery.View()
	}
}

// Run starts the browser in the alternate screen buffer and blocks
// until the user quits.
func Run(scanTimeout time.Duration) error {
	program := tea.NewProgram(NewAppModel(scanTimeout), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
