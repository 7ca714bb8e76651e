package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/indevolt/indevolt-go/internal/discovery"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	devices []*discovery.Device
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual address entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.Confirm, m.Cancel},
	}
}

// deviceItem wraps a Device for use with bubbles/list
type deviceItem struct {
	device *discovery.Device
}

// Implement list.Item interface
func (d deviceItem) FilterValue() string {
	return d.device.Name + " " + d.device.Host
}

// Title returns the device name for list display
func (d deviceItem) Title() string {
	if d.device.Name != "" {
		return d.device.Name
	}
	return d.device.Host
}

// Description returns device details for list display
func (d deviceItem) Description() string {
	model := "Unknown"
	if t, ok := d.device.GetMetadata("type").(string); ok {
		model = t
	}
	return fmt.Sprintf("%s:%d • Model: %s", d.device.Host, d.device.Port, model)
}

// deviceDelegate is a custom list delegate for rendering device cards
type deviceDelegate struct {
	width int
}

func (d deviceDelegate) Height() int { return 7 } // Card height including borders

func (d deviceDelegate) Spacing() int { return 1 }

func (d deviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	di, ok := item.(deviceItem)
	if !ok {
		return
	}

	device := di.device
	selected := index == m.Index()

	name := device.Name
	if name == "" {
		name = device.Host
	}

	model := "Unknown"
	if t, ok := device.GetMetadata("type").(string); ok {
		model = t
	}

	var content strings.Builder
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + name))
	} else {
		content.WriteString("  " + name)
	}
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("  Address: %s:%d\n", device.Host, device.Port))
	content.WriteString(fmt.Sprintf("  Model:   %s", model))

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2).
		MarginLeft(2)

	cardWidth := d.width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}
	cardStyle = cardStyle.Width(cardWidth)

	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel represents the device discovery screen state
type DiscoveryModel struct {
	Scanning   bool
	DeviceList list.Model

	// Manual address entry state
	ManualMode bool
	HostInput  textinput.Model

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap

	// Scan timeout, exposed so the browse command can pass --timeout through
	ScanTimeout time.Duration
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel(scanTimeout time.Duration) DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	hostInput := textinput.New()
	hostInput.Placeholder = "192.168.1.40"
	hostInput.CharLimit = 64
	hostInput.Width = 30

	delegate := deviceDelegate{width: MinTerminalWidth}
	deviceList := list.New([]list.Item{}, delegate, 0, 0)
	deviceList.Title = "Discovered Devices"
	deviceList.SetShowStatusBar(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.Styles.Title = TitleStyle

	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "inspect"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual address"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	if scanTimeout <= 0 {
		scanTimeout = discovery.DefaultTimeout
	}

	return DiscoveryModel{
		DeviceList:  deviceList,
		HostInput:   hostInput,
		Spinner:     s,
		Help:        help.New(),
		Keys:        keys,
		ManualKeys:  manualKeys,
		ScanTimeout: scanTimeout,
	}
}

// Init starts scanning immediately
func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanDevices(m.ScanTimeout),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetWidth(msg.Width - 4)
		m.DeviceList.SetHeight(msg.Height - 10)

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		items := make([]list.Item, len(msg.devices))
		for i, dev := range msg.devices {
			items[i] = deviceItem{device: dev}
		}
		m.DeviceList.SetItems(items)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.DeviceList, cmd = m.DeviceList.Update(msg)
	}

	return m, cmd
}

// StartRescan clears the list and kicks off a new scan
func (m DiscoveryModel) StartRescan() (DiscoveryModel, tea.Cmd) {
	m.DeviceList.SetItems([]list.Item{})
	return m, tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanDevices(m.ScanTimeout),
		m.Spinner.Tick,
	)
}

// EnterManualMode switches to manual address entry
func (m DiscoveryModel) EnterManualMode() DiscoveryModel {
	m.ManualMode = true
	m.HostInput.SetValue("")
	m.HostInput.Focus()
	return m
}

// LeaveManualMode cancels manual address entry
func (m DiscoveryModel) LeaveManualMode() DiscoveryModel {
	m.ManualMode = false
	m.HostInput.SetValue("")
	m.HostInput.Blur()
	return m
}

// AddManualDevice inserts a hand-entered device at the top of the list
func (m DiscoveryModel) AddManualDevice(host string) DiscoveryModel {
	device := &discovery.Device{
		Host:         host,
		Port:         discovery.DefaultDevicePort,
		DiscoveredAt: time.Now(),
	}
	items := append([]list.Item{deviceItem{device: device}}, m.DeviceList.Items()...)
	m.DeviceList.SetItems(items)
	m.DeviceList.Select(0)
	return m.LeaveManualMode()
}

// SelectedDevice returns the device under the cursor, if any
func (m DiscoveryModel) SelectedDevice() *discovery.Device {
	if item, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
		return item.device
	}
	return nil
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
	case m.Scanning:
		content = m.renderScanning(width)
	default:
		content = m.renderResults()
	}

	var helpText string
	if m.ManualMode {
		helpText = m.Help.View(m.ManualKeys)
	} else {
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanning renders a centered scanning progress display
func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime).Round(time.Second)

	title := fmt.Sprintf("%s SEARCHING FOR DEVICES", m.Spinner.View())
	subtitle := fmt.Sprintf("Broadcasting discovery probe... (%s elapsed)", elapsed)

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(title),
		"",
		SubtitleStyle.Render(subtitle),
		"",
	)

	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderResults renders the device list or a "no devices found" message
func (m DiscoveryModel) renderResults() string {
	var b strings.Builder

	b.WriteString("\n")

	if len(m.DeviceList.Items()) == 0 {
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString("  ")
		b.WriteString(warningStyle.Render("⚠ No devices found on your network"))
		b.WriteString("\n\n")
		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Ensure the device is powered on and connected to your LAN\n")
		b.WriteString("    • Broadcast discovery does not cross subnets or VLANs\n")
		b.WriteString("    • Some WiFi access points filter broadcast traffic\n")
		b.WriteString("    • Use 'm' to enter the device address manually\n")
		b.WriteString("\n")
	} else {
		b.WriteString(m.DeviceList.View())
	}

	return b.String()
}

// renderManualEntry renders the manual address entry dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder

	b.WriteString(RenderSubtitle("Enter device address"))
	b.WriteString("\n\n")
	b.WriteString("  Host: ")
	b.WriteString(m.HostInput.View())
	b.WriteString("\n\n")

	return b.String()
}

// scanDevices returns a command that performs broadcast discovery
func scanDevices(timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		listener := discovery.NewListener()
		listener.Timeout = timeout
		return scanCompleteMsg{devices: listener.Discover()}
	}
}
