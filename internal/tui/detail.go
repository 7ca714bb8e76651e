package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/indevolt/indevolt-go/internal/discovery"
	"github.com/indevolt/indevolt-go/internal/indevolt"
	"github.com/indevolt/indevolt-go/internal/points"
)

// Messages for async device reads
type detailLoadedMsg struct {
	config map[string]any
	values map[int]any
}

type detailFailedMsg struct {
	err error
}

// detailKeyMap defines key bindings for the detail screen
type detailKeyMap struct {
	Refresh key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k detailKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k detailKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Back, k.Quit},
	}
}

// DetailModel shows live telemetry and configuration for one device
type DetailModel struct {
	Device *discovery.Device

	Loading bool
	Err     error
	Config  map[string]any
	Values  map[int]any

	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    detailKeyMap
}

// NewDetailModel creates a detail screen for the given device
func NewDetailModel(device *discovery.Device) DetailModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	keys := detailKeyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return DetailModel{
		Device:  device,
		Loading: true,
		Spinner: s,
		Help:    help.New(),
		Keys:    keys,
	}
}

// Init kicks off the first device read
func (m DetailModel) Init() tea.Cmd {
	return tea.Batch(loadDetail(m.Device), m.Spinner.Tick)
}

// Update handles messages and updates the model
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case detailLoadedMsg:
		m.Loading = false
		m.Err = nil
		m.Config = msg.config
		m.Values = msg.values

	case detailFailedMsg:
		m.Loading = false
		m.Err = msg.err

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// Refresh re-reads the device
func (m DetailModel) Refresh() (DetailModel, tea.Cmd) {
	m.Loading = true
	m.Err = nil
	return m, tea.Batch(loadDetail(m.Device), m.Spinner.Tick)
}

// View renders the detail screen
func (m DetailModel) View() string {
	var content string
	switch {
	case m.Loading:
		content = fmt.Sprintf("\n  %s Reading device...\n", m.Spinner.View())
	case m.Err != nil:
		content = m.renderError()
	default:
		content = m.renderDetail()
	}

	return RenderApplicationContainer(content, m.Help.View(m.Keys), m.Width, m.Height)
}

func (m DetailModel) renderError() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(RenderError(indevolt.GetShortErrorMessage(m.Err)))
	b.WriteString("\n\n")
	b.WriteString(indevolt.GetTroubleshootingHint(m.Err))
	b.WriteString("\n")

	return b.String()
}

func (m DetailModel) renderDetail() string {
	var b strings.Builder

	name := m.Device.Name
	if name == "" {
		name = m.Device.Host
	}

	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("  " + name))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Address: %s:%d\n", m.Device.Host, m.Device.Port))

	if device, ok := m.Config["device"].(map[string]any); ok {
		if t, ok := device["type"].(string); ok {
			b.WriteString(PointLabelStyle.Render("  Model:"))
			b.WriteString(PointValueStyle.Render(t))
			b.WriteString("\n")
		}
		if gen, ok := device["generation"]; ok {
			b.WriteString(PointLabelStyle.Render("  Generation:"))
			b.WriteString(PointValueStyle.Render(fmt.Sprintf("%v", gen)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render("  Telemetry"))
	b.WriteString("\n\n")

	ids := make([]int, 0, len(m.Values))
	for id := range m.Values {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		label := fmt.Sprintf("%d", id)
		unit := ""
		if p, ok := points.Get(id); ok {
			label = p.Name
			unit = p.Unit
		}

		value := fmt.Sprintf("%v", m.Values[id])
		if unit != "" {
			value = value + " " + unit
		}

		b.WriteString(PointLabelStyle.Render("  " + label + ":"))
		b.WriteString(PointValueStyle.Render(value))
		b.WriteString("\n")
	}

	return b.String()
}

// loadDetail reads configuration and all cataloged points in one command
func loadDetail(device *discovery.Device) tea.Cmd {
	return func() tea.Msg {
		client := indevolt.FromDevice(device)

		config, err := client.GetConfig()
		if err != nil {
			return detailFailedMsg{err: err}
		}

		ids := make([]int, 0)
		for _, p := range points.All() {
			ids = append(ids, p.ID)
		}

		data, err := client.FetchData(ids...)
		if err != nil {
			return detailFailedMsg{err: err}
		}

		values := make(map[int]any, len(data))
		for _, id := range ids {
			if v, ok := data[fmt.Sprintf("%d", id)]; ok {
				values[id] = v
			}
		}

		return detailLoadedMsg{config: config, values: values}
	}
}
