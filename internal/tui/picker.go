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
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avkit/dlnacast/internal/discovery"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	devices []*discovery.Device
	err     error
}

// pickerKeyMap defines key bindings for the device picker
type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Quit},
	}
}

// deviceItem wraps a Device for use with bubbles/list
type deviceItem struct {
	device *discovery.Device
}

func (d deviceItem) FilterValue() string {
	return d.device.Name + " " + d.device.IP
}

func (d deviceItem) Title() string { return d.device.Name }

func (d deviceItem) Description() string {
	return fmt.Sprintf("%s:%d", d.device.IP, d.device.Port)
}

// deviceDelegate renders one renderer per row with a playback badge.
type deviceDelegate struct{}

func (d deviceDelegate) Height() int { return 2 }

func (d deviceDelegate) Spacing() int { return 1 }

func (d deviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(deviceItem)
	if !ok {
		return
	}
	dev := it.device

	badge := WarnStyle.Render("no AVTransport")
	if dev.HasAVTransport {
		badge = BadgeStyle.Render("renderer")
	}

	title := dev.Name
	if index == m.Index() {
		title = SelectedItemStyle.Render("→ " + title)
	} else {
		title = ItemStyle.Render(title)
	}

	detail := DetailStyle.Render(fmt.Sprintf("%s:%d • %s", dev.IP, dev.Port, badge))
	fmt.Fprint(w, title+"\n"+detail)
}

// PickerModel is the device selection screen: a scan spinner, then the list
// of discovered renderers.
type PickerModel struct {
	Scanning   bool
	DeviceList list.Model
	Selected   bool
	Err        error

	Width         int
	Height        int
	Spinner       spinner.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          pickerKeyMap

	scanner *discovery.Scanner
}

// NewPickerModel creates a device picker around the given scanner.
func NewPickerModel(scanner *discovery.Scanner) PickerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	deviceList := list.New([]list.Item{}, deviceDelegate{}, 0, 0)
	deviceList.Title = "Media Renderers"
	deviceList.SetShowStatusBar(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.Styles.Title = TitleStyle

	keys := pickerKeyMap{
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
			key.WithHelp("enter", "select"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	return PickerModel{
		DeviceList: deviceList,
		Spinner:    s,
		Help:       help.New(),
		Keys:       keys,
		scanner:    scanner,
	}
}

// Init starts scanning immediately.
func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		m.scanCmd(),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "enter":
			if !m.Scanning && m.DeviceList.SelectedItem() != nil {
				m.Selected = true
				return m, tea.Quit
			}

		case "r":
			if !m.Scanning {
				m.DeviceList.SetItems([]list.Item{})
				m.Err = nil
				return m, tea.Batch(
					func() tea.Msg { return scanStartMsg{} },
					m.scanCmd(),
					m.Spinner.Tick,
				)
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetWidth(msg.Width - 4)
		m.DeviceList.SetHeight(msg.Height - 8)

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.devices))
		for i, dev := range msg.devices {
			items[i] = deviceItem{device: dev}
		}
		m.DeviceList.SetItems(items)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.Scanning {
		m.DeviceList, cmd = m.DeviceList.Update(msg)
	}
	return m, cmd
}

// View renders the picker screen
func (m PickerModel) View() string {
	var content string
	switch {
	case m.Scanning:
		content = m.renderScanning()
	case m.Err != nil:
		content = WarnStyle.Render(fmt.Sprintf("✗ Scan failed: %v", m.Err)) + "\n\n" +
			SubtitleStyle.Render("Press r to rescan, q to quit")
	case len(m.DeviceList.Items()) == 0:
		content = WarnStyle.Render("⚠ No renderers found on your network") + "\n\n" +
			SubtitleStyle.Render("Press r to rescan, q to quit")
	default:
		content = m.DeviceList.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		content,
		HelpStyle.Render(m.Help.View(m.Keys)),
	)
}

// renderScanning renders the scan spinner with elapsed time.
func (m PickerModel) renderScanning() string {
	elapsed := time.Since(m.ScanStartTime).Round(time.Second)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(SpinnerStyle.Render(m.Spinner.View()))
	b.WriteString(" Scanning network for media renderers... ")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("(%s)", elapsed)))
	b.WriteString("\n")
	return b.String()
}

// SelectedDevice returns the device the user picked, or nil.
func (m PickerModel) SelectedDevice() *discovery.Device {
	if !m.Selected {
		return nil
	}
	if item, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
		return item.device
	}
	return nil
}

// scanCmd runs a blocking scan off the UI goroutine.
func (m PickerModel) scanCmd() tea.Cmd {
	scanner := m.scanner
	return func() tea.Msg {
		devices, err := scanner.Scan()
		return scanCompleteMsg{devices: devices, err: err}
	}
}

// PickDevice runs the interactive picker and returns the chosen device.
// A nil device with a nil error means the user quit without selecting.
func PickDevice(scanner *discovery.Scanner) (*discovery.Device, error) {
	final, err := tea.NewProgram(NewPickerModel(scanner)).Run()
	if err != nil {
		return nil, fmt.Errorf("running device picker: %w", err)
	}
	model, ok := final.(PickerModel)
	if !ok {
		return nil, nil
	}
	return model.SelectedDevice(), nil
}
