// Package tui provides terminal user interface components for espbox
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/espbox/internal/device"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionSelect
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action Action
	Device device.Device
}

// deviceItem implements list.Item for device display
type deviceItem struct {
	device device.Device
	bound  bool
}

func (i deviceItem) Title() string {
	return i.device.Path
}

func (i deviceItem) Description() string {
	id := i.device.ID
	if id == "" {
		id = "no by-id name"
	}

	statusIcon := "○"
	if i.bound {
		statusIcon = "✓"
	}

	return fmt.Sprintf("%s %s", statusIcon, truncate(id, 50))
}

func (i deviceItem) FilterValue() string {
	return i.device.Path + " " + i.device.ID
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the serial device picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a new device picker. bound marks the device an
// existing sandbox is already mapped to, if any.
func NewPicker(devices []device.Device, bound string) Model {
	items := make([]list.Item, len(devices))
	for i, d := range devices {
		items[i] = deviceItem{device: d, bound: d.Path == bound}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 80, 20)
	l.Title = "espbox - Select Serial Device"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(deviceItem); ok {
				m.result = PickerResult{
					Action: ActionSelect,
					Device: item.device,
				}
				m.quitting = true
				return m, tea.Quit
			}

		case "q", "esc", "ctrl+c":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Select  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive device picker. It draws on stderr so the
// selection never mixes with command output on stdout.
func RunPicker(devices []device.Device) (device.Device, error) {
	if len(devices) == 0 {
		return device.Device{}, device.ErrCancelled
	}

	m := NewPicker(devices, "")
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(os.Stderr))

	finalModel, err := p.Run()
	if err != nil {
		return device.Device{}, err
	}

	result := finalModel.(Model).Result()
	if result.Action != ActionSelect {
		return device.Device{}, device.ErrCancelled
	}
	return result.Device, nil
}

// DeviceList renders devices as plain text, marking the bound one.
func DeviceList(devices []device.Device, bound string) string {
	var sb strings.Builder

	sb.WriteString("Serial devices\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(devices) == 0 {
		sb.WriteString("No serial devices found.\n")
		sb.WriteString("Plug in the board and check that your user can access /dev/ttyUSB* or /dev/ttyACM*.\n")
		return sb.String()
	}

	for i, d := range devices {
		statusIcon := "○"
		if d.Path == bound {
			statusIcon = "✓"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, statusIcon, d.Path))
		if d.ID != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", d.ID))
		}
	}

	return sb.String()
}

// Ensure RunPicker satisfies device.Picker
var _ device.Picker = RunPicker
