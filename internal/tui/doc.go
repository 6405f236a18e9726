// Package tui provides terminal user interface components for espbox.
//
// # Device Picker
//
// When several serial devices are plugged in and none is configured,
// flash and monitor ask which one to use:
//
//	dev, err := tui.RunPicker(devices)
//	if errors.Is(err, device.ErrCancelled) {
//	    // user pressed q or esc
//	}
//
// RunPicker satisfies device.Picker and is only offered when stdin is a
// terminal. DeviceList renders the same list as plain text for
// `espbox devices`.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
