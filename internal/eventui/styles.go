package eventui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	stateLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	helpBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	kindStyles = map[Kind]lipgloss.Style{
		KindKey:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		KindChar:    lipgloss.NewStyle().Foreground(lipgloss.Color("84")),
		KindMouse:   lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		KindCursor:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		KindScroll:  lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		KindWindow:  lipgloss.NewStyle().Foreground(lipgloss.Color("173")),
		KindDrop:    lipgloss.NewStyle().Foreground(lipgloss.Color("170")),
		KindMonitor: lipgloss.NewStyle().Foreground(lipgloss.Color("167")),
	}
)

// renderStatusBar renders the top bar with the window title and the
// record counters.
func renderStatusBar(title string, total int, paused bool, dropped int, width int) string {
	parts := []string{title, fmt.Sprintf("%d events", total)}
	if paused {
		label := "PAUSED"
		if dropped > 0 {
			label = fmt.Sprintf("PAUSED (%d dropped)", dropped)
		}
		parts = append(parts, pausedStyle.Render(label))
	}
	return statusBarStyle.Width(width).Render(strings.Join(parts, "  "))
}

// renderStateLine renders the window state header.
func renderStateLine(st State, width int) string {
	flags := make([]string, 0, 3)
	if st.Focused {
		flags = append(flags, "focused")
	}
	if st.Iconified {
		flags = append(flags, "iconified")
	}
	if st.Maximized {
		flags = append(flags, "maximized")
	}
	line := fmt.Sprintf("pos %d,%d  size %dx%d  fb %dx%d  cursor %.1f,%.1f",
		st.X, st.Y, st.Width, st.Height, st.FBWidth, st.FBHeight, st.CursorX, st.CursorY)
	if len(flags) > 0 {
		line += "  [" + strings.Join(flags, " ") + "]"
	}
	return stateLineStyle.Width(width).Render(line)
}

// renderLog renders the newest records that fit, padded to height so
// the help bar stays at the bottom.
func renderLog(records []Record, width, height int) string {
	start := 0
	if len(records) > height {
		start = len(records) - height
	}
	oneLine := lipgloss.NewStyle().MaxWidth(width)
	lines := make([]string, 0, height)
	for _, rec := range records[start:] {
		ts := timeStyle.Render(rec.Time.Format("15:04:05.000"))
		kind := kindStyles[rec.Kind].Render(fmt.Sprintf("%-7s", rec.Kind))
		lines = append(lines, oneLine.Render(ts+" "+kind+" "+rec.Detail))
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

// renderHelpBar renders the bottom keybinding bar.
func renderHelpBar(width int) string {
	help := "p: pause  c: clear  q/ctrl-c: quit"
	return helpBarStyle.Width(width).Render(help)
}
