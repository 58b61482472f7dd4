// Package eventui is a live viewer for window events, shown by the
// probe tool's events command. It renders a scrolling record log
// with a window state header and runs in the terminal's alternate
// screen.
package eventui

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Kind classifies a record for coloring and filtering.
type Kind int

const (
	KindKey Kind = iota
	KindChar
	KindMouse
	KindCursor
	KindScroll
	KindWindow
	KindDrop
	KindMonitor
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindChar:
		return "char"
	case KindMouse:
		return "mouse"
	case KindCursor:
		return "cursor"
	case KindScroll:
		return "scroll"
	case KindWindow:
		return "window"
	case KindDrop:
		return "drop"
	case KindMonitor:
		return "monitor"
	}
	return "?"
}

// Record is one logged event. Records double as bubbletea messages.
type Record struct {
	Time   time.Time
	Kind   Kind
	Detail string
}

// State is the window state snapshot shown in the header. States
// double as bubbletea messages and replace the previous snapshot.
type State struct {
	X, Y               int
	Width, Height      int
	FBWidth, FBHeight  int
	CursorX, CursorY   float64
	Focused, Iconified bool
	Maximized          bool
}

// Options configures a Viewer.
type Options struct {
	// WindowTitle appears in the status bar.
	WindowTitle string
	// MaxRecords bounds the scrollback. Defaults to 512.
	MaxRecords int
	// Output defaults to stdout. Tests point it elsewhere.
	Output io.Writer
}

// Viewer runs the event viewer program.
type Viewer struct {
	program *tea.Program
}

// New creates a viewer. Run starts it.
func New(opts Options) *Viewer {
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = 512
	}
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	return &Viewer{program: tea.NewProgram(newModel(opts), progOpts...)}
}

// Run blocks until the user quits or Quit is called.
func (v *Viewer) Run() error {
	_, err := v.program.Run()
	return err
}

// Post appends an event record. Safe from any goroutine.
func (v *Viewer) Post(rec Record) {
	v.program.Send(rec)
}

// SetState replaces the header state. Safe from any goroutine.
func (v *Viewer) SetState(st State) {
	v.program.Send(st)
}

// Quit stops the viewer. Safe from any goroutine.
func (v *Viewer) Quit() {
	v.program.Quit()
}

// model is the root bubbletea model for the viewer.
type model struct {
	title      string
	maxRecords int

	state   State
	records []Record
	total   int
	dropped int
	paused  bool

	// Terminal dimensions
	width  int
	height int
}

func newModel(opts Options) model {
	return model{
		title:      opts.WindowTitle,
		maxRecords: opts.MaxRecords,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "p":
			m.paused = !m.paused
			if !m.paused {
				m.dropped = 0
			}
		case "c":
			m.records = nil
			m.total = 0
			m.dropped = 0
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case Record:
		m.total++
		if m.paused {
			m.dropped++
			return m, nil
		}
		m.records = append(m.records, msg)
		if len(m.records) > m.maxRecords {
			m.records = m.records[len(m.records)-m.maxRecords:]
		}

	case State:
		m.state = msg
	}

	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.title, m.total, m.paused, m.dropped, m.width)
	stateLine := renderStateLine(m.state, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(stateLine) + lipgloss.Height(helpBar)
	logHeight := m.height - usedHeight
	if logHeight < 1 {
		logHeight = 1
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		stateLine,
		renderLog(m.records, m.width, logHeight),
		helpBar,
	)
}
