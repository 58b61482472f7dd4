package eventui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "ctrl+c" {
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T, want model", next)
	}
	return got, cmd
}

func record(detail string) Record {
	return Record{Time: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC), Kind: KindKey, Detail: detail}
}

func TestUpdate_AppendsRecords(t *testing.T) {
	m := newModel(Options{MaxRecords: 3})

	for _, d := range []string{"one", "two", "three", "four"} {
		m, _ = update(t, m, record(d))
	}

	if m.total != 4 {
		t.Errorf("total = %d, want 4", m.total)
	}
	if len(m.records) != 3 {
		t.Fatalf("len(records) = %d, want 3 after truncation", len(m.records))
	}
	if m.records[0].Detail != "two" || m.records[2].Detail != "four" {
		t.Errorf("records = [%s..%s], want [two..four]", m.records[0].Detail, m.records[2].Detail)
	}
}

func TestUpdate_PauseDropsRecords(t *testing.T) {
	m := newModel(Options{MaxRecords: 16})
	m, _ = update(t, m, record("before"))

	m, _ = update(t, m, keyMsg("p"))
	if !m.paused {
		t.Fatal("p did not pause")
	}
	m, _ = update(t, m, record("while paused"))
	if len(m.records) != 1 {
		t.Errorf("len(records) = %d while paused, want 1", len(m.records))
	}
	if m.dropped != 1 || m.total != 2 {
		t.Errorf("dropped, total = %d, %d, want 1, 2", m.dropped, m.total)
	}

	m, _ = update(t, m, keyMsg("p"))
	if m.paused || m.dropped != 0 {
		t.Errorf("after resume paused, dropped = %v, %d, want false, 0", m.paused, m.dropped)
	}
	m, _ = update(t, m, record("after"))
	if len(m.records) != 2 {
		t.Errorf("len(records) = %d after resume, want 2", len(m.records))
	}
}

func TestUpdate_ClearResetsLog(t *testing.T) {
	m := newModel(Options{MaxRecords: 16})
	m, _ = update(t, m, record("one"))
	m, _ = update(t, m, record("two"))

	m, _ = update(t, m, keyMsg("c"))
	if len(m.records) != 0 || m.total != 0 {
		t.Errorf("after clear records, total = %d, %d, want 0, 0", len(m.records), m.total)
	}
}

func TestUpdate_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c"} {
		m := newModel(Options{MaxRecords: 16})
		_, cmd := update(t, m, keyMsg(key))
		if cmd == nil {
			t.Fatalf("%s produced no command, want quit", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s command returned %T, want tea.QuitMsg", key, cmd())
		}
	}
}

func TestView_ShowsNewestRecords(t *testing.T) {
	m := newModel(Options{WindowTitle: "probe", MaxRecords: 64})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 10})

	for _, d := range []string{"oldest event", "middle event", "newest event"} {
		m, _ = update(t, m, record(d))
	}

	view := m.View()
	if !strings.Contains(view, "probe") {
		t.Error("view is missing the window title")
	}
	if !strings.Contains(view, "3 events") {
		t.Error("view is missing the event counter")
	}
	if !strings.Contains(view, "newest event") {
		t.Error("view is missing the newest record")
	}
	if !strings.Contains(view, "q/ctrl-c: quit") {
		t.Error("view is missing the help bar")
	}
}

func TestView_StateHeader(t *testing.T) {
	m := newModel(Options{WindowTitle: "probe", MaxRecords: 64})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 12})
	m, _ = update(t, m, State{
		X: 40, Y: 30,
		Width: 800, Height: 600,
		FBWidth: 800, FBHeight: 600,
		Focused: true,
	})

	view := m.View()
	if !strings.Contains(view, "pos 40,30") {
		t.Error("view is missing the window position")
	}
	if !strings.Contains(view, "size 800x600") {
		t.Error("view is missing the window size")
	}
	if !strings.Contains(view, "focused") {
		t.Error("view is missing the focus flag")
	}
}

func TestView_EmptyBeforeFirstResize(t *testing.T) {
	m := newModel(Options{MaxRecords: 16})
	if view := m.View(); view != "" {
		t.Errorf("View before resize = %q, want empty", view)
	}
}
