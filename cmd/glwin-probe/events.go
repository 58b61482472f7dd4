package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/1broseidon/glwin"
	"github.com/1broseidon/glwin/event"
	"github.com/1broseidon/glwin/internal/config"
	"github.com/1broseidon/glwin/internal/eventui"
	"golang.org/x/term"
)

func runEvents(args []string) int {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	profilePath := fs.String("profile", "", "profile to load (default ~/.config/glwin-probe/profile.yaml)")
	useTUI := fs.Bool("tui", false, "show events in a full-screen viewer instead of logging them")
	backendFlag := fs.String("backend", "", "override the profile backend: any, x11 or headless")
	levelFlag := fs.String("log-level", "", "override the profile log level: debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glwin-probe events [--profile file] [--tui] [--backend name] [--log-level level]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Create the window the profile describes and report every event it")
		fmt.Fprintln(os.Stderr, "produces. Press q in the terminal or close the window to quit.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "events takes no arguments")
		fs.Usage()
		return 2
	}

	prof, err := loadProfile(*profilePath, *backendFlag, *levelFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// The raw-mode watcher and the logger share the terminal, so raw
	// mode engages first and the logger compensates for it. The TUI
	// owns the terminal itself and logs nowhere.
	restore := func() {}
	logger := slog.New(slog.DiscardHandler)
	if !*useTUI {
		var rawActive bool
		restore, rawActive = enterRawMode()
		out := io.Writer(os.Stderr)
		if rawActive {
			out = crlfWriter{os.Stderr}
		}
		logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: prof.SlogLevel()}))
	}
	defer restore()

	p, err := glwin.Init(prof.PlatformConfig(logger))
	if err != nil {
		restore()
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer p.Terminate()

	wcfg := prof.WindowConfig()
	if prof.Window.Fullscreen {
		m, err := p.PrimaryMonitor()
		if err != nil {
			restore()
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		wcfg.Monitor = &m
	}
	win, err := p.CreateWindow(wcfg)
	if err != nil {
		restore()
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer win.Destroy()

	if err := win.SetCursorMode(prof.CursorMode()); err != nil {
		logger.Warn("cursor mode not applied", "error", err)
	}
	if prof.Context.API != config.APINone {
		if err := win.MakeContextCurrent(); err != nil {
			logger.Warn("context not current", "error", err)
		} else if err := win.SwapInterval(prof.SwapInterval); err != nil {
			logger.Warn("swap interval not applied", "error", err)
		}
	}

	var stop atomic.Bool
	if *useTUI {
		return runEventsTUI(p, win, wcfg.Title, &stop)
	}
	return runEventsPlain(p, win, logger, &stop)
}

// loadProfile reads the events profile and folds the flag overrides
// into it.
func loadProfile(path, backendOverride, levelOverride string) (*config.Profile, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	prof, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if backendOverride != "" {
		prof.Backend = config.BackendName(strings.ToLower(backendOverride))
	}
	if levelOverride != "" {
		prof.LogLevel = strings.ToLower(levelOverride)
	}
	if backendOverride != "" || levelOverride != "" {
		if err := prof.Validate(); err != nil {
			return nil, err
		}
	}
	return prof, nil
}

func runEventsPlain(p *glwin.Platform, win *glwin.Window, logger *slog.Logger, stop *atomic.Bool) int {
	wireLogCallbacks(p, win, logger)
	watchQuitKey(p, stop)

	logger.Info("event loop running", "window", "close it or press q to quit")
	for !win.ShouldClose() && !stop.Load() {
		if err := p.WaitEvents(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}

// wireLogCallbacks reports every window event through the logger.
// Cursor motion and damage go to the debug level so the default
// output stays readable.
func wireLogCallbacks(p *glwin.Platform, win *glwin.Window, logger *slog.Logger) {
	win.SetKeyCallback(func(_ *glwin.Window, key event.Key, scancode int, action event.Action, mods event.Mods) {
		logger.Info("key", "key", key.String(), "action", action.String(), "mods", mods.String(), "scancode", scancode)
	})
	win.SetCharCallback(func(_ *glwin.Window, r rune) {
		logger.Info("char", "rune", string(r))
	})
	win.SetCharModsCallback(func(_ *glwin.Window, r rune, mods event.Mods) {
		logger.Debug("charmods", "rune", string(r), "mods", mods.String())
	})
	win.SetMouseButtonCallback(func(_ *glwin.Window, button event.Button, action event.Action, mods event.Mods) {
		logger.Info("mouse", "button", button.String(), "action", action.String(), "mods", mods.String())
	})
	win.SetScrollCallback(func(_ *glwin.Window, dx, dy float64) {
		logger.Info("scroll", "dx", dx, "dy", dy)
	})
	win.SetCursorPosCallback(func(_ *glwin.Window, x, y float64) {
		logger.Debug("cursor", "x", x, "y", y)
	})
	win.SetCursorEnterCallback(func(_ *glwin.Window, entered bool) {
		logger.Info("cursor enter", "entered", entered)
	})
	win.SetPosCallback(func(_ *glwin.Window, x, y int) {
		logger.Info("moved", "x", x, "y", y)
	})
	win.SetSizeCallback(func(_ *glwin.Window, width, height int) {
		logger.Info("resized", "width", width, "height", height)
	})
	win.SetFramebufferSizeCallback(func(_ *glwin.Window, width, height int) {
		logger.Info("framebuffer resized", "width", width, "height", height)
	})
	win.SetCloseCallback(func(_ *glwin.Window) {
		logger.Info("close requested")
	})
	win.SetFocusCallback(func(_ *glwin.Window, focused bool) {
		logger.Info("focus", "focused", focused)
	})
	win.SetIconifyCallback(func(_ *glwin.Window, iconified bool) {
		logger.Info("iconify", "iconified", iconified)
	})
	win.SetMaximizeCallback(func(_ *glwin.Window, maximized bool) {
		logger.Info("maximize", "maximized", maximized)
	})
	win.SetRefreshCallback(func(_ *glwin.Window) {
		logger.Debug("damaged")
	})
	win.SetDropCallback(func(_ *glwin.Window, paths []string) {
		logger.Info("drop", "paths", strings.Join(paths, " "))
	})
	p.SetMonitorsChangedCallback(func() {
		logger.Info("monitors changed")
	})
}

func runEventsTUI(p *glwin.Platform, win *glwin.Window, title string, stop *atomic.Bool) int {
	viewer := eventui.New(eventui.Options{WindowTitle: title})
	wireViewerCallbacks(p, win, viewer)

	done := make(chan error, 1)
	go func() {
		err := viewer.Run()
		stop.Store(true)
		p.PostEmptyEvent()
		done <- err
	}()

	for !win.ShouldClose() && !stop.Load() {
		if err := p.WaitEvents(); err != nil {
			viewer.Quit()
			<-done
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	viewer.Quit()
	if err := <-done; err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// wireViewerCallbacks feeds the viewer a record per event and keeps
// its window state header current. The state value is only touched
// from callbacks, which all run on the event goroutine.
func wireViewerCallbacks(p *glwin.Platform, win *glwin.Window, viewer *eventui.Viewer) {
	var st eventui.State
	st.X, st.Y = win.Pos()
	st.Width, st.Height = win.Size()
	st.FBWidth, st.FBHeight = win.FramebufferSize()
	st.CursorX, st.CursorY = win.CursorPos()
	st.Focused = win.Focused()
	viewer.SetState(st)

	post := func(kind eventui.Kind, format string, args ...any) {
		viewer.Post(eventui.Record{Time: time.Now(), Kind: kind, Detail: fmt.Sprintf(format, args...)})
	}

	win.SetKeyCallback(func(_ *glwin.Window, key event.Key, scancode int, action event.Action, mods event.Mods) {
		post(eventui.KindKey, "%s %s mods=%s scancode=%d", key, action, mods, scancode)
	})
	win.SetCharCallback(func(_ *glwin.Window, r rune) {
		post(eventui.KindChar, "%q", r)
	})
	win.SetMouseButtonCallback(func(_ *glwin.Window, button event.Button, action event.Action, mods event.Mods) {
		post(eventui.KindMouse, "%s %s mods=%s", button, action, mods)
	})
	win.SetScrollCallback(func(_ *glwin.Window, dx, dy float64) {
		post(eventui.KindScroll, "dx=%+.1f dy=%+.1f", dx, dy)
	})
	win.SetCursorPosCallback(func(_ *glwin.Window, x, y float64) {
		st.CursorX, st.CursorY = x, y
		viewer.SetState(st)
	})
	win.SetCursorEnterCallback(func(_ *glwin.Window, entered bool) {
		if entered {
			post(eventui.KindCursor, "entered the window")
		} else {
			post(eventui.KindCursor, "left the window")
		}
	})
	win.SetPosCallback(func(_ *glwin.Window, x, y int) {
		st.X, st.Y = x, y
		viewer.SetState(st)
		post(eventui.KindWindow, "moved to %d,%d", x, y)
	})
	win.SetSizeCallback(func(_ *glwin.Window, width, height int) {
		st.Width, st.Height = width, height
		viewer.SetState(st)
		post(eventui.KindWindow, "resized to %dx%d", width, height)
	})
	win.SetFramebufferSizeCallback(func(_ *glwin.Window, width, height int) {
		st.FBWidth, st.FBHeight = width, height
		viewer.SetState(st)
	})
	win.SetCloseCallback(func(_ *glwin.Window) {
		post(eventui.KindWindow, "close requested")
	})
	win.SetFocusCallback(func(_ *glwin.Window, focused bool) {
		st.Focused = focused
		viewer.SetState(st)
		if focused {
			post(eventui.KindWindow, "gained focus")
		} else {
			post(eventui.KindWindow, "lost focus")
		}
	})
	win.SetIconifyCallback(func(_ *glwin.Window, iconified bool) {
		st.Iconified = iconified
		viewer.SetState(st)
		post(eventui.KindWindow, "iconified=%t", iconified)
	})
	win.SetMaximizeCallback(func(_ *glwin.Window, maximized bool) {
		st.Maximized = maximized
		viewer.SetState(st)
		post(eventui.KindWindow, "maximized=%t", maximized)
	})
	win.SetDropCallback(func(_ *glwin.Window, paths []string) {
		post(eventui.KindDrop, "%s", strings.Join(paths, " "))
	})
	p.SetMonitorsChangedCallback(func() {
		post(eventui.KindMonitor, "configuration changed")
	})
}

// enterRawMode switches stdin to raw so single keypresses arrive
// unbuffered. Reports whether raw mode engaged; it does not on pipes
// and redirected input.
func enterRawMode() (restore func(), active bool) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, false
	}
	st, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}, false
	}
	return func() { _ = term.Restore(fd, st) }, true
}

// watchQuitKey flags stop and wakes the event loop when q or ctrl-c
// arrives on stdin.
func watchQuitKey(p *glwin.Platform, stop *atomic.Bool) {
	go func() {
		buf := make([]byte, 32)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			for _, b := range buf[:n] {
				if b == 'q' || b == 'Q' || b == 0x03 {
					stop.Store(true)
					p.PostEmptyEvent()
					return
				}
			}
		}
	}()
}

// crlfWriter rewrites bare newlines as CRLF for a terminal left in
// raw mode, where output post-processing is off.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			n, err := c.w.Write(p)
			return written + n, err
		}
		n, err := c.w.Write(p[:i])
		written += n
		if err != nil {
			return written, err
		}
		if _, err := c.w.Write([]byte("\r\n")); err != nil {
			return written, err
		}
		written++
		p = p[i+1:]
	}
	return written, nil
}
