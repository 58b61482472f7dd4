package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ebitengine/purego"

	"github.com/1broseidon/glwin"
	"github.com/1broseidon/glwin/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "events":
		os.Exit(runEvents(os.Args[2:]))
	case "clipboard":
		os.Exit(runClipboard(os.Args[2:]))
	case "drop":
		os.Exit(runDrop(os.Args[2:]))
	case "info":
		os.Exit(runInfo(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: glwin-probe <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  events              Open a window and log every event it produces")
	fmt.Fprintln(w, "  drop                Open a drop target and print dropped paths")
	fmt.Fprintln(w, "  info                Show backend, monitor and context capabilities")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  clipboard get       Print the clipboard (or PRIMARY) contents")
	fmt.Fprintln(w, "  clipboard set       Own the clipboard and serve the given text")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start the desktop introspection MCP server on stdio")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  help                Show this help")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'glwin-probe <command> --help' for command-specific options.")
}

// parseBackend maps a --backend flag value onto a backend selector.
// The empty string keeps the automatic choice.
func parseBackend(name string) (glwin.Backend, error) {
	switch config.BackendName(strings.ToLower(name)) {
	case "", config.BackendAny:
		return glwin.AnyBackend, nil
	case config.BackendX11:
		return glwin.X11Backend, nil
	case config.BackendHeadless:
		return glwin.HeadlessBackend, nil
	}
	return 0, fmt.Errorf("unknown backend %q (use any, x11 or headless)", name)
}

func runInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	backendFlag := fs.String("backend", "", "backend: any, x11 or headless")
	displayFlag := fs.String("display", "", "X display to connect to (default $DISPLAY)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glwin-probe info [--backend name] [--display name]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Report the selected backend, its monitors and desktops, and the")
		fmt.Fprintln(os.Stderr, "rendering capabilities reachable from it.")
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
		fmt.Fprintln(os.Stderr, "info takes no arguments")
		fs.Usage()
		return 2
	}

	backend, err := parseBackend(*backendFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	p, err := glwin.Init(glwin.Config{Backend: backend, Display: *displayFlag})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer p.Terminate()

	fmt.Printf("backend: %s\n", p.Backend())

	monitors, err := p.Monitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("monitors:")
	for _, m := range monitors {
		marker := ""
		if m.Primary {
			marker = " (primary)"
		}
		fmt.Printf("  %s: %dx%d at %d,%d%s\n", m.Name, m.Width, m.Height, m.X, m.Y, marker)
	}

	if p.Backend() == glwin.X11Backend {
		if randr, render, shape, err := p.X11Extensions(); err == nil {
			fmt.Printf("extensions: randr=%t render=%t shape=%t\n", randr, render, shape)
		}
		if count, current, err := p.Desktops(); err == nil {
			fmt.Printf("desktops: %d (current %d)\n", count, current)
		}
		if win, err := p.ActiveDesktopWindow(); err == nil {
			fmt.Printf("active window: %#x %q\n", win.ID, win.Title)
		}
	}

	if p.VulkanSupported() {
		exts, err := p.RequiredInstanceExtensions()
		if err != nil {
			fmt.Printf("vulkan: loader present, surfaces unavailable (%v)\n", err)
		} else {
			fmt.Printf("vulkan: available (%s)\n", strings.Join(exts, ", "))
		}
	} else {
		fmt.Println("vulkan: unavailable")
	}

	probeContext(p)
	return 0
}

// probeContext creates a throwaway invisible window to check whether
// the default OpenGL context comes up on this machine.
func probeContext(p *glwin.Platform) {
	cfg := glwin.DefaultWindowConfig("glwin-probe", 64, 64)
	cfg.Visible = false
	cfg.Focused = false
	cfg.CenterCursor = false
	win, err := p.CreateWindow(cfg)
	if err != nil {
		fmt.Printf("opengl: unavailable (%v)\n", err)
		return
	}
	defer win.Destroy()
	if err := win.MakeContextCurrent(); err != nil {
		fmt.Printf("opengl: context not current (%v)\n", err)
		return
	}
	defer win.DetachCurrentContext()

	fmt.Println("opengl: default context created")
	if proc, err := win.GetProcAddress("glGetString"); err == nil && proc != 0 {
		var glGetString func(name uint32) string
		purego.RegisterFunc(&glGetString, proc)
		const (
			glVendor   = 0x1F00
			glRenderer = 0x1F01
			glVersion  = 0x1F02
		)
		if s := glGetString(glVersion); s != "" {
			fmt.Printf("  version: %s\n", s)
		}
		if s := glGetString(glRenderer); s != "" {
			fmt.Printf("  renderer: %s\n", s)
		}
		if s := glGetString(glVendor); s != "" {
			fmt.Printf("  vendor: %s\n", s)
		}
	}
	for _, name := range []string{
		"EGL_KHR_create_context",
		"EGL_KHR_get_all_proc_addresses",
		"EGL_EXT_pixel_format_float",
	} {
		ok, err := win.ExtensionSupported(name)
		status := "no"
		if err == nil && ok {
			status = "yes"
		}
		fmt.Printf("  %s: %s\n", name, status)
	}
}
