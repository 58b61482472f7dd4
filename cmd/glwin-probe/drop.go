package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/1broseidon/glwin"
)

func runDrop(args []string) int {
	fs := flag.NewFlagSet("drop", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	backendFlag := fs.String("backend", "", "backend: any, x11 or headless")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glwin-probe drop [--backend name]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a drop target window and print every dropped path on its own")
		fmt.Fprintln(os.Stderr, "line. Press q in the terminal or close the window to quit.")
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
		fmt.Fprintln(os.Stderr, "drop takes no arguments")
		fs.Usage()
		return 2
	}

	backend, err := parseBackend(*backendFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	restore, rawActive := enterRawMode()
	defer restore()
	out := io.Writer(os.Stdout)
	if rawActive {
		out = crlfWriter{os.Stdout}
	}

	p, err := glwin.Init(glwin.Config{Backend: backend})
	if err != nil {
		restore()
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer p.Terminate()

	wcfg := glwin.DefaultWindowConfig("glwin-probe drop target", 400, 300)
	wcfg.Context.API = glwin.NoAPI
	win, err := p.CreateWindow(wcfg)
	if err != nil {
		restore()
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer win.Destroy()

	win.SetDropCallback(func(_ *glwin.Window, paths []string) {
		for _, path := range paths {
			fmt.Fprintln(out, path)
		}
	})

	var stop atomic.Bool
	if rawActive {
		watchQuitKey(p, &stop)
	}
	for !win.ShouldClose() && !stop.Load() {
		if err := p.WaitEvents(); err != nil {
			restore()
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}
