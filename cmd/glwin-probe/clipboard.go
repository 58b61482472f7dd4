package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/1broseidon/glwin"
)

func runClipboard(args []string) int {
	if len(args) == 0 {
		printClipboardUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "get":
		return runClipboardGet(args[1:])
	case "set":
		return runClipboardSet(args[1:])
	case "help", "-h", "--help":
		printClipboardUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown clipboard command: %s\n\n", args[0])
		printClipboardUsage(os.Stderr)
		return 2
	}
}

func printClipboardUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  glwin-probe clipboard get [--primary] [--backend name]")
	fmt.Fprintln(w, "  glwin-probe clipboard set [--primary] [--backend name] <text>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "get prints the current selection contents. set takes ownership of the")
	fmt.Fprintln(w, "selection and serves <text> to other clients until interrupted; on exit")
	fmt.Fprintln(w, "the text is handed to the clipboard manager if one is running.")
}

func runClipboardGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	primary := fs.Bool("primary", false, "read the PRIMARY selection instead of the clipboard")
	backendFlag := fs.String("backend", "", "backend: any, x11 or headless")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glwin-probe clipboard get [--primary] [--backend name]")
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
		fmt.Fprintln(os.Stderr, "clipboard get takes no arguments")
		fs.Usage()
		return 2
	}

	backend, err := parseBackend(*backendFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	p, err := glwin.Init(glwin.Config{Backend: backend})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer p.Terminate()

	var text string
	if *primary {
		text, err = p.PrimaryString()
	} else {
		text, err = p.ClipboardString()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(text)
	return 0
}

func runClipboardSet(args []string) int {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	primary := fs.Bool("primary", false, "own the PRIMARY selection instead of the clipboard")
	backendFlag := fs.String("backend", "", "backend: any, x11 or headless")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: glwin-probe clipboard set [--primary] [--backend name] <text>")
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
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "clipboard set takes exactly one argument")
		fs.Usage()
		return 2
	}
	text := fs.Arg(0)

	backend, err := parseBackend(*backendFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	p, err := glwin.Init(glwin.Config{Backend: backend})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer p.Terminate()

	if *primary {
		err = p.SetPrimaryString(text)
	} else {
		err = p.SetClipboardString(text)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Selection ownership dies with the connection, so on X11 the
	// process stays up answering conversion requests. Terminate then
	// offers the text to the clipboard manager.
	if p.Backend() == glwin.X11Backend {
		fmt.Fprintln(os.Stderr, "serving the selection; press ctrl-c to exit")
		var stop atomic.Bool
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			<-sigCh
			stop.Store(true)
			p.PostEmptyEvent()
		}()
		for !stop.Load() {
			if err := p.WaitEvents(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
	}
	return 0
}
