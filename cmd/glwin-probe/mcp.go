package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/glwin"
	"github.com/1broseidon/glwin/internal/mcpsrv"
)

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: glwin-probe mcp serve [--backend name] [--display name] [--log-level level]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Start the desktop introspection MCP server on stdio. Designed to be")
	fmt.Fprintln(w, "invoked by MCP clients such as Claude Code or Claude Desktop.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Example (Claude Code):")
	fmt.Fprintln(w, "  claude mcp add glwin-probe -- glwin-probe mcp serve")
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	backendFlag := fs.String("backend", "", "backend: any, x11 or headless")
	displayFlag := fs.String("display", "", "X display to connect to (default $DISPLAY)")
	levelFlag := fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.Usage = func() { printMCPUsage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "mcp serve takes no arguments")
		printMCPUsage(os.Stderr)
		return 2
	}

	level, err := parseLogLevel(*levelFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	backend, err := parseBackend(*backendFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// Stdout carries the MCP transport, so everything else goes to
	// stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	p, err := glwin.Init(glwin.Config{Backend: backend, Display: *displayFlag, Logger: logger})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer p.Terminate()

	srv, err := mcpsrv.NewServer(mcpsrv.Options{
		Desktop: p,
		Wake:    p.PostEmptyEvent,
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
		p.PostEmptyEvent()
	}()

	// The transport runs on its own goroutine while this one stays on
	// the event loop, draining queued tool work after every wakeup.
	errCh := make(chan error, 1)
	go func() {
		err := srv.Run(ctx)
		cancel()
		p.PostEmptyEvent()
		errCh <- err
	}()

	for ctx.Err() == nil {
		if err := p.WaitEvents(); err != nil {
			cancel()
			<-errCh
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		srv.Dispatch()
	}
	srv.Dispatch()

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseLogLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (use debug, info, warn or error)", name)
}
