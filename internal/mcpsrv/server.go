// Package mcpsrv exposes desktop introspection and clipboard access
// over the Model Context Protocol, on stdio. The display connection
// is not safe to touch from the transport's handler goroutines, so
// every native call is queued for the goroutine that owns the event
// loop and executed by Dispatch between waits.
package mcpsrv

import (
	"context"
	"fmt"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/glwin"
)

const (
	// ServerName is the name reported to MCP clients.
	ServerName = "glwin-probe"
	// ServerVersion is the version reported to MCP clients.
	ServerVersion = "0.1.0"
)

// Desktop is the native surface the tools call into. *glwin.Platform
// satisfies it on the X11 backend; tests substitute a fake. Methods
// are only ever called from the goroutine running Dispatch.
type Desktop interface {
	DesktopWindows() ([]glwin.DesktopWindow, error)
	FindDesktopWindow(title string) (glwin.DesktopWindow, error)
	ActiveDesktopWindow() (glwin.DesktopWindow, error)
	Monitors() ([]glwin.Monitor, error)
	ClipboardString() (string, error)
	SetClipboardString(text string) error
	PrimaryString() (string, error)
	SetPrimaryString(text string) error
}

// Options configures a Server.
type Options struct {
	// Desktop handles the native side of every tool call.
	Desktop Desktop
	// Wake interrupts the event loop after a tool task is queued,
	// typically Platform.PostEmptyEvent.
	Wake func()
	// Logger receives tool call logs. Defaults to a discard logger.
	Logger *slog.Logger
}

// Server is an MCP server exposing the probe tools over stdio.
type Server struct {
	desktop   Desktop
	wake      func()
	logger    *slog.Logger
	mcpServer *mcpsdk.Server
	tasks     chan func()
}

// NewServer creates the MCP server and registers all tools.
func NewServer(opts Options) (*Server, error) {
	if opts.Desktop == nil {
		return nil, fmt.Errorf("mcpsrv: Desktop is required")
	}
	if opts.Wake == nil {
		return nil, fmt.Errorf("mcpsrv: Wake is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		desktop: opts.Desktop,
		wake:    opts.Wake,
		logger:  logger,
		tasks:   make(chan func(), 16),
	}
	s.mcpServer = mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the top-level windows on the desktop with their titles, geometry and focus state.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window",
		Description: "Look up a single window by id, by title substring, or the window holding input focus.",
	}, s.handleGetWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the connected monitors with their virtual screen positions and sizes.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_clipboard",
		Description: "Read the clipboard, or the X11 PRIMARY selection.",
	}, s.handleGetClipboard)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_clipboard",
		Description: "Place text on the clipboard, or on the X11 PRIMARY selection.",
	}, s.handleSetClipboard)
}

// Run serves MCP over stdio until ctx is canceled or the client
// disconnects. Run never touches the display itself; the caller
// keeps driving the event loop and Dispatch concurrently.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "name", ServerName, "version", ServerVersion)
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Dispatch runs every queued tool task and returns when the queue is
// empty. The goroutine that owns the event loop calls it after each
// wait returns.
func (s *Server) Dispatch() {
	for {
		select {
		case task := <-s.tasks:
			task()
		default:
			return
		}
	}
}

// call queues fn for the event loop goroutine, wakes it, and blocks
// until the task ran or ctx was canceled.
func (s *Server) call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}
	select {
	case s.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.wake()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
