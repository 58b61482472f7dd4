package x11

import (
	"github.com/1broseidon/glwin/internal/fbconfig"
	"github.com/1broseidon/glwin/internal/platform"
)

// The connection is the backend: window creation, the event loop and
// the clipboard all hang off it.
var _ platform.Backend = (*Conn)(nil)

// CreateWindow builds the native window, attaches a rendering context
// when one is requested, and only then makes the window visible, so
// the first exposure already has a context behind it.
func (c *Conn) CreateWindow(cfg platform.WindowConfig, ctxconfig platform.ContextConfig, fb fbconfig.Config, handlers platform.Handlers) (platform.Window, error) {
	w, err := c.createNativeWindow(cfg, ctxconfig, fb, handlers)
	if err != nil {
		return nil, err
	}

	if ctxconfig.API != platform.NoAPI {
		mgr, err := c.EGL()
		if err != nil {
			w.Destroy()
			return nil, err
		}
		ctx, err := mgr.CreateContext(ctxconfig, fb, w)
		if err != nil {
			w.Destroy()
			return nil, err
		}
		w.setContext(ctx)
	}

	if cfg.Monitor != nil {
		if err := w.SetMonitor(cfg.Monitor); err != nil {
			w.Destroy()
			return nil, err
		}
		if cfg.CenterCursor {
			w.SetCursorPos(float64(cfg.Width)/2, float64(cfg.Height)/2)
		}
	} else if cfg.Visible {
		if err := w.Show(); err != nil {
			w.Destroy()
			return nil, err
		}
		if cfg.Focused {
			if err := w.Focus(); err != nil {
				c.logger.Debug("failed to focus new window", "error", err)
			}
		}
	}
	return w, nil
}

// Terminate tears the backend down in dependency order: windows and
// their contexts first, then the EGL display, then the connection,
// and only after that the EGL and deferred client libraries.
func (c *Conn) Terminate() {
	for _, w := range c.snapshotWindows() {
		w.Destroy()
	}
	c.TerminateEGL()
	c.Close()
	c.UnloadEGL()
}

func (c *Conn) snapshotWindows() []*Window {
	list := make([]*Window, 0, len(c.windows))
	for _, w := range c.windows {
		list = append(list, w)
	}
	return list
}
