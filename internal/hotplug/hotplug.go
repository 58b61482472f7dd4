// Package hotplug watches /dev/input for device nodes appearing and
// disappearing, turning kernel inotify traffic into wake calls on the
// event loop. It only reports evdev nodes; what a device is and
// whether anyone cares is the application's business.
package hotplug

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/glwin/internal/werr"
)

// DefaultDir is the directory evdev device nodes appear in.
const DefaultDir = "/dev/input"

// Device nodes worth reporting. Other names under /dev/input (mouseN,
// jsN, by-id) are legacy aliases of the same devices.
var eventNode = regexp.MustCompile(`^event[0-9]+$`)

// Options configures Watch.
type Options struct {
	// Dir is the directory to watch; empty uses DefaultDir.
	Dir string
	// Notify receives the full path of each changed device node. It is
	// called from the watcher goroutine and must not block.
	Notify func(path string)
	Logger *slog.Logger
}

// Watcher is a running /dev/input watch. Close releases it.
type Watcher struct {
	dir    string
	file   *os.File
	notify func(path string)
	logger *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// Watch starts watching for device node creation, attribute changes
// and removal. The attribute watch is what makes freshly created nodes
// visible: udev fixes up permissions after creation, and that change
// is the first moment the node is usable.
func Watch(opts Options) (*Watcher, error) {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, werr.Wrap(werr.PlatformError, err, "failed to create inotify instance")
	}
	if _, err := unix.InotifyAddWatch(fd, dir, unix.IN_CREATE|unix.IN_ATTRIB|unix.IN_DELETE); err != nil {
		unix.Close(fd)
		return nil, werr.Wrap(werr.PlatformError, err, "failed to watch %s", dir)
	}

	w := &Watcher{
		// The non-blocking fd makes the file pollable, so Close
		// unblocks the read loop.
		file:   os.NewFile(uintptr(fd), "inotify:"+dir),
		dir:    dir,
		notify: opts.Notify,
		logger: logger,
		done:   make(chan struct{}),
	}
	go w.run()
	logger.Debug("watching for device changes", "dir", dir)
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		w.file.Close()
		<-w.done
	})
}

func (w *Watcher) run() {
	defer close(w.done)
	buf := make([]byte, 4096)
	for {
		n, err := w.file.Read(buf)
		if err != nil {
			return
		}
		parseEvents(buf[:n], w.deliver)
	}
}

func (w *Watcher) deliver(name string, mask uint32) {
	if mask&unix.IN_ISDIR != 0 || !eventNode.MatchString(name) {
		return
	}
	path := filepath.Join(w.dir, name)
	w.logger.Debug("device node changed", "path", path, "removed", mask&unix.IN_DELETE != 0)
	if w.notify != nil {
		w.notify(path)
	}
}

// parseEvents walks a buffer of packed inotify_event records and emits
// each carried name. Records without a name (queue overflow, watch
// removal) are skipped.
func parseEvents(buf []byte, emit func(name string, mask uint32)) {
	for len(buf) >= unix.SizeofInotifyEvent {
		mask := binary.NativeEndian.Uint32(buf[4:8])
		nameLen := int(binary.NativeEndian.Uint32(buf[12:16]))
		if unix.SizeofInotifyEvent+nameLen > len(buf) {
			return
		}
		name := buf[unix.SizeofInotifyEvent : unix.SizeofInotifyEvent+nameLen]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		if len(name) > 0 {
			emit(string(name), mask)
		}
		buf = buf[unix.SizeofInotifyEvent+nameLen:]
	}
}
