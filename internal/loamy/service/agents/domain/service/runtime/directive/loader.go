// Package directive supplies the system directive sent to the backend,
// optionally read from a file that is reloaded when it changes.
package directive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg"
	"github.com/kiosk404/loamy/pkg/logger"
)

// DefaultDebounce is how long the loader waits after the last change event
// before re-reading the file.
const DefaultDebounce = 500 * time.Millisecond

// Loader serves a directive read from a file and keeps it current.
// When the file is missing or empty the fallback is served.
type Loader struct {
	mu       sync.RWMutex
	path     string
	fallback string
	content  string
	debounce time.Duration

	watcher *fsnotify.Watcher
	closeCh chan struct{}
	closed  bool
}

// NewLoader reads path and starts watching it. An empty path yields a loader
// that always serves fallback.
func NewLoader(path, fallback string) (*Loader, error) {
	l := &Loader{
		fallback: fallback,
		debounce: DefaultDebounce,
		closeCh:  make(chan struct{}),
	}
	if path == "" {
		return l, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve directive path %q: %w", path, err)
	}
	l.path = abs
	l.reload()

	if err := l.startWatcher(); err != nil {
		logger.WarnX(pkg.ModuleName, "[Directive] failed to start watcher: %v, directive loaded statically", err)
	}
	return l, nil
}

// Directive returns the current directive text.
func (l *Loader) Directive() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.content == "" {
		return l.fallback
	}
	return l.content
}

// Close stops the file watcher.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.closeCh)
	if l.watcher != nil {
		l.watcher.Close()
	}
}

func (l *Loader) reload() {
	data, err := os.ReadFile(l.path)
	content := ""
	if err != nil {
		logger.WarnX(pkg.ModuleName, "[Directive] read %s: %v, using built-in directive", l.path, err)
	} else {
		content = strings.TrimSpace(string(data))
	}

	l.mu.Lock()
	l.content = content
	l.mu.Unlock()
	logger.InfoX(pkg.ModuleName, "[Directive] loaded %d bytes from %s", len(content), l.path)
}

// startWatcher watches the directory holding the file, since editors often
// replace the file rather than write it in place.
func (l *Loader) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %q: %w", filepath.Dir(l.path), err)
	}
	l.watcher = watcher
	go l.watchLoop(watcher)
	return nil
}

func (l *Loader) watchLoop(watcher *fsnotify.Watcher) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != l.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(l.debounce, l.reload)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.WarnX(pkg.ModuleName, "[Directive] watcher error: %v", err)
		case <-l.closeCh:
			return
		}
	}
}
