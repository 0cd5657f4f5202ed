package auth

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileTokenSource is a TokenSource backed by a bearer token file refreshed
// out-of-process (e.g. by an OAuth device-flow helper). It caches the last
// read value and refreshes on file-change notification rather than on every
// CurrentToken call.
type FileTokenSource struct {
	path string

	mu    sync.RWMutex
	token string
	ok    bool

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewFileTokenSource creates a FileTokenSource watching path for changes.
// The file is read once immediately; a missing file is not an error, it
// just means CurrentToken reports ok=false until the file appears.
func NewFileTokenSource(path string) (*FileTokenSource, error) {
	s := &FileTokenSource{path: path, stopCh: make(chan struct{})}
	s.reload()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	s.watcher = watcher
	go s.watchLoop()

	return s, nil
}

// CurrentToken returns the last successfully read token.
func (s *FileTokenSource) CurrentToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.ok
}

// Close stops the file watcher.
func (s *FileTokenSource) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.stopCh)
	return s.watcher.Close()
}

func (s *FileTokenSource) reload() {
	data, err := os.ReadFile(s.path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.ok = false
		return
	}
	s.token = strings.TrimSpace(string(data))
	s.ok = s.token != ""
}

func (s *FileTokenSource) watchLoop() {
	target := filepath.Clean(s.path)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.reload()
				slog.Debug("oauth token file reloaded", "path", s.path)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("oauth token file watcher error", "path", s.path, "error", err)
		case <-s.stopCh:
			return
		}
	}
}
