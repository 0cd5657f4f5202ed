package config

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a config file's directory and invokes onChange with a
// freshly loaded Config each time the file is written or recreated (editors
// commonly replace a file rather than writing in place). Load errors are
// logged and otherwise swallowed: a bad edit never tears down a running
// server, it just leaves the previous configuration in effect.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	onChange func(*Config)
}

// WatchFile starts watching path for changes, calling onChange with each
// successfully reloaded Config. Call Close to stop watching.
func WatchFile(path string, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{path: path, watcher: fw, stopCh: make(chan struct{}), onChange: onChange}
	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.stopCh)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	target := filepath.Clean(w.path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := LoadConfigWithEnvOverrides(w.path)
			if err != nil {
				slog.Error("config reload failed, keeping previous configuration", "path", w.path, "error", err)
				continue
			}
			slog.Info("config file changed, reloading", "path", w.path)
			w.onChange(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "path", w.path, "error", err)
		case <-w.stopCh:
			return
		}
	}
}
