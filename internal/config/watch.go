package config

import (
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/fsnotify/fsnotify"

	"media-orchestrator/internal/logging"
)

// Watch starts watching the config file for changes. On every write the
// file layer is re-merged over defaults, environment overrides are
// re-applied, and observers fire for each changed path. Watch is a
// no-op if the Manager was built without a file.
func (m *Manager) Watch() error {
	if m.filePath == "" {
		return nil
	}

	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	if m.watchStop != nil {
		return fmt.Errorf("config watch already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the directory: editors commonly replace the file on save,
	// which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(m.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	m.watchStop = make(chan struct{})
	go m.watchLoop(watcher, m.watchStop)

	logging.Info("Watching %s for configuration changes", m.filePath)
	return nil
}

// StopWatch stops the file watcher if it is running.
func (m *Manager) StopWatch() {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	if m.watchStop != nil {
		close(m.watchStop)
		m.watchStop = nil
	}
}

func (m *Manager) watchLoop(watcher *fsnotify.Watcher, stop chan struct{}) {
	defer watcher.Close()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != m.filePath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			m.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("Config watcher error: %v", err)
		case <-stop:
			return
		}
	}
}

// reload rebuilds the tree from defaults, file, and environment, then
// fires observers for every leaf whose value changed.
func (m *Manager) reload() {
	fresh := New()
	fresh.filePath = m.filePath
	if err := fresh.mergeFile(m.filePath); err != nil {
		logging.Warn("Config reload failed, keeping previous values: %v", err)
		return
	}

	m.mu.RLock()
	fresh.validators = m.validators
	m.mu.RUnlock()
	fresh.applyEnv()

	m.mu.Lock()
	old := m.values
	m.values = fresh.values

	type change struct {
		path  string
		value any
		fns   []Observer
	}
	var changes []change
	for _, path := range leafPaths(m.values, "") {
		newVal, _ := lookup(m.values, path)
		oldVal, had := lookup(old, path)
		if had && reflect.DeepEqual(oldVal, newVal) {
			continue
		}
		changes = append(changes, change{path: path, value: newVal, fns: append([]Observer(nil), m.observers[path]...)})
	}
	m.mu.Unlock()

	for _, c := range changes {
		logging.Debug("Config path %s changed on reload", c.path)
		for _, fn := range c.fns {
			fn(c.path, c.value)
		}
	}
}
