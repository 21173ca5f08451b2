package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ManifestManager holds the default manifest of the API server and keeps it in
// sync with its file. The file is only ever read.
type ManifestManager interface {
	// GetManifest returns the current manifest
	GetManifest() *Manifest

	// ReloadManifest reads the file and applies the manifest if it is valid.
	// The previous manifest stays active on error.
	ReloadManifest() error

	// WatchManifest reloads the manifest whenever its file changes. It blocks
	// until ctx is cancelled.
	WatchManifest(ctx context.Context) error

	// Close releases the file watcher
	Close() error
}

type manifestManager struct {
	mu       sync.RWMutex
	manifest *Manifest
	path     string

	watcher   *fsnotify.Watcher
	watcherMu sync.Mutex

	onReload []func(*Manifest)
}

// ManifestManagerOption customizes a ManifestManager
type ManifestManagerOption func(*manifestManager)

// WithReloadHook registers fn to run after every successful reload
func WithReloadHook(fn func(*Manifest)) ManifestManagerOption {
	return func(m *manifestManager) {
		m.onReload = append(m.onReload, fn)
	}
}

// NewManifestManager loads and validates the manifest at path
func NewManifestManager(path string, opts ...ManifestManagerOption) (ManifestManager, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	m := &manifestManager{path: absPath}
	for _, opt := range opts {
		opt(m)
	}

	manifest, err := LoadManifest(WithConfigPath(m.path))
	if err != nil {
		return nil, fmt.Errorf("failed to load initial manifest: %w", err)
	}
	m.manifest = manifest

	return m, nil
}

// GetManifest implements ManifestManager
func (m *manifestManager) GetManifest() *Manifest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.manifest
}

// ReloadManifest implements ManifestManager
func (m *manifestManager) ReloadManifest() error {
	manifest, err := LoadManifest(WithConfigPath(m.path))
	if err != nil {
		return fmt.Errorf("failed to reload manifest: %w", err)
	}

	m.mu.Lock()
	m.manifest = manifest
	m.mu.Unlock()

	for _, fn := range m.onReload {
		fn(manifest)
	}

	slog.Info("Manifest reloaded", "path", m.path, "targets", len(manifest.Targets))
	return nil
}

// WatchManifest implements ManifestManager. The directory is watched rather
// than the file so that editors and ConfigMap updates that replace the file
// are seen.
func (m *manifestManager) WatchManifest(ctx context.Context) error {
	m.watcherMu.Lock()
	if m.watcher != nil {
		m.watcherMu.Unlock()
		return fmt.Errorf("manifest watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.watcherMu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	m.watcher = watcher
	m.watcherMu.Unlock()

	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		if closeErr := m.Close(); closeErr != nil {
			slog.Warn("Failed to close file watcher", "error", closeErr)
		}
		return fmt.Errorf("failed to watch manifest directory: %w", err)
	}

	slog.Info("Watching manifest for changes", "path", m.path)

	name := filepath.Base(m.path)
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Stopping manifest watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				slog.Debug("Manifest file changed", "event", event.Op.String())
				if err := m.ReloadManifest(); err != nil {
					slog.Error("Keeping previous manifest", "path", m.path, "error", err)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Manifest watcher error", "error", err)
		}
	}
}

// Close implements ManifestManager
func (m *manifestManager) Close() error {
	m.watcherMu.Lock()
	defer m.watcherMu.Unlock()

	if m.watcher == nil {
		return nil
	}
	if err := m.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	m.watcher = nil
	return nil
}
