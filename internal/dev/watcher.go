package dev

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeConfig ChangeType = iota
	ChangeStyle
	ChangeScript
	ChangeOther
)

func (t ChangeType) String() string {
	switch t {
	case ChangeConfig:
		return "config"
	case ChangeStyle:
		return "style"
	case ChangeScript:
		return "script"
	default:
		return "other"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch. Directories are
	// watched recursively.
	Paths []string

	// Ignore patterns to skip (globs or path segments).
	Ignore []string

	// Debounce is the quiet period collecting a batch of changes.
	Debounce time.Duration

	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors files for changes using fsnotify.
type Watcher struct {
	config   WatcherConfig
	logger   *slog.Logger
	onChange func([]Change)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	files   map[string]bool
	dirs    map[string]bool
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Watcher{
		config: config,
		logger: config.Logger,
		files:  make(map[string]bool),
		dirs:   make(map[string]bool),
	}
}

// OnChange sets the callback receiving each debounced batch.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("dev: create watcher: %w", err)
	}
	defer fsw.Close()

	for _, p := range w.config.Paths {
		if err := w.add(fsw, filepath.Clean(p)); err != nil {
			w.logger.Warn("cannot watch path", "path", p, "error", err)
		}
	}

	pending := make(map[string]Change)
	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && w.recursive(event.Name) {
					if err := w.addDir(fsw, event.Name); err != nil {
						w.logger.Debug("cannot watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			if event.Op == fsnotify.Chmod || !w.relevant(event.Name) {
				continue
			}
			pending[event.Name] = Change{Path: event.Name, Type: classifyChange(event.Name)}
			timer.Reset(w.config.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			w.flush(pending)
			pending = make(map[string]Change)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) flush(pending map[string]Change) {
	if len(pending) == 0 {
		return
	}
	changes := make([]Change, 0, len(pending))
	for _, c := range pending {
		changes = append(changes, c)
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()
	if callback != nil {
		callback(changes)
	}
}

// add watches a file through its parent directory, so editors that
// replace files on save are still seen, or a directory recursively.
func (w *Watcher) add(fsw *fsnotify.Watcher, p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return w.addDir(fsw, p)
	}

	w.mu.Lock()
	w.files[p] = true
	w.mu.Unlock()
	return fsw.Add(filepath.Dir(p))
}

func (w *Watcher) addDir(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.shouldIgnore(p) {
			return filepath.SkipDir
		}
		w.mu.Lock()
		w.dirs[p] = true
		w.mu.Unlock()
		return fsw.Add(p)
	})
}

// recursive reports whether p lies in a recursively watched directory.
func (w *Watcher) recursive(p string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirs[filepath.Dir(p)]
}

func (w *Watcher) relevant(p string) bool {
	if w.shouldIgnore(p) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[p] || w.dirs[filepath.Dir(p)]
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		if strings.ContainsAny(pattern, "*?[") {
			if strings.Contains(pattern, "/") {
				if matched, _ := path.Match(pattern, normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		for _, part := range strings.Split(normalized, "/") {
			if part == pattern {
				return true
			}
		}
	}
	return false
}

// classifyChange determines the type of change based on the file name.
func classifyChange(p string) ChangeType {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".json", ".yaml", ".yml", ".env":
		return ChangeConfig
	case ".css", ".scss", ".sass", ".less":
		return ChangeStyle
	case ".js", ".mjs", ".map":
		return ChangeScript
	default:
		return ChangeOther
	}
}
