package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the template directories in dev mode. When a template
// changes it drops the cached source and any cached pages so the next
// request renders from the new file.
type Watcher struct {
	watcher *fsnotify.Watcher
	server  *Server
	dirs    []string
	stdout  io.Writer
	stderr  io.Writer

	// Debounce rapid change bursts (editors often write twice)
	mu         sync.Mutex
	lastChange time.Time
}

// NewWatcher creates a file watcher over the server's template
// directories.
func NewWatcher(s *Server, stdout, stderr io.Writer) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fsWatcher,
		server:  s,
		stdout:  stdout,
		stderr:  stderr,
	}
	w.dirs = w.collectTemplateDirs()
	return w, nil
}

// collectTemplateDirs returns the unique directories holding templates.
func (w *Watcher) collectTemplateDirs() []string {
	dirs := make(map[string]bool)
	if w.server.config.Site != "" {
		dirs[w.server.config.Site] = true
	}
	for _, dir := range w.server.config.Templates.Paths {
		dirs[dir] = true
	}

	result := make([]string, 0, len(dirs))
	for dir := range dirs {
		result = append(result, dir)
	}
	return result
}

// Start begins watching for template changes.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.watchDirRecursive(dir); err != nil {
			w.logError("failed to watch %s: %v", dir, err)
		} else {
			w.logInfo("watching templates: %s", dir)
		}
	}

	go w.eventLoop(ctx)
	return nil
}

// watchDirRecursive adds a directory and its subdirectories to the watch
// list.
func (w *Watcher) watchDirRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

// eventLoop processes file system events.
func (w *Watcher) eventLoop(ctx context.Context) {
	const debounce = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}

			w.mu.Lock()
			if time.Since(w.lastChange) < debounce {
				w.mu.Unlock()
				continue
			}
			w.lastChange = time.Now()
			w.mu.Unlock()

			w.handleFileChange(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// handleFileChange invalidates caches for a changed template file.
func (w *Watcher) handleFileChange(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case w.server.config.Templates.Extension, ".html", ".htm":
		w.logInfo("template changed: %s", path)
		// The loader caches by template name, not path; a changed file
		// may shadow or unshadow entries in other search paths, so drop
		// everything.
		w.server.templates.Clear()
		w.server.pages.Clear()
	default:
		// Ignore other files
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) logInfo(format string, args ...any) {
	fmt.Fprintf(w.stdout, "[watch] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...any) {
	fmt.Fprintf(w.stderr, "[watch error] "+format+"\n", args...)
}
