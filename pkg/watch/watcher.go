package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/platinummonkey/protogen/pkg/observability"
	"github.com/sirupsen/logrus"
)

// DefaultDelay is how long the tree must be quiet before a rebuild
const DefaultDelay = 500 * time.Millisecond

// ErrNoRoots is returned when there is nothing to watch
var ErrNoRoots = errors.New("no directories to watch")

// Func is called with the sorted, distinct proto files that changed. An
// error is logged and watching continues.
type Func func(ctx context.Context, changed []string) error

// Watcher triggers a Func on proto file changes
type Watcher struct {
	roots []string
	delay time.Duration
	fn    Func
	log   logrus.FieldLogger
}

// New creates a watcher over roots. Roots that are not directories, such
// as archives, are skipped. A zero delay uses DefaultDelay.
func New(roots []string, delay time.Duration, fn Func, log logrus.FieldLogger) *Watcher {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = observability.NopLogger()
	}
	return &Watcher{
		roots: roots,
		delay: delay,
		fn:    fn,
		log:   log.WithField("component", "watch"),
	}
}

// Run watches until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, root := range w.roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			w.log.WithField("root", root).Debug("Not watching non-directory root")
			continue
		}
		if err := addTree(watcher, root); err != nil {
			return err
		}
		watched++
	}
	if watched == 0 {
		return ErrNoRoots
	}
	w.log.WithField("roots", watched).Info("Watching for proto file changes")

	pending := make(map[string]bool)
	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.log.WithField("dir", event.Name).Debug("Watching new directory")
					if err := addTree(watcher, event.Name); err != nil {
						w.log.WithError(err).Warn("Failed to watch new directory")
					}
				}
			}

			if !relevant(event) {
				continue
			}
			w.log.WithFields(logrus.Fields{"file": event.Name, "op": event.Op.String()}).Debug("Proto file changed")
			pending[event.Name] = true
			timer.Reset(w.delay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("Watcher error")

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for f := range pending {
				changed = append(changed, f)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)

			w.log.WithField("files", len(changed)).Info("Regenerating")
			if err := w.fn(ctx, changed); err != nil {
				w.log.WithError(err).Error("Regeneration failed")
			}
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != ".proto" {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// addTree adds root and every directory beneath it
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}
