package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const watchDebounce = 500 * time.Millisecond

// Watcher signals on C when session logs under the data directory change,
// debounced so a burst of writes triggers a single refresh. Session files
// land in per-project subdirectories, so those are watched too as they
// appear.
type Watcher struct {
	C chan struct{}

	fw     *fsnotify.Watcher
	logger zerolog.Logger
}

// NewWatcher watches the projects tree under dataDir.
func NewWatcher(dataDir string, logger zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	projects := filepath.Join(dataDir, "projects")
	if err := fw.Add(projects); err != nil {
		_ = fw.Close()
		return nil, err
	}

	// Existing project subdirectories.
	if dirEntries, err := os.ReadDir(projects); err == nil {
		for _, de := range dirEntries {
			if de.IsDir() {
				_ = fw.Add(filepath.Join(projects, de.Name()))
			}
		}
	}

	return &Watcher{
		C:      make(chan struct{}, 1),
		fw:     fw,
		logger: logger,
	}, nil
}

// Run pumps filesystem events until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.fw.Add(ev.Name)
				}
			}
			if !relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case w.C <- struct{}{}:
			default:
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("data dir watch error")
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.HasSuffix(ev.Name, ".jsonl") {
		return true
	}
	info, err := os.Stat(ev.Name)
	return err == nil && info.IsDir()
}
