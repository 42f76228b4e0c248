package core

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is the quiet window after a git-dir event before the
// pipeline reruns. Ref updates arrive as several filesystem events.
const WatchDebounce = 600 * time.Millisecond

// CommitWatcher watches a repository's git common directory and signals
// when its refs change, meaning a commit, checkout or ref update happened.
type CommitWatcher struct {
	// Events receives one signal per debounced change burst. The channel
	// has capacity one; a signal arriving while a run is in progress is
	// held until the run loop comes back around, and further signals
	// before that are dropped.
	Events chan struct{}

	commonDir string
	watcher   *fsnotify.Watcher
	debounce  *Debouncer
	logf      func(format string, args ...any)
}

// NewCommitWatcher creates a watcher over the given git common directory.
func NewCommitWatcher(commonDir string, logf func(format string, args ...any)) (*CommitWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &CommitWatcher{
		Events:    make(chan struct{}, 1),
		commonDir: commonDir,
		watcher:   watcher,
		logf:      logf,
	}
	w.debounce = NewDebouncer(WatchDebounce, w.signal)

	w.addDir(commonDir)
	for _, root := range []string{filepath.Join(commonDir, "refs"), filepath.Join(commonDir, "logs")} {
		w.addTree(root)
	}
	return w, nil
}

// Run processes watcher events until the context is cancelled. Watcher
// errors are logged and non-fatal.
func (w *CommitWatcher) Run(ctx context.Context) {
	defer w.debounce.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			// New directories under refs/ need their own watches.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(event.Name)
				}
			}
			w.debounce.Trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logf("Watcher error: %v", err)
		}
	}
}

// Close stops the underlying watcher.
func (w *CommitWatcher) Close() error {
	w.debounce.Stop()
	return w.watcher.Close()
}

func (w *CommitWatcher) signal() {
	select {
	case w.Events <- struct{}{}:
	default:
	}
}

// relevant filters git-dir noise down to ref movement: HEAD rewrites and
// anything under refs/ or logs/. Lock files churn on every git command.
func (w *CommitWatcher) relevant(event fsnotify.Event) bool {
	if strings.HasSuffix(event.Name, ".lock") {
		return false
	}
	rel, err := filepath.Rel(w.commonDir, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == "HEAD" || rel == "packed-refs" {
		return true
	}
	return strings.HasPrefix(rel, "refs/") || strings.HasPrefix(rel, "logs/")
}

func (w *CommitWatcher) addDir(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logf("Watcher: cannot watch %s: %v", dir, err)
	}
}

func (w *CommitWatcher) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			w.addDir(path)
		}
		return nil
	})
}
