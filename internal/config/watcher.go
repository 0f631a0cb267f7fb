package config

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/keyscope/internal/logging"
)

// Watcher reports changes to a set of files and directories.
// Changes within the debounce delay are coalesced into one batch.
//
// Files are watched through their parent directory so that editors that
// save by rename are still observed.
type Watcher struct {
	mu sync.Mutex

	fsw   *fsnotify.Watcher
	delay time.Duration
	log   *logging.Logger

	// files are watched file paths; dirs are directories whose every
	// entry is of interest. watched are directories registered with fsnotify.
	files   map[string]bool
	dirs    map[string]bool
	watched map[string]bool

	changes  chan []string
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewWatcher creates a watcher. A non-positive delay defaults to 100ms.
func NewWatcher(delay time.Duration, log *logging.Logger) (*Watcher, error) {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	if log == nil {
		log = logging.Nop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		delay:   delay,
		log:     log.WithComponent("watcher"),
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		watched: make(map[string]bool),
		changes: make(chan []string, 8),
		closeCh: make(chan struct{}),
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// AddFile watches a single file. The file need not exist yet, but its
// directory must.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if err := w.watchDirLocked(filepath.Dir(abs)); err != nil {
		return err
	}
	w.files[abs] = true
	return nil
}

// AddDir watches every entry of a directory.
func (w *Watcher) AddDir(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if err := w.watchDirLocked(abs); err != nil {
		return err
	}
	w.dirs[abs] = true
	return nil
}

func (w *Watcher) watchDirLocked(dir string) error {
	if w.watched[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = true
	return nil
}

// Changes returns the channel of debounced change batches. Each batch
// holds the sorted, de-duplicated absolute paths that changed. The
// channel is closed by Close.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()
	close(w.changes)
	return w.fsw.Close()
}

// processLoop collects fsnotify events and flushes them after the delay.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			pending[ev.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.delay)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("file watch error")

		case <-timerC:
			timerC = nil
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			clear(pending)
			sort.Strings(batch)

			w.log.Debug("files changed: %v", batch)
			select {
			case w.changes <- batch:
			case <-w.closeCh:
				return
			}
		}
	}
}

// relevant reports whether an event concerns a watched file or directory.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}

	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[name] || w.dirs[filepath.Dir(name)]
}
