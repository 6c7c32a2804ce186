package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // graph file written or recreated
	ChangeRemoved                    // graph file deleted or renamed away
)

// Change is emitted once per debounced burst of events on the watched file.
type Change struct {
	Kind ChangeKind
	File string
}

// DefaultDebounce coalesces editors that write a file in several steps.
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors a single graph file using fsnotify. The parent
// directory is watched so that atomic replace-by-rename is seen too.
type Watcher struct {
	File     string
	Changes  <-chan Change // Read-only external channel
	Debounce time.Duration

	changes chan Change // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a new watcher for the given file.
func NewWatcher(file string) (*Watcher, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		File:     abs,
		Changes:  ch,
		Debounce: DefaultDebounce,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching the file's directory. On error the underlying
// watcher is closed and Stop must not be called.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		w.watcher.Close()
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var (
		pending  bool
		lastKind ChangeKind
		lastSeen time.Time
	)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.emit(lastKind)
				}
				return
			}

			if filepath.Clean(event.Name) != w.File {
				continue
			}

			switch {
			case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
				lastKind = ChangeModified
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				lastKind = ChangeRemoved
			default:
				continue
			}
			pending = true
			lastSeen = time.Now()

		case <-ticker.C:
			if pending && time.Since(lastSeen) >= debounce {
				w.emit(lastKind)
				pending = false
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

// emit drops the change when the consumer is far behind; a rerun is
// already queued in that case.
func (w *Watcher) emit(kind ChangeKind) {
	select {
	case w.changes <- Change{Kind: kind, File: w.File}:
	default:
	}
}
