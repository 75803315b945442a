package conn

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/voltdb/voltgo/internal/vlog"
)

// debounceWindow coalesces bursts of filesystem events (editors frequently
// write-rename-write) into a single reload, mirroring the teacher's
// fsnotify-based procedure watcher.
const debounceWindow = 200 * time.Millisecond

// endpointWatcher watches Settings.EndpointsFile and reports reload events
// on Updates. This core never dials the new endpoints itself — that is the
// out-of-scope pooling layer's job (spec.md §1); the watcher only re-reads
// the file and publishes the new list so such a layer can react.
type endpointWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *vlog.Logger

	Updates chan []string

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newEndpointWatcher(path string, logger *vlog.Logger) (*endpointWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	return &endpointWatcher{
		path:    path,
		watcher: w,
		logger:  logger,
		Updates: make(chan []string, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

func (w *endpointWatcher) start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.loop()
}

func (w *endpointWatcher) loop() {
	defer close(w.doneCh)

	var debounce *time.Timer
	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.System().Warn("endpoint file watch error", "error", err.Error())
		}
	}
}

func (w *endpointWatcher) reload() {
	endpoints, err := readEndpointsFile(w.path)
	if err != nil {
		w.logger.System().Warn("endpoint file reload failed", "path", w.path, "error", err.Error())
		return
	}
	select {
	case w.Updates <- endpoints:
	default:
		// a reload is already pending consumption; drop the stale one and
		// replace it so the reader always sees the latest list.
		select {
		case <-w.Updates:
		default:
		}
		w.Updates <- endpoints
	}
}

func (w *endpointWatcher) stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func readEndpointsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var endpoints []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		endpoints = append(endpoints, line)
	}
	return endpoints, sc.Err()
}
