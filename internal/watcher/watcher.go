// Package watcher polls files that other processes append to and reports
// growth, truncation and removal.
package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type EventKind int

const (
	EventGrew EventKind = iota
	EventTruncated
	EventMissing
)

func (k EventKind) String() string {
	switch k {
	case EventGrew:
		return "grew"
	case EventTruncated:
		return "truncated"
	case EventMissing:
		return "missing"
	default:
		return "unknown"
	}
}

type Stat struct {
	Mod  time.Time
	Size int64
}

type Event struct {
	Path string
	Kind EventKind
	Prev Stat
	Curr Stat
}

type Options struct {
	Interval time.Duration
	Buffer   int
}

type entry struct {
	path    string
	stat    Stat
	missing bool
}

type Watcher struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	out      chan Event
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
	started  bool
	closed   bool
}

const (
	defaultInterval = 250 * time.Millisecond
	defaultBuffer   = 16
)

func New(opts Options) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	buf := opts.Buffer
	if buf <= 0 {
		buf = defaultBuffer
	}
	return &Watcher{
		entries:  make(map[string]*entry),
		out:      make(chan Event, buf),
		interval: interval,
	}
}

// Events is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.out
}

func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started || w.closed {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.stop = make(chan struct{})
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				w.Scan()
			case <-w.stop:
				return
			}
		}
	}()
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.started && w.stop != nil {
		close(w.stop)
	}
	w.mu.Unlock()
	if w.started {
		w.wg.Wait()
	}
	close(w.out)
}

// Track starts watching path from its current size. A path that does not
// exist yet is tracked as missing and reported once it appears.
func (w *Watcher) Track(path string) {
	clean, ok := cleanPath(path)
	if !ok {
		return
	}
	e := &entry{path: clean}
	if info, err := os.Stat(clean); err == nil {
		e.stat = statOf(info)
	} else {
		e.missing = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.entries[clean] = e
}

func (w *Watcher) Forget(path string) {
	clean, ok := cleanPath(path)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entries, clean)
}

// Scan checks every tracked path once. Start calls it on each tick.
func (w *Watcher) Scan() {
	if w.isClosed() {
		return
	}
	for _, e := range w.snapshot() {
		if evt, ok := w.check(e); ok {
			w.emit(evt)
		}
	}
}

func (w *Watcher) snapshot() []entry {
	w.mu.RLock()
	defer w.mu.RUnlock()

	list := make([]entry, 0, len(w.entries))
	for _, e := range w.entries {
		list = append(list, *e)
	}
	return list
}

func (w *Watcher) check(e entry) (Event, bool) {
	info, err := os.Stat(e.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || e.missing {
			return Event{}, false
		}
		w.update(e.path, e.stat, true)
		return Event{Path: e.path, Kind: EventMissing, Prev: e.stat}, true
	}

	next := statOf(info)
	if !e.missing && next.Size == e.stat.Size && next.Mod.Equal(e.stat.Mod) {
		return Event{}, false
	}
	w.update(e.path, next, false)

	kind := EventGrew
	switch {
	case e.missing:
		// A file that reappears is new content from the start.
		kind = EventTruncated
	case next.Size < e.stat.Size:
		kind = EventTruncated
	case next.Size == e.stat.Size:
		// Rewritten in place.
		kind = EventTruncated
	}
	return Event{Path: e.path, Kind: kind, Prev: e.stat, Curr: next}, true
}

func (w *Watcher) update(path string, st Stat, missing bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.entries[path]; ok {
		e.stat = st
		e.missing = missing
	}
}

func (w *Watcher) emit(evt Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.out <- evt:
	default:
	}
}

func (w *Watcher) isClosed() bool {
	w.mu.RLock()
	closed := w.closed
	w.mu.RUnlock()
	return closed
}

func statOf(info fs.FileInfo) Stat {
	return Stat{Mod: info.ModTime(), Size: info.Size()}
}

func cleanPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	clean := filepath.Clean(path)
	if clean == "" || clean == "." {
		return "", false
	}
	return clean, true
}
