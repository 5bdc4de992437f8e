package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/unkn0wn-root/netmon/internal/watcher"
)

// Follow replays path and keeps reading events appended to it until ctx is
// cancelled. A truncated or recreated file is read again from the start; a
// trailing line without a newline waits for the rest of it.
func Follow(ctx context.Context, path string, sink Sink, interval time.Duration) error {
	w := watcher.New(watcher.Options{Interval: interval})
	w.Track(path)
	w.Start()
	defer w.Stop()

	t := &tail{path: path, sink: sink}
	defer t.close()
	if err := t.drain(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.Events():
			if !ok {
				return nil
			}
			switch evt.Kind {
			case watcher.EventMissing:
				t.close()
				continue
			case watcher.EventTruncated:
				t.close()
			}
			if err := t.drain(ctx); err != nil {
				return err
			}
		}
	}
}

type tail struct {
	path    string
	sink    Sink
	f       *os.File
	r       *bufio.Reader
	partial []byte
	line    int
}

func (t *tail) close() {
	if t.f != nil {
		_ = t.f.Close()
	}
	t.f = nil
	t.r = nil
	t.partial = nil
	t.line = 0
}

// drain handles every complete line available from the current offset.
func (t *tail) drain(ctx context.Context) error {
	if t.f == nil {
		f, err := os.Open(t.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("open events: %w", err)
		}
		t.f = f
		t.r = bufio.NewReader(f)
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		chunk, err := t.r.ReadBytes('\n')
		t.partial = append(t.partial, chunk...)
		if len(t.partial) > maxEventSize {
			return fmt.Errorf("line %d: %w", t.line+1, bufio.ErrTooLong)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read events: %w", err)
		}
		t.line++
		raw := bytes.TrimSpace(t.partial)
		t.partial = t.partial[:0]
		if len(raw) == 0 {
			continue
		}
		if err := handle(ctx, raw, t.sink); err != nil {
			return fmt.Errorf("line %d: %w", t.line, err)
		}
	}
}
