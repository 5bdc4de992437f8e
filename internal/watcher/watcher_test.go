package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func appendFile(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func next(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case evt := <-w.Events():
		return evt
	default:
		t.Fatal("expected event")
		return Event{}
	}
}

func expectNone(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case evt := <-w.Events():
		t.Fatalf("unexpected event %+v", evt)
	default:
	}
}

func TestScanReportsGrowthTruncationAndRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	appendFile(t, path, "one\n")

	w := New(Options{})
	defer w.Stop()
	w.Track(path)

	w.Scan()
	expectNone(t, w)

	appendFile(t, path, "two\n")
	w.Scan()
	if evt := next(t, w); evt.Kind != EventGrew || evt.Prev.Size != 4 || evt.Curr.Size != 8 {
		t.Fatalf("unexpected growth event %+v", evt)
	}

	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	w.Scan()
	if evt := next(t, w); evt.Kind != EventTruncated {
		t.Fatalf("expected truncation, got %s", evt.Kind)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	w.Scan()
	if evt := next(t, w); evt.Kind != EventMissing {
		t.Fatalf("expected missing, got %s", evt.Kind)
	}
	w.Scan()
	expectNone(t, w)

	appendFile(t, path, "again\n")
	w.Scan()
	if evt := next(t, w); evt.Kind != EventTruncated {
		t.Fatalf("expected reappearing file to restart, got %s", evt.Kind)
	}
}

func TestForgetAndStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	appendFile(t, path, "one\n")

	w := New(Options{Interval: 5 * time.Millisecond})
	w.Track(path)
	w.Forget(path)
	w.Start()
	appendFile(t, path, "two\n")
	time.Sleep(20 * time.Millisecond)
	w.Stop()

	if _, ok := <-w.Events(); ok {
		t.Fatal("expected closed channel without events")
	}
	w.Stop()
}

func TestTrackIgnoresEmptyPath(t *testing.T) {
	w := New(Options{})
	defer w.Stop()
	w.Track("")
	w.Track(".")
	if n := len(w.snapshot()); n != 0 {
		t.Fatalf("expected no entries, got %d", n)
	}
}
