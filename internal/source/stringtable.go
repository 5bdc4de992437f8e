package source

import (
	"context"
	"sync"
)

// StringTable holds long string bodies announced by the feed. A Fetch for a
// ref that has not arrived yet waits for it.
type StringTable struct {
	mu      sync.Mutex
	texts   map[string]string
	waiters map[string]chan struct{}
}

func NewStringTable() *StringTable {
	return &StringTable{
		texts:   make(map[string]string),
		waiters: make(map[string]chan struct{}),
	}
}

func (t *StringTable) Put(ref, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.texts[ref] = text
	if ch, ok := t.waiters[ref]; ok {
		close(ch)
		delete(t.waiters, ref)
	}
}

func (t *StringTable) Fetch(ctx context.Context, ref string) (string, error) {
	t.mu.Lock()
	if text, ok := t.texts[ref]; ok {
		t.mu.Unlock()
		return text, nil
	}
	ch, ok := t.waiters[ref]
	if !ok {
		ch = make(chan struct{})
		t.waiters[ref] = ch
	}
	t.mu.Unlock()

	select {
	case <-ch:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.texts[ref], nil
}

func (t *StringTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.texts)
}
