package selectors

import (
	"sync"

	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/state"
)

type memoKey struct {
	requests uint64
	filter   uint64
	sort     uint64
}

func keyOf(s state.State) (memoKey, bool) {
	rev := s.Revisions()
	k := memoKey{requests: rev.Requests, filter: rev.Filter, sort: rev.Sort}
	return k, k.requests != 0 && k.filter != 0 && k.sort != 0
}

// Memo caches the expensive derivations against state revisions. Returned
// slices are shared between callers and must not be modified. A Memo is
// safe for concurrent use.
type Memo struct {
	mu sync.Mutex

	sortedKey memoKey
	sorted    []request.Record

	displayedKey memoKey
	displayed    []request.Record
	summary      Summary

	hits, misses uint64
}

func NewMemo() *Memo { return &Memo{} }

func (m *Memo) Sorted(s state.State) []request.Record {
	key, ok := keyOf(s)
	if !ok {
		return Sorted(s)
	}
	// Filter revisions do not affect the sorted list.
	key.filter = 0

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sortedKey == key {
		m.hits++
		return m.sorted
	}
	m.misses++
	m.sorted = Sorted(s)
	m.sortedKey = key
	return m.sorted
}

func (m *Memo) Displayed(s state.State) []request.Record {
	records, _ := m.displayedAndSummary(s)
	return records
}

func (m *Memo) Summary(s state.State) Summary {
	_, sum := m.displayedAndSummary(s)
	return sum
}

func (m *Memo) displayedAndSummary(s state.State) ([]request.Record, Summary) {
	key, ok := keyOf(s)
	if !ok {
		records := Displayed(s)
		return records, Summarize(records)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.displayedKey == key {
		m.hits++
		return m.displayed, m.summary
	}
	m.misses++
	m.displayed = Displayed(s)
	m.summary = Summarize(m.displayed)
	m.displayedKey = key
	return m.displayed, m.summary
}

// Stats reports cache hits and misses since creation.
func (m *Memo) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}
