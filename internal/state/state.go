package state

import (
	"slices"
	"sync/atomic"

	"github.com/unkn0wn-root/netmon/internal/filters"
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/sorters"
)

const (
	// Unset marks a timestamp that has not been observed since the last clear.
	Unset = -1

	DefaultWaterfallWidth = 300
	// WaterfallSafeBounds is the inset subtracted from the column width on resize.
	WaterfallSafeBounds = 90

	MarkerDOMContentLoaded = "document::DOMContentLoaded"
	MarkerLoad             = "document::Load"

	cloneSuffix = "-clone"
)

type Filter struct {
	Enabled []string
	Text    string
}

// Sort is the active sort column. An empty Type sorts by waterfall.
type Sort struct {
	Type      sorters.Column
	Ascending bool
}

// Revisions identify slices of a State for cached derivations. Every
// reduction that replaces a slice stamps it with a process-unique value,
// so equal revisions imply identical content. Zero means unstamped.
type Revisions struct {
	Requests uint64
	Filter   uint64
	Sort     uint64
}

// State is an immutable snapshot; Reduce returns a new value and never
// writes through slices shared with its input.
type State struct {
	Requests []request.Record

	FirstRequestStartedMillis              float64
	LastRequestEndedMillis                 float64
	FirstDocumentDOMContentLoadedTimestamp float64
	FirstDocumentLoadTimestamp             float64

	// SelectedItem and PreselectedItem hold record ids, "" for none.
	SelectedItem    string
	PreselectedItem string

	Filter         Filter
	SortBy         Sort
	WaterfallWidth int

	rev Revisions
}

var revisionSeq atomic.Uint64

func nextRevision() uint64 { return revisionSeq.Add(1) }

func New() State {
	return State{
		FirstRequestStartedMillis:              Unset,
		LastRequestEndedMillis:                 Unset,
		FirstDocumentDOMContentLoadedTimestamp: Unset,
		FirstDocumentLoadTimestamp:             Unset,
		Filter:                                 Filter{Enabled: []string{filters.All}},
		SortBy:                                 Sort{Ascending: true},
		WaterfallWidth:                         DefaultWaterfallWidth,
		rev: Revisions{
			Requests: nextRevision(),
			Filter:   nextRevision(),
			Sort:     nextRevision(),
		},
	}
}

func (s State) Revisions() Revisions { return s.rev }

// IndexOf returns the position of id in Requests, or -1.
func (s State) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.Requests, func(r request.Record) bool { return r.ID == id })
}

func (s State) ByID(id string) (request.Record, bool) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return request.Record{}, false
	}
	return s.Requests[idx], true
}

// Selected resolves SelectedItem. A dangling id reads as no selection.
func (s State) Selected() (request.Record, bool) {
	return s.ByID(s.SelectedItem)
}

// CloneID is the id given to a clone of id.
func CloneID(id string) string { return id + cloneSuffix }
