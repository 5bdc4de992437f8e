package selectors

import (
	"cmp"
	"math"
	"slices"

	"github.com/unkn0wn-root/netmon/internal/filters"
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/sorters"
	"github.com/unkn0wn-root/netmon/internal/state"
)

// Epsilon is the smallest waterfall scale, in pixels per millisecond.
const Epsilon = 0.001

type Summary struct {
	Count  int
	Bytes  int64
	Millis float64
}

// FilterFunc combines the enabled categories (any may match) with the free
// text matcher (must match).
func FilterFunc(s state.State) func(request.Record) bool {
	category := filters.AnyOf(s.Filter.Enabled)
	text := s.Filter.Text
	return func(r request.Record) bool {
		return category(&r.Data) && filters.FreetextMatch(&r.Data, text)
	}
}

type lineage struct {
	root  int
	depth int
}

// Comparator orders records of s for display. Records are compared through
// their clone root, so a clone never separates from the record it was made
// from. Within one family members follow clone depth, and that placement
// does not flip with the sort direction. Ties fall back to canonical order.
func Comparator(s state.State) func(a, b request.Record) int {
	column, ok := sorters.Lookup(s.SortBy.Type)
	if !ok {
		column, _ = sorters.Lookup(sorters.Waterfall)
	}
	dir := 1
	if !s.SortBy.Ascending {
		dir = -1
	}

	index := make(map[string]int, len(s.Requests))
	for i, r := range s.Requests {
		index[r.ID] = i
	}
	resolved := make(map[string]lineage, len(s.Requests))

	resolve := func(r request.Record) (lineage, *request.Data) {
		if l, ok := resolved[r.ID]; ok {
			return l, &s.Requests[l.root].Data
		}
		self, ok := index[r.ID]
		if !ok {
			return lineage{root: math.MaxInt}, &r.Data
		}
		l := lineage{root: self}
		for hops := 0; hops < len(s.Requests); hops++ {
			parent, ok := index[s.Requests[l.root].Data.ClonedFrom]
			if !ok {
				break
			}
			l.root = parent
			l.depth++
		}
		resolved[r.ID] = l
		return l, &s.Requests[l.root].Data
	}

	return func(a, b request.Record) int {
		la, da := resolve(a)
		lb, db := resolve(b)
		if la.root == lb.root {
			if c := cmp.Compare(la.depth, lb.depth); c != 0 {
				return c
			}
			return cmp.Compare(index[a.ID], index[b.ID])
		}
		if c := column(da, db); c != 0 {
			return dir * c
		}
		return cmp.Compare(la.root, lb.root)
	}
}

// Sorted returns all requests in display order without filtering. The
// canonical order in s is left as is.
func Sorted(s state.State) []request.Record {
	out := slices.Clone(s.Requests)
	slices.SortStableFunc(out, Comparator(s))
	return out
}

func Displayed(s state.State) []request.Record {
	keep := FilterFunc(s)
	out := make([]request.Record, 0, len(s.Requests))
	for _, r := range s.Requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, Comparator(s))
	return out
}

func DisplayedSummary(s state.State) Summary {
	return Summarize(Displayed(s))
}

// Summarize totals content sizes and measures the span from the earliest
// start to the latest end. Records without a start time add to count and
// bytes but not to the span; a record without an end counts as ending when
// it started.
func Summarize(records []request.Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}
	sum := Summary{Count: len(records)}
	oldest, newest := math.Inf(1), math.Inf(-1)
	for i := range records {
		d := &records[i].Data
		if d.ContentSize != nil {
			sum.Bytes += *d.ContentSize
		}
		if d.StartedMillis == nil {
			continue
		}
		oldest = min(oldest, *d.StartedMillis)
		end := *d.StartedMillis
		if d.EndedMillis != nil {
			end = max(end, *d.EndedMillis)
		}
		newest = max(newest, end)
	}
	if !math.IsInf(oldest, 1) {
		sum.Millis = newest - oldest
	}
	return sum
}

func ByID(s state.State, id string) (request.Record, bool) {
	return s.ByID(id)
}

func IndexByID(s state.State, id string) int {
	return s.IndexOf(id)
}

func Selected(s state.State) (request.Record, bool) {
	return s.Selected()
}

// SelectedIndex is the canonical position of the selection, or -1.
func SelectedIndex(s state.State) int {
	return s.IndexOf(s.SelectedItem)
}

func ActiveFilters(s state.State) []string {
	return slices.Clone(s.Filter.Enabled)
}

// WaterfallScale maps milliseconds to pixels, clamped into [Epsilon, 1].
func WaterfallScale(s state.State) float64 {
	span := s.LastRequestEndedMillis - s.FirstRequestStartedMillis
	scale := float64(s.WaterfallWidth) / span
	if math.IsNaN(scale) {
		return Epsilon
	}
	return min(max(scale, Epsilon), 1)
}
