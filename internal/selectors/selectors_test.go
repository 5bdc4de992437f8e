package selectors

import (
	"math"
	"testing"

	"github.com/unkn0wn-root/netmon/internal/filters"
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/sorters"
	"github.com/unkn0wn-root/netmon/internal/state"
)

type entry struct {
	id      string
	started float64
	total   float64
	size    int64
	status  string
	mime    string
	url     string
}

func build(entries ...entry) state.State {
	s := state.New()
	for _, e := range entries {
		s = state.Reduce(s, state.AddRequest{ID: e.id, Data: request.Data{
			StartedMillis: request.Ptr(e.started),
			Method:        request.Ptr("GET"),
			URL:           request.Ptr(e.url),
		}})
		patch := request.Data{
			Status:      request.Ptr(e.status),
			ContentSize: request.Ptr(e.size),
			TotalTime:   request.Ptr(e.total),
		}
		if e.mime != "" {
			patch.MimeType = request.Ptr(e.mime)
		}
		s = state.Reduce(s, state.UpdateRequest{ID: e.id, Data: patch})
	}
	return s
}

func sample() state.State {
	return build(
		entry{"a", 0, 40, 500, "200", "text/html", "https://site.test/index.html"},
		entry{"b", 10, 15, 2048, "404", "text/css", "https://cdn.test/style.css"},
		entry{"c", 20, 100, 100, "301", "application/javascript", "https://cdn.test/app.js"},
		entry{"d", 30, 5, 9000, "500", "image/png", "https://img.test/logo.png"},
	)
}

func ids(records []request.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func positions(records []request.Record) map[string]int {
	out := make(map[string]int, len(records))
	for i, r := range records {
		out[r.ID] = i
	}
	return out
}

func TestClonesStayAdjacentUnderEverySort(t *testing.T) {
	base := sample()
	base = state.Reduce(base, state.CloneRequest{ID: "b"})
	base = state.Reduce(base, state.CloneRequest{ID: "d"})
	base = state.Reduce(base, state.CloneRequest{ID: "d-clone"})

	pairs := [][2]string{{"b", "b-clone"}, {"d", "d-clone"}, {"d-clone", "d-clone-clone"}}
	for _, column := range sorters.Columns() {
		for _, descending := range []bool{false, true} {
			s := state.Reduce(base, state.SortByColumn{Column: column})
			if descending {
				s = state.Reduce(s, state.SortByColumn{Column: column})
			}
			got := positions(Displayed(s))
			for _, p := range pairs {
				if got[p[1]] != got[p[0]]+1 {
					t.Fatalf("%s desc=%v: expected %s right after %s, got %v",
						column, descending, p[1], p[0], ids(Displayed(s)))
				}
			}
		}
	}
}

func TestSortedUsesColumnAndDirection(t *testing.T) {
	s := state.Reduce(sample(), state.SortByColumn{Column: sorters.Size})
	if got := ids(Sorted(s)); !equal(got, []string{"c", "a", "b", "d"}) {
		t.Fatalf("expected size ascending, got %v", got)
	}
	s = state.Reduce(s, state.SortByColumn{Column: sorters.Size})
	if got := ids(Sorted(s)); !equal(got, []string{"d", "b", "a", "c"}) {
		t.Fatalf("expected size descending, got %v", got)
	}
	if got := ids(s.Requests); !equal(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("canonical order must not change, got %v", got)
	}
}

func TestTiesKeepCanonicalOrderInBothDirections(t *testing.T) {
	s := build(
		entry{"x", 0, 1, 1, "200", "", "https://t/x"},
		entry{"y", 1, 1, 1, "200", "", "https://t/y"},
		entry{"z", 2, 1, 1, "200", "", "https://t/z"},
	)
	s = state.Reduce(s, state.SortByColumn{Column: sorters.Method})
	if got := ids(Sorted(s)); !equal(got, []string{"x", "y", "z"}) {
		t.Fatalf("expected waterfall tie-break, got %v", got)
	}
	s = state.Reduce(s, state.SortByColumn{Column: sorters.Method})
	if got := ids(Sorted(s)); !equal(got, []string{"z", "y", "x"}) {
		t.Fatalf("expected reversed tie-break through waterfall, got %v", got)
	}
}

func TestDisplayedFiltersThenSorts(t *testing.T) {
	s := state.Reduce(sample(), state.FilterOn{Tag: filters.CSS})
	s = state.Reduce(s, state.FilterOn{Tag: filters.JS})
	if got := ids(Displayed(s)); !equal(got, []string{"b", "c"}) {
		t.Fatalf("expected css+js, got %v", got)
	}
	s = state.Reduce(s, state.FilterFreetext{Text: "-style"})
	if got := ids(Displayed(s)); !equal(got, []string{"c"}) {
		t.Fatalf("expected negated text to drop b, got %v", got)
	}
	if got := ActiveFilters(s); !equal(got, []string{filters.CSS, filters.JS}) {
		t.Fatalf("unexpected active filters %v", got)
	}
}

func TestDisplayedSummary(t *testing.T) {
	sum := DisplayedSummary(sample())
	if sum.Count != 4 || sum.Bytes != 500+2048+100+9000 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.Millis != 120 {
		t.Fatalf("expected span 120 (c ends last), got %v", sum.Millis)
	}

	cleared := state.Reduce(sample(), state.ClearRequests{})
	if got := DisplayedSummary(cleared); got != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", got)
	}
	noMedia := state.Reduce(sample(), state.FilterOnlyOn{Tag: filters.Media})
	if got := DisplayedSummary(noMedia); got != (Summary{}) {
		t.Fatalf("expected zero summary for empty view, got %+v", got)
	}
}

func TestSummarizeSkipsMissingStarts(t *testing.T) {
	records := []request.Record{
		{ID: "a", Data: request.Data{StartedMillis: request.Ptr(100.0)}},
		{ID: "a-clone", Data: request.Data{IsCustom: true, ContentSize: request.Ptr(int64(3))}},
		{ID: "b", Data: request.Data{StartedMillis: request.Ptr(150.0), EndedMillis: request.Ptr(400.0)}},
	}
	sum := Summarize(records)
	if sum.Count != 3 || sum.Bytes != 3 || sum.Millis != 300 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestLookupsAndSelection(t *testing.T) {
	s := sample()
	if IndexByID(s, "c") != 2 || IndexByID(s, "zz") != -1 {
		t.Fatalf("unexpected index lookups")
	}
	if r, ok := ByID(s, "d"); !ok || r.Data.MimeTypeOr() != "image/png" {
		t.Fatalf("unexpected ByID result")
	}
	if _, ok := Selected(s); ok || SelectedIndex(s) != -1 {
		t.Fatalf("expected no selection")
	}
	s = state.Reduce(s, state.SelectItem{ID: "b"})
	if r, ok := Selected(s); !ok || r.ID != "b" || SelectedIndex(s) != 1 {
		t.Fatalf("expected b selected")
	}
	s = state.Reduce(s, state.SelectItem{ID: "gone"})
	if _, ok := Selected(s); ok || SelectedIndex(s) != -1 {
		t.Fatalf("dangling selection must read as none")
	}
}

func TestWaterfallScale(t *testing.T) {
	s := state.New()
	if got := WaterfallScale(s); got != 1 {
		t.Fatalf("expected 1 with no span, got %v", got)
	}
	s = sample()
	// width 300 over a 120ms span exceeds 1:1.
	if got := WaterfallScale(s); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	s = state.Reduce(s, state.UpdateRequest{ID: "a", Data: request.Data{TotalTime: request.Ptr(600.0)}})
	if got := WaterfallScale(s); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	s = state.Reduce(s, state.ResizeWaterfall{Width: 0})
	if got := WaterfallScale(s); got != Epsilon {
		t.Fatalf("expected epsilon floor, got %v", got)
	}
	s = state.Reduce(state.New(), state.ResizeWaterfall{Width: state.WaterfallSafeBounds})
	if got := WaterfallScale(s); got != Epsilon || math.IsNaN(got) {
		t.Fatalf("expected epsilon for 0/0, got %v", got)
	}
}

func TestMemoReusesUntilRevisionChanges(t *testing.T) {
	m := NewMemo()
	s := sample()

	first := m.Displayed(s)
	second := m.Displayed(s)
	if &first[0] != &second[0] {
		t.Fatalf("expected cached slice")
	}
	if got := m.Summary(s); got.Count != 4 {
		t.Fatalf("unexpected summary %+v", got)
	}
	hits, misses := m.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("expected 2 hits 1 miss, got %d/%d", hits, misses)
	}

	sorted := m.Sorted(s)
	filtered := state.Reduce(s, state.FilterOnlyOn{Tag: filters.Images})
	if &m.Sorted(filtered)[0] != &sorted[0] {
		t.Fatalf("filter change must not invalidate sorted list")
	}
	if got := ids(m.Displayed(filtered)); !equal(got, []string{"d"}) {
		t.Fatalf("expected images only after filter change, got %v", got)
	}

	updated := state.Reduce(filtered, state.UpdateRequest{ID: "a", Data: request.Data{MimeType: request.Ptr("image/gif")}})
	if got := ids(m.Displayed(updated)); !equal(got, []string{"a", "d"}) {
		t.Fatalf("expected request change to recompute, got %v", got)
	}

	// Hand-built states carry no revisions and always recompute.
	raw := state.State{Requests: s.Requests, Filter: state.Filter{Enabled: []string{filters.All}}, SortBy: state.Sort{Ascending: true}}
	if got := ids(m.Displayed(raw)); !equal(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("unexpected raw result %v", got)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
