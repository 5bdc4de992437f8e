package actions

import (
	"math"

	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/selectors"
	"github.com/unkn0wn-root/netmon/internal/sorters"
	"github.com/unkn0wn-root/netmon/internal/state"
)

// Thunk is an action that reads the current state before dispatching.
type Thunk func(dispatch func(state.Action), getState func() state.State)

func Add(id string, data request.Data) state.Action {
	return state.AddRequest{ID: id, Data: data}
}

func Update(id string, data request.Data) state.Action {
	return state.UpdateRequest{ID: id, Data: data}
}

func Clone(id string) state.Action { return state.CloneRequest{ID: id} }

func RemoveSelectedCustom() state.Action { return state.RemoveSelectedCustomRequest{} }

func Clear() state.Action { return state.ClearRequests{} }

// AddTimingMarker takes the marker time in microseconds since the epoch.
func AddTimingMarker(name string, unixTimeMicros float64) state.Action {
	return state.AddTimingMarker{Name: name, UnixTime: unixTimeMicros}
}

func SortBy(column sorters.Column) state.Action { return state.SortByColumn{Column: column} }

func FilterOn(tag string) state.Action { return state.FilterOn{Tag: tag} }

func FilterOnlyOn(tag string) state.Action { return state.FilterOnlyOn{Tag: tag} }

func FilterFreetext(text string) state.Action { return state.FilterFreetext{Text: text} }

func Preselect(id string) state.Action { return state.PreselectItem{ID: id} }

func Select(id string) state.Action { return state.SelectItem{ID: id} }

func ResizeWaterfall(width int) state.Action { return state.ResizeWaterfall{Width: width} }

// Sentinel deltas for SelectDelta.
const (
	First    = math.MinInt
	PageUp   = math.MinInt + 1
	PageDown = math.MaxInt - 1
	Last     = math.MaxInt
)

// pageRatio is the number of pages the displayed list is split into for
// PageUp and PageDown.
const pageRatio = 5

// SelectDelta moves the selection within the displayed list by delta rows.
// An empty list clears the selection.
func SelectDelta(delta int) Thunk {
	return func(dispatch func(state.Action), getState func() state.State) {
		s := getState()
		displayed := selectors.Displayed(s)
		dispatch(Select(deltaTarget(displayed, s.SelectedItem, delta)))
	}
}

// SelectDeltaIn is SelectDelta against an already derived displayed list.
func SelectDeltaIn(displayed []request.Record, selected string, delta int) state.Action {
	return Select(deltaTarget(displayed, selected, delta))
}

func deltaTarget(displayed []request.Record, selected string, delta int) string {
	count := len(displayed)
	if count == 0 {
		return ""
	}

	current := -1
	if selected != "" {
		for i, r := range displayed {
			if r.ID == selected {
				current = i
				break
			}
		}
	}

	page := (count + pageRatio - 1) / pageRatio
	var next int
	switch delta {
	case First:
		next = 0
	case Last:
		next = count - 1
	case PageUp:
		next = current - page
	case PageDown:
		next = current + page
	default:
		next = current + min(max(delta, -count), count)
	}
	next = min(max(next, 0), count-1)
	return displayed[next].ID
}
