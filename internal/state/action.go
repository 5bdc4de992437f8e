package state

import (
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/sorters"
)

// Action is an intent consumed by Reduce. Kinds the reducer does not know
// leave the state unchanged.
type Action interface {
	Kind() string
}

type AddRequest struct {
	ID   string
	Data request.Data
}

type UpdateRequest struct {
	ID   string
	Data request.Data
}

type CloneRequest struct {
	ID string
}

type RemoveSelectedCustomRequest struct{}

type ClearRequests struct{}

// AddTimingMarker records a page lifecycle marker. UnixTime is in microseconds.
type AddTimingMarker struct {
	Name     string
	UnixTime float64
}

type SortByColumn struct {
	Column sorters.Column
}

type FilterOn struct {
	Tag string
}

type FilterOnlyOn struct {
	Tag string
}

type FilterFreetext struct {
	Text string
}

type PreselectItem struct {
	ID string
}

// SelectItem sets the selection; an empty ID clears it.
type SelectItem struct {
	ID string
}

type ResizeWaterfall struct {
	Width int
}

func (AddRequest) Kind() string                  { return "add_request" }
func (UpdateRequest) Kind() string               { return "update_request" }
func (CloneRequest) Kind() string                { return "clone_request" }
func (RemoveSelectedCustomRequest) Kind() string { return "remove_selected_custom_request" }
func (ClearRequests) Kind() string               { return "clear_requests" }
func (AddTimingMarker) Kind() string             { return "add_timing_marker" }
func (SortByColumn) Kind() string                { return "sort_by" }
func (FilterOn) Kind() string                    { return "filter_on" }
func (FilterOnlyOn) Kind() string                { return "filter_only_on" }
func (FilterFreetext) Kind() string              { return "filter_freetext" }
func (PreselectItem) Kind() string               { return "preselect_item" }
func (SelectItem) Kind() string                  { return "select_item" }
func (ResizeWaterfall) Kind() string             { return "resize_waterfall" }
