package state

import (
	"slices"

	"github.com/unkn0wn-root/netmon/internal/filters"
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/sorters"
	"github.com/unkn0wn-root/netmon/internal/util"
)

const defaultContentMimeType = "text/plain"

// Updatable lists the fields an UpdateRequest may write. Anything else in
// an update is dropped.
var Updatable = request.NewFieldSet(
	request.FieldMethod,
	request.FieldURL,
	request.FieldRemotePort,
	request.FieldRemoteAddress,
	request.FieldStatus,
	request.FieldStatusText,
	request.FieldHTTPVersion,
	request.FieldSecurityState,
	request.FieldSecurityInfo,
	request.FieldMimeType,
	request.FieldContentSize,
	request.FieldTransferredSize,
	request.FieldTotalTime,
	request.FieldEventTimings,
	request.FieldHeadersSize,
	request.FieldRequestHeaders,
	request.FieldRequestHeadersFromUploadStream,
	request.FieldRequestCookies,
	request.FieldRequestPostData,
	request.FieldResponseHeaders,
	request.FieldResponseCookies,
	request.FieldResponseContent,
	request.FieldResponseContentDataURI,
)

// Reduce returns the state that results from applying a to s.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case AddRequest:
		return addRequest(s, act)
	case UpdateRequest:
		return updateRequest(s, act)
	case CloneRequest:
		return cloneRequest(s, act)
	case RemoveSelectedCustomRequest:
		return removeSelectedCustom(s)
	case ClearRequests:
		return clearRequests(s)
	case AddTimingMarker:
		return addTimingMarker(s, act)
	case SortByColumn:
		return sortBy(s, act)
	case FilterOn:
		return filterOn(s, act)
	case FilterOnlyOn:
		if !filters.Known(act.Tag) {
			return s
		}
		s.Filter = Filter{Enabled: []string{act.Tag}, Text: s.Filter.Text}
		s.rev.Filter = nextRevision()
		return s
	case FilterFreetext:
		s.Filter = Filter{Enabled: s.Filter.Enabled, Text: act.Text}
		s.rev.Filter = nextRevision()
		return s
	case PreselectItem:
		s.PreselectedItem = act.ID
		return s
	case SelectItem:
		s.SelectedItem = act.ID
		return s
	case ResizeWaterfall:
		s.WaterfallWidth = act.Width - WaterfallSafeBounds
		return s
	default:
		return s
	}
}

func addRequest(s State, act AddRequest) State {
	if act.ID == "" || act.Data.StartedMillis == nil || s.IndexOf(act.ID) >= 0 {
		return s
	}
	started := *act.Data.StartedMillis

	if s.FirstRequestStartedMillis == Unset {
		s.FirstRequestStartedMillis = started
	}
	if started > s.LastRequestEndedMillis {
		s.LastRequestEndedMillis = started
	}

	data := act.Data
	data.StartedDeltaMillis = request.Ptr(started - s.FirstRequestStartedMillis)

	requests := make([]request.Record, len(s.Requests), len(s.Requests)+1)
	copy(requests, s.Requests)
	s.Requests = append(requests, request.Record{ID: act.ID, Data: data})
	s.rev.Requests = nextRevision()

	if s.PreselectedItem != "" {
		s.SelectedItem = s.PreselectedItem
		s.PreselectedItem = ""
	}
	return s
}

func updateRequest(s State, act UpdateRequest) State {
	idx := s.IndexOf(act.ID)
	if idx < 0 {
		return s
	}
	patch := act.Data
	if patch.Present()&Updatable == 0 {
		return s
	}

	data := s.Requests[idx].Data
	data.Assign(&patch, Updatable)

	if patch.ResponseContent != nil && data.MimeTypeOr() == "" {
		data.MimeType = request.Ptr(defaultContentMimeType)
	}
	if patch.TotalTime != nil {
		ended := data.Started() + *patch.TotalTime
		data.EndedMillis = &ended
		s.LastRequestEndedMillis = max(s.LastRequestEndedMillis, ended)
	}
	// Parsed upload headers arrive later from enrichment; until then the
	// record carries an empty list.
	if patch.RequestPostData != nil && patch.RequestHeadersFromUploadStream == nil {
		data.RequestHeadersFromUploadStream = &request.Headers{Headers: []request.Header{}}
	}

	requests := slices.Clone(s.Requests)
	requests[idx] = request.Record{ID: act.ID, Data: data}
	s.Requests = requests
	s.rev.Requests = nextRevision()
	return s
}

// A second clone of the same record selects the existing clone instead of
// inserting a duplicate id.
func cloneRequest(s State, act CloneRequest) State {
	idx := s.IndexOf(act.ID)
	if idx < 0 {
		return s
	}
	cloneID := CloneID(act.ID)
	if s.IndexOf(cloneID) >= 0 {
		s.SelectedItem = cloneID
		return s
	}

	orig := s.Requests[idx].Data
	clone := request.Record{
		ID: cloneID,
		Data: request.Data{
			Method:          orig.Method,
			URL:             orig.URL,
			RequestHeaders:  orig.RequestHeaders,
			RequestPostData: orig.RequestPostData,
			IsCustom:        true,
			ClonedFrom:      act.ID,
		},
	}

	s.Requests = slices.Insert(slices.Clone(s.Requests), idx+1, clone)
	s.rev.Requests = nextRevision()
	s.SelectedItem = cloneID
	return s
}

func removeSelectedCustom(s State) State {
	idx := s.IndexOf(s.SelectedItem)
	if idx < 0 || !s.Requests[idx].Data.IsCustom {
		return s
	}
	s.Requests = slices.Delete(slices.Clone(s.Requests), idx, idx+1)
	s.rev.Requests = nextRevision()
	s.SelectedItem = ""
	return s
}

func clearRequests(s State) State {
	s.Requests = nil
	s.rev.Requests = nextRevision()
	s.SelectedItem = ""
	s.PreselectedItem = ""
	s.FirstRequestStartedMillis = Unset
	s.LastRequestEndedMillis = Unset
	s.FirstDocumentDOMContentLoadedTimestamp = Unset
	s.FirstDocumentLoadTimestamp = Unset
	return s
}

func addTimingMarker(s State, act AddTimingMarker) State {
	switch act.Name {
	case MarkerDOMContentLoaded:
		if s.FirstDocumentDOMContentLoadedTimestamp == Unset {
			s.FirstDocumentDOMContentLoadedTimestamp = act.UnixTime / 1000
		}
	case MarkerLoad:
		if s.FirstDocumentLoadTimestamp == Unset {
			s.FirstDocumentLoadTimestamp = act.UnixTime / 1000
		}
	}
	return s
}

func sortBy(s State, act SortByColumn) State {
	if _, ok := sorters.Lookup(act.Column); !ok {
		return s
	}
	ascending := true
	if s.SortBy.Type == act.Column {
		ascending = !s.SortBy.Ascending
	}
	s.SortBy = Sort{Type: act.Column, Ascending: ascending}
	s.rev.Sort = nextRevision()
	return s
}

func filterOn(s State, act FilterOn) State {
	if !filters.Known(act.Tag) {
		return s
	}
	enabled := s.Filter.Enabled
	var next []string
	switch {
	case act.Tag == filters.All:
		next = []string{filters.All}
	case slices.Contains(enabled, act.Tag):
		next = util.WithoutString(enabled, act.Tag)
		if len(next) == 0 {
			next = []string{filters.All}
		}
	default:
		next = append(util.WithoutString(enabled, filters.All), act.Tag)
	}
	s.Filter = Filter{Enabled: next, Text: s.Filter.Text}
	s.rev.Filter = nextRevision()
	return s
}
