// Package source reads network events from a recorded log or a live feed and
// turns them into store actions.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/netmon/internal/actions"
	"github.com/unkn0wn-root/netmon/internal/observability"
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/store"
)

type Type string

const (
	TypeNetworkEvent       Type = "networkEvent"
	TypeNetworkEventUpdate Type = "networkEventUpdate"
	TypeTimingMarker       Type = "timingMarker"
	TypeLongString         Type = "longString"
)

var (
	ErrUnknownEvent = errors.New("unknown event type")
	ErrMissingID    = errors.New("event has no id")
)

// Event is one line of the feed. Which fields are set depends on Type:
// network events carry ID and Data, markers carry Name and Time in
// microseconds, long strings carry Ref and Text.
type Event struct {
	Type Type          `json:"type"`
	ID   string        `json:"id,omitempty"`
	Data *request.Data `json:"data,omitempty"`
	Name string        `json:"name,omitempty"`
	Time float64       `json:"time,omitempty"`
	Ref  string        `json:"ref,omitempty"`
	Text string        `json:"text,omitempty"`
}

func Decode(raw []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

type Sink interface {
	Handle(ctx context.Context, ev Event) error
}

type SinkFunc func(ctx context.Context, ev Event) error

func (f SinkFunc) Handle(ctx context.Context, ev Event) error { return f(ctx, ev) }

// StoreSink feeds events into a batching queue. Long strings go to Strings
// when it is set.
type StoreSink struct {
	Queue   *store.Queue
	Strings *StringTable
	Logger  *zerolog.Logger
	Metrics *observability.Metrics
}

func (s *StoreSink) Handle(_ context.Context, ev Event) error {
	s.Metrics.ObserveSourceEvent(string(ev.Type))
	switch ev.Type {
	case TypeNetworkEvent:
		id := ev.ID
		if id == "" {
			id = uuid.NewString()
		}
		return s.Queue.Add(id, dataOf(ev))
	case TypeNetworkEventUpdate:
		if ev.ID == "" {
			return fmt.Errorf("%s: %w", ev.Type, ErrMissingID)
		}
		return s.Queue.Update(ev.ID, dataOf(ev))
	case TypeTimingMarker:
		return s.Queue.Push(actions.AddTimingMarker(ev.Name, ev.Time))
	case TypeLongString:
		if s.Strings != nil {
			s.Strings.Put(ev.Ref, ev.Text)
		}
		return nil
	default:
		s.logger().Debug().Str("type", string(ev.Type)).Msg("skipping unknown event")
		return fmt.Errorf("%q: %w", ev.Type, ErrUnknownEvent)
	}
}

func (s *StoreSink) logger() *zerolog.Logger {
	if s.Logger == nil {
		return observability.Nop()
	}
	return s.Logger
}

func dataOf(ev Event) request.Data {
	if ev.Data == nil {
		return request.Data{}
	}
	return *ev.Data
}
