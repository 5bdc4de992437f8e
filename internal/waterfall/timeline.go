package waterfall

import (
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/util"
)

const (
	HeaderTicksMultiple   = 5
	HeaderTicksSpacingMin = 60
	// firstDivisionBorder is taken off the first label for the column border.
	firstDivisionBorder = 2
)

// Division is one labelled tick of the waterfall header. Width is zero for
// the final division, which fills the rest of the column.
type Division struct {
	Offset int
	Width  int
	Millis float64
	Label  string
}

func Divisions(width int, scale float64) []Division {
	if width <= 0 || !(scale > 0) {
		return nil
	}
	scaledStep := scale * HeaderTicksMultiple
	for scaledStep < HeaderTicksSpacingMin {
		scaledStep *= 2
	}

	var out []Division
	for x := 0.0; x < float64(width); x += scaledStep {
		millis := x / scale
		w := int(x+scaledStep) - int(x)
		if x == 0 {
			w -= firstDivisionBorder
		}
		if x+scaledStep >= float64(width) {
			w = 0
		}
		out = append(out, Division{
			Offset: int(x),
			Width:  w,
			Millis: millis,
			Label:  util.FormatDivision(millis),
		})
	}
	return out
}

type Phase string

const (
	PhaseBlocked Phase = "blocked"
	PhaseDNS     Phase = "dns"
	PhaseConnect Phase = "connect"
	PhaseSend    Phase = "send"
	PhaseWait    Phase = "wait"
	PhaseReceive Phase = "receive"
)

var Phases = []Phase{PhaseBlocked, PhaseDNS, PhaseConnect, PhaseSend, PhaseWait, PhaseReceive}

// Box is one timing phase of a row, unscaled: one millisecond per pixel.
type Box struct {
	Phase  Phase
	Millis float64
}

// Bar is the waterfall cell of one record.
type Bar struct {
	// Offset is the distance from the first request, in milliseconds.
	Offset float64
	Boxes  []Box
	Total  string
}

// BarFor lays out the timing boxes of d. Cached and service worker
// responses have no network timings and get no boxes.
func BarFor(d *request.Data) Bar {
	bar := Bar{Offset: d.StartedDelta()}
	if d.Cached() || d.ServiceWorker() {
		return bar
	}
	if d.EventTimings != nil {
		tm := d.EventTimings.Timings
		values := [...]float64{tm.Blocked, tm.DNS, tm.Connect, tm.Send, tm.Wait, tm.Receive}
		for i, v := range values {
			if v > 0 {
				bar.Boxes = append(bar.Boxes, Box{Phase: Phases[i], Millis: v})
			}
		}
	}
	if d.TotalTime != nil {
		bar.Total = util.FormatTotalMillis(*d.TotalTime)
	}
	return bar
}

// Span is the summed width of every box in milliseconds.
func (b Bar) Span() float64 {
	var total float64
	for _, box := range b.Boxes {
		total += box.Millis
	}
	return total
}
