package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/state"
	"github.com/unkn0wn-root/netmon/internal/theme"
	"github.com/unkn0wn-root/netmon/internal/waterfall"
)

// pxPerCell converts between the pixel units of the waterfall state and
// terminal cells.
const pxPerCell = 8

const (
	glyphBox    = '█'
	glyphMarker = '│'
)

type paintKind int

const (
	paintEmpty paintKind = iota
	paintBox
	paintDOM
	paintLoad
	paintLabel
)

type paint struct {
	kind  paintKind
	phase waterfall.Phase
	r     rune
}

// barCells lays out the waterfall cell of one row: lifecycle markers first,
// then the timing boxes over them and the total time label after the last box.
func barCells(d *request.Data, st state.State, scale float64, width int) []paint {
	if width <= 0 {
		return nil
	}
	cells := make([]paint, width)
	for i := range cells {
		cells[i] = paint{r: ' '}
	}
	markCell(cells, st.FirstDocumentDOMContentLoadedTimestamp, st.FirstRequestStartedMillis, scale, paintDOM)
	markCell(cells, st.FirstDocumentLoadTimestamp, st.FirstRequestStartedMillis, scale, paintLoad)

	bar := waterfall.BarFor(d)
	pos := bar.Offset * scale
	end := int(pos / pxPerCell)
	for _, box := range bar.Boxes {
		next := pos + box.Millis*scale
		from := int(pos / pxPerCell)
		to := max(from+1, int(math.Ceil(next/pxPerCell)))
		for c := max(from, 0); c < to && c < width; c++ {
			cells[c] = paint{kind: paintBox, phase: box.Phase, r: glyphBox}
		}
		end = max(end, to)
		pos = next
	}

	if bar.Total != "" {
		label := []rune(bar.Total)
		start := end
		if len(bar.Boxes) > 0 {
			start++
		}
		if start >= 0 && start+len(label) <= width {
			for i, r := range label {
				cells[start+i] = paint{kind: paintLabel, r: r}
			}
		}
	}
	return cells
}

func markCell(cells []paint, t, first, scale float64, kind paintKind) {
	x := waterfall.MarkerOffset(t, first, scale)
	if x < 0 {
		return
	}
	c := x / pxPerCell
	if c < len(cells) {
		cells[c] = paint{kind: kind, r: glyphMarker}
	}
}

func renderCells(cells []paint, th *theme.Theme, styled bool) string {
	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i + 1
		for j < len(cells) && cells[j].kind == cells[i].kind && cells[j].phase == cells[i].phase {
			j++
		}
		var run strings.Builder
		for _, p := range cells[i:j] {
			run.WriteRune(p.r)
		}
		if styled {
			b.WriteString(paintStyle(th, cells[i]).Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		i = j
	}
	return b.String()
}

func paintStyle(th *theme.Theme, p paint) lipgloss.Style {
	switch p.kind {
	case paintBox:
		return lipgloss.NewStyle().Foreground(phaseColor(th, p.phase))
	case paintDOM:
		return th.MarkerDOM
	case paintLoad:
		return th.MarkerLoad
	case paintLabel:
		return th.RowMeta
	default:
		return lipgloss.NewStyle()
	}
}

func phaseColor(th *theme.Theme, phase waterfall.Phase) lipgloss.Color {
	switch phase {
	case waterfall.PhaseBlocked:
		return th.PhaseColors.Blocked
	case waterfall.PhaseDNS:
		return th.PhaseColors.DNS
	case waterfall.PhaseConnect:
		return th.PhaseColors.Connect
	case waterfall.PhaseSend:
		return th.PhaseColors.Send
	case waterfall.PhaseWait:
		return th.PhaseColors.Wait
	default:
		return th.PhaseColors.Receive
	}
}

// divisionLabels places the header tick labels of a waterfall that is
// widthPx pixels wide into width cells, skipping labels that would collide.
func divisionLabels(widthPx int, scale float64, width int) string {
	if width <= 0 {
		return ""
	}
	line := []rune(strings.Repeat(" ", width))
	next := 0
	for _, d := range waterfall.Divisions(widthPx, scale) {
		cell := d.Offset / pxPerCell
		label := []rune(d.Label)
		if cell < next || cell+len(label) > width {
			continue
		}
		copy(line[cell:], label)
		next = cell + len(label) + 1
	}
	return string(line)
}
