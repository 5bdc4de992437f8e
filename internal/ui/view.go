package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/netmon/internal/actions"
	"github.com/unkn0wn-root/netmon/internal/filters"
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/selectors"
	"github.com/unkn0wn-root/netmon/internal/sorters"
	"github.com/unkn0wn-root/netmon/internal/state"
	"github.com/unkn0wn-root/netmon/internal/theme"
	"github.com/unkn0wn-root/netmon/internal/util"
)

const (
	sortAscending  = "▲"
	sortDescending = "▼"
	brand          = "netmon"
)

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	th := &m.theme
	displayed := m.store.Memo().Displayed(m.st)

	tw := m.tableWidth()
	cols := layoutColumns(tw)
	table := tableView{theme: th, st: m.st, cols: cols, styled: true}
	rows := m.listHeight()

	lines := make([]string, 0, rows+1)
	lines = append(lines, padLine(table.header(), tw))
	end := min(m.offset+rows, len(displayed))
	for _, rec := range displayed[m.offset:end] {
		lines = append(lines, padLine(table.row(rec, rec.ID == m.st.SelectedItem), tw))
	}
	if len(displayed) == 0 {
		lines = append(lines, padLine(th.RowMeta.Render(m.emptyMessage()), tw))
	}
	for len(lines) < rows+1 {
		lines = append(lines, strings.Repeat(" ", tw))
	}
	body := strings.Join(lines, "\n")

	if dw := m.detailsWidth(); dw > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.detailsView(dw, rows+1))
	}

	parts := []string{m.toolbarView(), body}
	if m.showHelp {
		parts = append(parts, m.help.View(m.keys))
	}
	parts = append(parts, m.statusView())
	return strings.Join(parts, "\n")
}

func (m Model) emptyMessage() string {
	if len(m.st.Requests) == 0 {
		return "Waiting for network activity"
	}
	return "No requests match the active filters"
}

func (m Model) toolbarView() string {
	th := &m.theme
	parts := []string{th.HeaderBrand.Render(brand)}
	for i, tag := range filters.Categories() {
		style := th.FilterButton
		if slices.Contains(m.st.Filter.Enabled, tag) {
			style = th.FilterActive
		}
		if i == m.filterCursor {
			style = style.Inherit(th.FilterCursor)
		}
		parts = append(parts, style.Render(tag))
	}
	switch {
	case m.editing:
		parts = append(parts, m.freetext.View())
	case m.st.Filter.Text != "":
		parts = append(parts, th.FreetextPrompt.Render("/")+th.HeaderValue.Render(m.st.Filter.Text))
	}
	if m.queue != nil && m.queue.Lazy() {
		parts = append(parts, th.RowMeta.Render("lazy"))
	}
	return padLine(strings.Join(parts, " "), m.width)
}

func (m Model) statusView() string {
	th := &m.theme
	sum := m.store.Memo().Summary(m.st)
	left := th.StatusBarValue.Render(util.SummaryLabel(sum.Count, sum.Bytes, sum.Millis))
	if m.pendingChord != "" {
		left += " " + th.StatusBarKey.Render(m.pendingChord+"…")
	}
	if m.status.text != "" {
		style := th.Notification
		switch m.status.level {
		case statusError:
			style = th.Error
		case statusSuccess:
			style = th.Success
		case statusWarn:
			style = th.StatusBarKey
		}
		left += "  " + style.Render(m.status.text)
	}
	return th.StatusBar.Render(padLine(left, max(m.width-2, 0)))
}

func (m Model) detailsView(width, height int) string {
	th := &m.theme
	inner := max(width-2, 1)
	var lines []string
	if rec, ok := m.st.Selected(); ok {
		lines = detailsLines(th, rec, true)
	} else {
		lines = []string{th.RowMeta.Render("Select a request")}
	}
	rows := max(height-2, 1)
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for i := range lines {
		lines[i] = padLine(lines[i], inner)
	}
	for len(lines) < rows {
		lines = append(lines, strings.Repeat(" ", inner))
	}
	return th.DetailsBorder.Render(strings.Join(lines, "\n"))
}

// tableView renders the request list for one state snapshot.
type tableView struct {
	theme  *theme.Theme
	st     state.State
	cols   []column
	styled bool
}

func (t tableView) header() string {
	scale := selectors.WaterfallScale(t.st)
	sortType := t.st.SortBy.Type
	if sortType == "" {
		sortType = sorters.Waterfall
	}
	parts := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		if c.id == sorters.Waterfall {
			parts = append(parts, t.timelineHeader(c, scale, sortType == sorters.Waterfall))
			continue
		}
		title := c.title
		style := t.theme.ColumnHeader
		if c.id == sortType {
			arrow := sortAscending
			if !t.st.SortBy.Ascending {
				arrow = sortDescending
			}
			title += " " + arrow
			style = t.theme.ColumnSorted
		}
		parts = append(parts, t.paint(style, fitCell(title, c.width, c.alignRight)))
	}
	return strings.Join(parts, strings.Repeat(" ", columnGap))
}

// timelineHeader shows the division labels, with the sort arrow in the last
// cell when the list is ordered by start time.
func (t tableView) timelineHeader(c column, scale float64, sorted bool) string {
	if !sorted || c.width < 3 {
		return t.paint(t.theme.Division, divisionLabels(c.width*pxPerCell, scale, c.width))
	}
	arrow := sortAscending
	if !t.st.SortBy.Ascending {
		arrow = sortDescending
	}
	labels := divisionLabels(c.width*pxPerCell, scale, c.width-2)
	return t.paint(t.theme.Division, labels) + " " + t.paint(t.theme.ColumnSorted, arrow)
}

func (t tableView) row(rec request.Record, selected bool) string {
	scale := selectors.WaterfallScale(t.st)
	d := &rec.Data
	styled := t.styled && !selected
	parts := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		if c.id == sorters.Waterfall {
			parts = append(parts, renderCells(barCells(d, t.st, scale, c.width), t.theme, styled))
			continue
		}
		text := fitCell(cellText(c.id, d), c.width, c.alignRight)
		if styled {
			text = cellStyle(t.theme, c.id, d).Render(text)
		}
		parts = append(parts, text)
	}
	line := strings.Join(parts, strings.Repeat(" ", columnGap))
	if selected && t.styled {
		return t.theme.RowSelected.Render(line)
	}
	return line
}

func (t tableView) paint(style lipgloss.Style, text string) string {
	if !t.styled {
		return text
	}
	return style.Render(text)
}

// RenderTable prints the displayed requests of st as a table width cells
// wide, followed by the summary line. It backs the non-interactive dump.
func RenderTable(st state.State, width int, styled bool) string {
	th := theme.DefaultTheme()
	cols := layoutColumns(width)
	if wf, ok := waterfallColumn(cols); ok {
		st = state.Reduce(st, actions.ResizeWaterfall(wf.width*pxPerCell))
	}
	t := tableView{theme: &th, st: st, cols: cols, styled: styled}
	displayed := selectors.Displayed(st)

	var b strings.Builder
	b.WriteString(strings.TrimRight(t.header(), " "))
	b.WriteByte('\n')
	for _, rec := range displayed {
		b.WriteString(strings.TrimRight(t.row(rec, false), " "))
		b.WriteByte('\n')
	}
	sum := selectors.Summarize(displayed)
	b.WriteString(util.SummaryLabel(sum.Count, sum.Bytes, sum.Millis))
	b.WriteByte('\n')
	return b.String()
}

// RenderDetails prints the details of one record without styling.
func RenderDetails(rec request.Record) string {
	th := theme.DefaultTheme()
	return strings.Join(detailsLines(&th, rec, false), "\n") + "\n"
}
