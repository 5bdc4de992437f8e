package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/sorters"
	"github.com/unkn0wn-root/netmon/internal/theme"
	"github.com/unkn0wn-root/netmon/internal/util"
)

const (
	columnGap         = 1
	minFileWidth      = 12
	minWaterfallWidth = 8
)

type column struct {
	id         sorters.Column
	title      string
	width      int
	alignRight bool
}

var fixedColumns = map[sorters.Column]column{
	sorters.Status:      {id: sorters.Status, title: "Status", width: 6},
	sorters.Method:      {id: sorters.Method, title: "Method", width: 7},
	sorters.Domain:      {id: sorters.Domain, title: "Domain", width: 22},
	sorters.Cause:       {id: sorters.Cause, title: "Cause", width: 10},
	sorters.Type:        {id: sorters.Type, title: "Type", width: 6},
	sorters.Transferred: {id: sorters.Transferred, title: "Transferred", width: 11, alignRight: true},
	sorters.Size:        {id: sorters.Size, title: "Size", width: 9, alignRight: true},
}

// layoutColumns splits total cells between the columns. The file column
// takes two fifths of what the fixed columns leave and the waterfall gets
// the rest; a waterfall narrower than minWaterfallWidth is dropped.
func layoutColumns(total int) []column {
	all := sorters.Columns()
	fixed := columnGap * (len(all) - 1)
	for _, c := range fixedColumns {
		fixed += c.width
	}
	rest := max(total-fixed, 0)
	file := max(minFileWidth, rest*2/5)
	wf := rest - file
	if wf < minWaterfallWidth {
		wf = 0
		file = max(minFileWidth, rest)
	}

	out := make([]column, 0, len(all))
	for _, id := range all {
		switch id {
		case sorters.File:
			out = append(out, column{id: id, title: "File", width: file})
		case sorters.Waterfall:
			if wf > 0 {
				out = append(out, column{id: id, title: "Waterfall", width: wf})
			}
		default:
			out = append(out, fixedColumns[id])
		}
	}
	return out
}

func waterfallColumn(cols []column) (column, bool) {
	for _, c := range cols {
		if c.id == sorters.Waterfall {
			return c, true
		}
	}
	return column{}, false
}

func cellText(id sorters.Column, d *request.Data) string {
	switch id {
	case sorters.Status:
		return d.StatusOr()
	case sorters.Method:
		return d.MethodOr()
	case sorters.File:
		return util.ParseURLDetails(d.URLOr()).NameWithQuery
	case sorters.Domain:
		details := util.ParseURLDetails(d.URLOr())
		if details.IsLocal {
			return "⌂ " + details.HostPort
		}
		return details.HostPort
	case sorters.Cause:
		return d.CauseType()
	case sorters.Type:
		return util.ShortType(d.MimeTypeOr())
	case sorters.Transferred:
		switch {
		case d.Cached():
			return "cached"
		case d.ServiceWorker():
			return "service worker"
		case d.TransferredSize != nil:
			return util.FormatSize(*d.TransferredSize)
		}
		return ""
	case sorters.Size:
		if d.ContentSize != nil {
			return util.FormatSize(*d.ContentSize)
		}
		return ""
	default:
		return ""
	}
}

func cellStyle(th *theme.Theme, id sorters.Column, d *request.Data) lipgloss.Style {
	base := th.Row
	if d.IsCustom {
		base = th.RowCustom
	}
	switch id {
	case sorters.Status:
		if c, ok := statusColor(th, d.StatusOr()); ok {
			return base.Foreground(c)
		}
	case sorters.Method:
		return base.Foreground(th.MethodColors.Method(strings.ToUpper(d.MethodOr())))
	case sorters.Cause, sorters.Type, sorters.Transferred, sorters.Size:
		if !d.IsCustom {
			return th.RowMeta
		}
	}
	return base
}

func statusColor(th *theme.Theme, status string) (lipgloss.Color, bool) {
	if status == "" {
		return "", false
	}
	switch status[0] {
	case '1', '2':
		return th.StatusOK, true
	case '3':
		return th.StatusRedirect, true
	case '4':
		return th.StatusClientErr, true
	case '5':
		return th.StatusServerErr, true
	}
	return "", false
}
