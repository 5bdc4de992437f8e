package sorters

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/util"
)

// Column identifies a sortable request list column.
type Column string

const (
	Status      Column = "status"
	Method      Column = "method"
	File        Column = "file"
	Domain      Column = "domain"
	Cause       Column = "cause"
	Type        Column = "type"
	Transferred Column = "transferred"
	Size        Column = "size"
	Waterfall   Column = "waterfall"
)

// Comparator orders two records ascending: negative when a sorts first.
type Comparator func(a, b *request.Data) int

var columns = []Column{Status, Method, File, Domain, Cause, Type, Transferred, Size, Waterfall}

var registry = map[Column]Comparator{
	Status:      byStatus,
	Method:      thenWaterfall(func(d *request.Data) string { return d.MethodOr() }),
	File:        thenWaterfall(fileKey),
	Domain:      thenWaterfall(domainKey),
	Cause:       thenWaterfall(func(d *request.Data) string { return d.CauseType() }),
	Type:        thenWaterfall(func(d *request.Data) string { return util.AbbreviatedMimeType(d.MimeTypeOr()) }),
	Transferred: thenWaterfallInt(func(d *request.Data) *int64 { return d.TransferredSize }),
	Size:        thenWaterfallInt(func(d *request.Data) *int64 { return d.ContentSize }),
	Waterfall:   byWaterfall,
}

func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// Lookup returns the comparator for c. The empty column means waterfall.
func Lookup(c Column) (Comparator, bool) {
	if c == "" {
		c = Waterfall
	}
	cmpFn, ok := registry[c]
	return cmpFn, ok
}

func ParseColumn(s string) (Column, bool) {
	c := Column(strings.ToLower(strings.TrimSpace(s)))
	_, ok := registry[c]
	return c, ok
}

func byWaterfall(a, b *request.Data) int {
	return cmp.Compare(a.Started(), b.Started())
}

// Status codes compare numerically when both parse.
func byStatus(a, b *request.Data) int {
	as, bs := a.StatusOr(), b.StatusOr()
	ai, aerr := strconv.Atoi(as)
	bi, berr := strconv.Atoi(bs)
	var r int
	if aerr == nil && berr == nil {
		r = cmp.Compare(ai, bi)
	} else {
		r = cmp.Compare(as, bs)
	}
	if r != 0 {
		return r
	}
	return byWaterfall(a, b)
}

func thenWaterfall(key func(*request.Data) string) Comparator {
	return func(a, b *request.Data) int {
		if r := cmp.Compare(key(a), key(b)); r != 0 {
			return r
		}
		return byWaterfall(a, b)
	}
}

// Missing sizes sort before any known size.
func thenWaterfallInt(key func(*request.Data) *int64) Comparator {
	return func(a, b *request.Data) int {
		av, bv := key(a), key(b)
		var r int
		switch {
		case av == nil && bv == nil:
		case av == nil:
			r = -1
		case bv == nil:
			r = 1
		default:
			r = cmp.Compare(*av, *bv)
		}
		if r != 0 {
			return r
		}
		return byWaterfall(a, b)
	}
}

func fileKey(d *request.Data) string {
	return strings.ToLower(util.ParseURLDetails(d.URLOr()).NameWithQuery)
}

func domainKey(d *request.Data) string {
	return strings.ToLower(util.ParseURLDetails(d.URLOr()).HostPort)
}
