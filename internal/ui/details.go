package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/sorters"
	"github.com/unkn0wn-root/netmon/internal/theme"
	"github.com/unkn0wn-root/netmon/internal/util"
)

const (
	previewMaxLines = 40
	previewMaxBytes = 64 << 10
)

// detailsLines renders the side panel of the selected record. Every line is
// already styled; the caller only clips and frames them.
func detailsLines(th *theme.Theme, rec request.Record, styled bool) []string {
	d := &rec.Data
	var out []string
	title := func(text string) {
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, paintIf(th.DetailsTitle, text, styled))
	}
	field := func(name, value string) {
		if value == "" {
			return
		}
		out = append(out, paintIf(th.DetailsKey, name+": ", styled)+paintIf(th.DetailsValue, value, styled))
	}

	title("Request")
	field("ID", rec.ID)
	field("Method", d.MethodOr())
	field("URL", util.ParseURLDetails(d.URLOr()).Unicode)
	field("Cause", d.CauseType())
	if d.IsCustom {
		field("Cloned from", d.ClonedFrom)
	}

	title("Response")
	status := d.StatusOr()
	if d.StatusText != nil {
		status = strings.TrimSpace(status + " " + *d.StatusText)
	}
	field("Status", status)
	if d.HTTPVersion != nil {
		field("Version", *d.HTTPVersion)
	}
	if d.RemoteAddress != nil {
		remote := *d.RemoteAddress
		if d.RemotePort != nil {
			remote += ":" + strconv.Itoa(*d.RemotePort)
		}
		field("Remote", remote)
	}
	field("Type", d.MimeTypeOr())
	if d.ContentSize != nil {
		field("Size", util.FormatSize(*d.ContentSize))
	}
	field("Transferred", cellText(sorters.Transferred, d))
	if d.SecurityInfo != nil {
		field("Security", d.SecurityInfo.State)
		field("Protocol", d.SecurityInfo.ProtocolVersion)
	} else if d.SecurityState != nil {
		field("Security", *d.SecurityState)
	}

	if d.EventTimings != nil {
		title("Timings")
		tm := d.EventTimings.Timings
		for _, p := range []struct {
			name string
			v    float64
		}{
			{"Blocked", tm.Blocked},
			{"DNS", tm.DNS},
			{"Connect", tm.Connect},
			{"Send", tm.Send},
			{"Wait", tm.Wait},
			{"Receive", tm.Receive},
		} {
			field(p.name, util.FormatTotalMillis(p.v))
		}
	}
	if d.TotalTime != nil {
		field("Total", util.FormatTotalMillis(*d.TotalTime))
	}

	headers := func(name string, h *request.Headers) {
		if h == nil || len(h.Headers) == 0 {
			return
		}
		title(fmt.Sprintf("%s (%s)", name, util.FormatSize(h.HeadersSize)))
		for _, hdr := range h.Headers {
			field(hdr.Name, hdr.Value)
		}
	}
	headers("Request headers", d.RequestHeaders)
	headers("Upload headers", d.RequestHeadersFromUploadStream)
	headers("Response headers", d.ResponseHeaders)

	if d.RequestPostData != nil {
		title("Request body")
		out = append(out, previewLines(th, "", d.RequestPostData.PostData.String(), styled)...)
	}
	if d.ResponseContentDataURI != nil {
		title("Image")
		field("Data URI", fmt.Sprintf("%d chars", len(*d.ResponseContentDataURI)))
	} else if d.ResponseContent != nil {
		content := d.ResponseContent.Content
		title("Response body")
		switch {
		case d.ResponseContent.ContentDiscarded:
			out = append(out, paintIf(th.RowMeta, "body discarded", styled))
		case content.Text.IsRef() && content.Text.Initial == "":
			out = append(out, paintIf(th.RowMeta, "body not loaded", styled))
		default:
			out = append(out, previewLines(th, content.MimeType, content.Text.String(), styled)...)
		}
	}
	return out
}

func paintIf(style lipgloss.Style, text string, styled bool) string {
	if !styled {
		return text
	}
	return style.Render(text)
}

// previewLines highlights body for mime and keeps the first lines of it.
func previewLines(th *theme.Theme, mime, body string, styled bool) []string {
	if len(body) > previewMaxBytes {
		body = body[:previewMaxBytes]
	}
	text := body
	if styled {
		if hl, err := highlight(mime, body, th.HighlightStyle); err == nil {
			text = hl
		}
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > previewMaxLines {
		lines = append(lines[:previewMaxLines], ellipsis)
	}
	return lines
}

func highlight(mime, body, styleName string) (string, error) {
	lexer := lexerFor(mime, body)
	if lexer == nil {
		return body, nil
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, body)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := formatter.Format(&b, style, iterator); err != nil {
		return "", err
	}
	return b.String(), nil
}

func lexerFor(mime, body string) chroma.Lexer {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)
	if mime != "" {
		if l := lexers.MatchMimeType(mime); l != nil {
			return l
		}
	}
	return lexers.Analyse(body)
}
