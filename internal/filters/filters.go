package filters

import (
	"strings"

	"github.com/unkn0wn-root/netmon/internal/request"
)

// Category tags understood by the filter bar.
const (
	All    = "all"
	HTML   = "html"
	CSS    = "css"
	JS     = "js"
	XHR    = "xhr"
	Fonts  = "fonts"
	Images = "images"
	Media  = "media"
	Flash  = "flash"
	WS     = "ws"
	Other  = "other"
)

type Predicate func(d *request.Data) bool

var order = []string{All, HTML, CSS, JS, XHR, Fonts, Images, Media, Flash, WS, Other}

var registry = map[string]Predicate{
	All:    func(*request.Data) bool { return true },
	HTML:   isHTML,
	CSS:    isCSS,
	JS:     isJS,
	XHR:    isXHR,
	Fonts:  isFont,
	Images: isImage,
	Media:  isMedia,
	Flash:  isFlash,
	WS:     isWS,
	Other:  isOther,
}

// Categories returns every registered tag in toolbar order.
func Categories() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

func Lookup(tag string) (Predicate, bool) {
	p, ok := registry[tag]
	return p, ok
}

func Known(tag string) bool {
	_, ok := registry[tag]
	return ok
}

// AnyOf passes a record when at least one enabled category matches.
// Unregistered tags never match.
func AnyOf(enabled []string) Predicate {
	preds := make([]Predicate, 0, len(enabled))
	for _, tag := range enabled {
		if p, ok := registry[tag]; ok {
			preds = append(preds, p)
		}
	}
	return func(d *request.Data) bool {
		for _, p := range preds {
			if p(d) {
				return true
			}
		}
		return false
	}
}

// FreetextMatch is a case-insensitive substring test on the URL. A leading
// "-" inverts the match. Empty text matches everything.
func FreetextMatch(d *request.Data, text string) bool {
	if text == "" {
		return true
	}
	url := strings.ToLower(d.URLOr())
	needle := strings.ToLower(text)
	if strings.HasPrefix(needle, "-") && len(needle) > 1 {
		return !strings.Contains(url, needle[1:])
	}
	return strings.Contains(url, needle)
}

func mimeContains(d *request.Data, parts ...string) bool {
	mime := d.MimeTypeOr()
	if mime == "" {
		return false
	}
	for _, part := range parts {
		if strings.Contains(mime, part) {
			return true
		}
	}
	return false
}

func urlContains(d *request.Data, parts ...string) bool {
	url := d.URLOr()
	if url == "" {
		return false
	}
	for _, part := range parts {
		if strings.Contains(url, part) {
			return true
		}
	}
	return false
}

func isHTML(d *request.Data) bool { return mimeContains(d, "/html") }

func isCSS(d *request.Data) bool { return mimeContains(d, "/css") }

func isJS(d *request.Data) bool {
	return mimeContains(d, "/ecmascript", "/javascript", "/x-javascript")
}

func isXHR(d *request.Data) bool { return d.XHR() && !isWS(d) }

func isFont(d *request.Data) bool {
	return urlContains(d, ".eot", ".ttf", ".otf", ".woff") || mimeContains(d, "font/", "/font")
}

func isImage(d *request.Data) bool { return mimeContains(d, "image/") }

func isMedia(d *request.Data) bool {
	return mimeContains(d, "audio/", "video/", "model/")
}

func isFlash(d *request.Data) bool {
	return urlContains(d, ".swf") || mimeContains(d, "/x-shockwave-flash")
}

// isWS needs the upgrade handshake on both sides.
func isWS(d *request.Data) bool {
	if d.RequestHeaders == nil || d.ResponseHeaders == nil {
		return false
	}
	req, ok := d.RequestHeaders.Get("Upgrade")
	if !ok || !strings.EqualFold(req, "websocket") {
		return false
	}
	resp, ok := d.ResponseHeaders.Get("Upgrade")
	return ok && strings.EqualFold(resp, "websocket")
}

var specific = []Predicate{isHTML, isCSS, isJS, isXHR, isFont, isImage, isMedia, isFlash, isWS}

func isOther(d *request.Data) bool {
	for _, p := range specific {
		if p(d) {
			return false
		}
	}
	return true
}
