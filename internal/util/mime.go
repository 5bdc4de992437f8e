package util

import "strings"

var mimeAbbreviations = map[string]string{
	"ecmascript":   "js",
	"javascript":   "js",
	"x-javascript": "js",
}

// AbbreviatedMimeType returns the subtype of mime without parameters or a
// structured-syntax suffix: "application/ld+json; charset=utf-8" gives "ld".
func AbbreviatedMimeType(mime string) string {
	mime = strings.TrimSpace(mime)
	if mime == "" {
		return ""
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	_, sub, ok := strings.Cut(mime, "/")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(sub, '+'); i >= 0 {
		sub = sub[:i]
	}
	return strings.TrimSpace(sub)
}

// ShortType is the label of the type column.
func ShortType(mime string) string {
	abbrev := AbbreviatedMimeType(mime)
	if short, ok := mimeAbbreviations[abbrev]; ok {
		return short
	}
	return abbrev
}
