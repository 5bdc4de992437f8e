package util

import (
	"net"
	"net/url"
	"strings"
)

// URLDetails is the display breakdown of a request URL.
type URLDetails struct {
	Unicode       string
	NameWithQuery string
	Host          string
	HostPort      string
	IsLocal       bool
}

// ParseURLDetails splits raw into the pieces the request list shows. A URL
// that fails to parse is returned whole as its own name.
func ParseURLDetails(raw string) URLDetails {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return URLDetails{Unicode: decodeUnicode(raw), NameWithQuery: decodeUnicode(raw)}
	}
	return URLDetails{
		Unicode:       decodeUnicode(raw),
		NameWithQuery: NameWithQuery(u),
		Host:          decodeUnicode(u.Hostname()),
		HostPort:      decodeUnicode(u.Host),
		IsLocal:       IsLocalHost(u.Hostname()),
	}
}

// NameWithQuery returns the last path segment plus the query string.
func NameWithQuery(u *url.URL) string {
	path := u.EscapedPath()
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		name = path[i+1:]
	}
	if u.RawQuery != "" {
		name += "?" + u.RawQuery
	}
	if name == "" {
		name = "/"
	}
	return decodeUnicode(name)
}

// IsLocalHost reports whether host is a loopback name: localhost and its
// subdomains, 127.0.0.0/8 or ::1.
func IsLocalHost(host string) bool {
	host = strings.Trim(strings.ToLower(host), "[]")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func decodeUnicode(s string) string {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}
