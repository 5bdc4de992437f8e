package filters

import (
	"testing"

	"github.com/unkn0wn-root/netmon/internal/request"
)

func mime(m string) *request.Data {
	return &request.Data{MimeType: request.Ptr(m)}
}

func TestCategoryPredicates(t *testing.T) {
	upgrade := &request.Headers{Headers: []request.Header{{Name: "Upgrade", Value: "websocket"}}}
	cases := []struct {
		name string
		data *request.Data
		want []string
	}{
		{"html", mime("text/html; charset=utf-8"), []string{HTML}},
		{"css", mime("text/css"), []string{CSS}},
		{"js", mime("application/x-javascript"), []string{JS}},
		{"image", mime("image/png"), []string{Images}},
		{"video", mime("video/webm"), []string{Media}},
		{"font by url", &request.Data{URL: request.Ptr("https://a.test/f.woff2")}, []string{Fonts}},
		{"font by mime", mime("font/woff"), []string{Fonts}},
		{"flash", &request.Data{URL: request.Ptr("https://a.test/x.swf")}, []string{Flash}},
		{"xhr", &request.Data{IsXHR: request.Ptr(true), MimeType: request.Ptr("application/json")}, []string{XHR}},
		{
			"ws",
			&request.Data{IsXHR: request.Ptr(true), RequestHeaders: upgrade, ResponseHeaders: upgrade},
			[]string{WS},
		},
		{"other", mime("application/json"), []string{Other}},
		{"empty", &request.Data{}, []string{Other}},
	}

	for _, tc := range cases {
		matched := map[string]bool{}
		for _, tag := range Categories() {
			if tag == All {
				continue
			}
			p, _ := Lookup(tag)
			if p(tc.data) {
				matched[tag] = true
			}
		}
		if len(matched) != len(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, matched)
		}
		for _, tag := range tc.want {
			if !matched[tag] {
				t.Fatalf("%s: expected %s to match, got %v", tc.name, tag, matched)
			}
		}
	}
}

func TestAnyOfIgnoresUnknownTags(t *testing.T) {
	d := mime("text/css")
	if !AnyOf([]string{"bogus", CSS})(d) {
		t.Fatalf("expected css to pass")
	}
	if AnyOf([]string{"bogus"})(d) {
		t.Fatalf("unknown tag must not match")
	}
	if AnyOf(nil)(d) {
		t.Fatalf("empty set must not match")
	}
	if !AnyOf([]string{All})(d) {
		t.Fatalf("all must match")
	}
}

func TestFreetextMatch(t *testing.T) {
	d := &request.Data{URL: request.Ptr("https://Example.com/Api/users")}
	cases := []struct {
		text string
		want bool
	}{
		{"", true},
		{"api", true},
		{"EXAMPLE", true},
		{"missing", false},
		{"-api", false},
		{"-missing", true},
		{"-", false},
	}
	for _, tc := range cases {
		if got := FreetextMatch(d, tc.text); got != tc.want {
			t.Fatalf("FreetextMatch(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
	if FreetextMatch(&request.Data{}, "x") {
		t.Fatalf("record without url cannot match text")
	}
	if !Known(Images) || Known("image") {
		t.Fatalf("unexpected registry membership")
	}
}
