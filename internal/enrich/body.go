package enrich

import (
	"encoding/base64"
	"strings"

	"github.com/unkn0wn-root/netmon/internal/request"
)

// DataURI builds a data: URI for a response body. Bodies without a transfer
// encoding are base64 encoded here.
func DataURI(mimeType, encoding, body string) string {
	if encoding == "" {
		encoding = "base64"
		body = base64.StdEncoding.EncodeToString([]byte(body))
	}
	return "data:" + mimeType + ";" + encoding + "," + body
}

// UploadHeaders extracts the header block that precedes the first blank line
// of an upload stream. The size counts each header as name, value and the
// two separator bytes.
func UploadHeaders(body string) *request.Headers {
	out := &request.Headers{Headers: []request.Header{}}
	block, _, found := strings.Cut(body, "\r\n\r\n")
	if !found {
		return out
	}
	for line := range strings.SplitSeq(block, "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		value = strings.TrimSpace(value)
		out.Headers = append(out.Headers, request.Header{Name: name, Value: value})
		out.HeadersSize += int64(len(name) + len(value) + 2)
	}
	return out
}
