package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Headers struct {
	Headers     []Header `json:"headers"`
	HeadersSize int64    `json:"headersSize"`
	RawHeaders  string   `json:"rawHeaders,omitempty"`
}

// Get returns the first header value matching name, case-insensitively.
func (h *Headers) Get(name string) (string, bool) {
	if h == nil {
		return "", false
	}
	for _, hdr := range h.Headers {
		if strings.EqualFold(hdr.Name, name) {
			return hdr.Value, true
		}
	}
	return "", false
}

type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Cookies struct {
	Cookies []Cookie `json:"cookies"`
}

// LongString is a body that is either inline or held by the event source
// behind a reference. Unresolved strings carry the first bytes in Initial.
type LongString struct {
	Text    string `json:"-"`
	Ref     string `json:"actor,omitempty"`
	Initial string `json:"initial,omitempty"`
	Length  int    `json:"length,omitempty"`
}

func Inline(text string) LongString {
	return LongString{Text: text, Length: len(text)}
}

func (s LongString) IsRef() bool { return s.Ref != "" }

// String returns the inline text, or the known prefix for a reference.
func (s LongString) String() string {
	if s.IsRef() {
		return s.Initial
	}
	return s.Text
}

type longStringWire struct {
	Type    string `json:"type"`
	Ref     string `json:"actor"`
	Initial string `json:"initial"`
	Length  int    `json:"length"`
}

// UnmarshalJSON accepts either a plain string or a long string grip.
func (s *LongString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = LongString{}
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Inline(text)
		return nil
	}
	var wire longStringWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode long string: %w", err)
	}
	*s = LongString{Ref: wire.Ref, Initial: wire.Initial, Length: wire.Length}
	return nil
}

func (s LongString) MarshalJSON() ([]byte, error) {
	if !s.IsRef() {
		return json.Marshal(s.Text)
	}
	return json.Marshal(longStringWire{
		Type:    "longString",
		Ref:     s.Ref,
		Initial: s.Initial,
		Length:  s.Length,
	})
}

type PostData struct {
	PostData          LongString `json:"postData"`
	PostDataDiscarded bool       `json:"postDataDiscarded,omitempty"`
}

type Content struct {
	MimeType string     `json:"mimeType"`
	Text     LongString `json:"text"`
	Size     int64      `json:"size,omitempty"`
	Encoding string     `json:"encoding,omitempty"`
}

type ResponseContent struct {
	Content          Content `json:"content"`
	ContentDiscarded bool    `json:"contentDiscarded,omitempty"`
}

type Timings struct {
	Blocked float64 `json:"blocked"`
	DNS     float64 `json:"dns"`
	Connect float64 `json:"connect"`
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
}

type EventTimings struct {
	Timings   Timings `json:"timings"`
	TotalTime float64 `json:"totalTime"`
}

type StackFrame struct {
	FunctionName string `json:"functionName,omitempty"`
	Filename     string `json:"filename"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber"`
}

type Cause struct {
	Type               string       `json:"type"`
	LoadingDocumentURI string       `json:"loadingDocumentUri,omitempty"`
	Stacktrace         []StackFrame `json:"stacktrace,omitempty"`
}

type Certificate struct {
	SubjectCN   string `json:"subjectCN,omitempty"`
	IssuerCN    string `json:"issuerCN,omitempty"`
	Fingerprint string `json:"sha256,omitempty"`
}

type SecurityInfo struct {
	State           string      `json:"state"`
	ProtocolVersion string      `json:"protocolVersion,omitempty"`
	CipherSuite     string      `json:"cipherSuite,omitempty"`
	HSTS            bool        `json:"hsts,omitempty"`
	HPKP            bool        `json:"hpkp,omitempty"`
	Cert            Certificate `json:"cert,omitempty"`
	ErrorMessage    string      `json:"errorMessage,omitempty"`
}
