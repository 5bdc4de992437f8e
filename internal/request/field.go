package request

import "strings"

// Field names one optional slot of Data.
type Field int

const (
	FieldStartedMillis Field = iota
	FieldStartedDeltaMillis
	FieldEndedMillis
	FieldMethod
	FieldURL
	FieldIsXHR
	FieldCause
	FieldFromCache
	FieldFromServiceWorker
	FieldRemotePort
	FieldRemoteAddress
	FieldStatus
	FieldStatusText
	FieldHTTPVersion
	FieldSecurityState
	FieldSecurityInfo
	FieldMimeType
	FieldContentSize
	FieldTransferredSize
	FieldTotalTime
	FieldEventTimings
	FieldHeadersSize
	FieldRequestHeaders
	FieldRequestHeadersFromUploadStream
	FieldRequestCookies
	FieldRequestPostData
	FieldResponseHeaders
	FieldResponseCookies
	FieldResponseContent
	FieldResponseContentDataURI
	FieldIsCustom
	FieldClonedFrom
	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldStartedMillis:                  "startedMillis",
	FieldStartedDeltaMillis:             "startedDeltaMillis",
	FieldEndedMillis:                    "endedMillis",
	FieldMethod:                         "method",
	FieldURL:                            "url",
	FieldIsXHR:                          "isXHR",
	FieldCause:                          "cause",
	FieldFromCache:                      "fromCache",
	FieldFromServiceWorker:              "fromServiceWorker",
	FieldRemotePort:                     "remotePort",
	FieldRemoteAddress:                  "remoteAddress",
	FieldStatus:                         "status",
	FieldStatusText:                     "statusText",
	FieldHTTPVersion:                    "httpVersion",
	FieldSecurityState:                  "securityState",
	FieldSecurityInfo:                   "securityInfo",
	FieldMimeType:                       "mimeType",
	FieldContentSize:                    "contentSize",
	FieldTransferredSize:                "transferredSize",
	FieldTotalTime:                      "totalTime",
	FieldEventTimings:                   "eventTimings",
	FieldHeadersSize:                    "headersSize",
	FieldRequestHeaders:                 "requestHeaders",
	FieldRequestHeadersFromUploadStream: "requestHeadersFromUploadStream",
	FieldRequestCookies:                 "requestCookies",
	FieldRequestPostData:                "requestPostData",
	FieldResponseHeaders:                "responseHeaders",
	FieldResponseCookies:                "responseCookies",
	FieldResponseContent:                "responseContent",
	FieldResponseContentDataURI:         "responseContentDataUri",
	FieldIsCustom:                       "isCustom",
	FieldClonedFrom:                     "clonedFrom",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// ParseField maps a wire name back to its Field. Matching is case-insensitive.
func ParseField(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for i, n := range fieldNames {
		if strings.EqualFold(n, name) {
			return Field(i), true
		}
	}
	return 0, false
}

// AllFields lists every known field in declaration order.
func AllFields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// FieldSet is a fixed-size membership set over Field.
type FieldSet uint64

func NewFieldSet(fields ...Field) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s = s.With(f)
	}
	return s
}

func (s FieldSet) With(f Field) FieldSet {
	if f < 0 || f >= fieldCount {
		return s
	}
	return s | 1<<uint(f)
}

func (s FieldSet) Contains(f Field) bool {
	if f < 0 || f >= fieldCount {
		return false
	}
	return s&(1<<uint(f)) != 0
}

func (s FieldSet) Fields() []Field {
	var out []Field
	for f := Field(0); f < fieldCount; f++ {
		if s.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}
