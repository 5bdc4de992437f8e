package request

// Data holds the incrementally populated fields of one request. A nil
// pointer means the field has not arrived. Values reachable from a Data are
// never mutated once stored; updates replace the pointer.
type Data struct {
	StartedMillis      *float64 `json:"startedMillis,omitempty"`
	StartedDeltaMillis *float64 `json:"startedDeltaMillis,omitempty"`
	EndedMillis        *float64 `json:"endedMillis,omitempty"`

	Method            *string `json:"method,omitempty"`
	URL               *string `json:"url,omitempty"`
	IsXHR             *bool   `json:"isXHR,omitempty"`
	Cause             *Cause  `json:"cause,omitempty"`
	FromCache         *bool   `json:"fromCache,omitempty"`
	FromServiceWorker *bool   `json:"fromServiceWorker,omitempty"`

	RemotePort    *int    `json:"remotePort,omitempty"`
	RemoteAddress *string `json:"remoteAddress,omitempty"`
	Status        *string `json:"status,omitempty"`
	StatusText    *string `json:"statusText,omitempty"`
	HTTPVersion   *string `json:"httpVersion,omitempty"`

	SecurityState *string       `json:"securityState,omitempty"`
	SecurityInfo  *SecurityInfo `json:"securityInfo,omitempty"`

	MimeType        *string       `json:"mimeType,omitempty"`
	ContentSize     *int64        `json:"contentSize,omitempty"`
	TransferredSize *int64        `json:"transferredSize,omitempty"`
	TotalTime       *float64      `json:"totalTime,omitempty"`
	EventTimings    *EventTimings `json:"eventTimings,omitempty"`
	HeadersSize     *int64        `json:"headersSize,omitempty"`

	RequestHeaders                 *Headers  `json:"requestHeaders,omitempty"`
	RequestHeadersFromUploadStream *Headers  `json:"requestHeadersFromUploadStream,omitempty"`
	RequestCookies                 *Cookies  `json:"requestCookies,omitempty"`
	RequestPostData                *PostData `json:"requestPostData,omitempty"`

	ResponseHeaders        *Headers         `json:"responseHeaders,omitempty"`
	ResponseCookies        *Cookies         `json:"responseCookies,omitempty"`
	ResponseContent        *ResponseContent `json:"responseContent,omitempty"`
	ResponseContentDataURI *string          `json:"responseContentDataUri,omitempty"`

	IsCustom   bool   `json:"isCustom,omitempty"`
	ClonedFrom string `json:"clonedFrom,omitempty"`
}

// Record is one tracked request.
type Record struct {
	ID   string `json:"id"`
	Data Data   `json:"data"`
}

func Ptr[T any](v T) *T { return &v }

// Has reports whether f has arrived.
func (d *Data) Has(f Field) bool {
	switch f {
	case FieldStartedMillis:
		return d.StartedMillis != nil
	case FieldStartedDeltaMillis:
		return d.StartedDeltaMillis != nil
	case FieldEndedMillis:
		return d.EndedMillis != nil
	case FieldMethod:
		return d.Method != nil
	case FieldURL:
		return d.URL != nil
	case FieldIsXHR:
		return d.IsXHR != nil
	case FieldCause:
		return d.Cause != nil
	case FieldFromCache:
		return d.FromCache != nil
	case FieldFromServiceWorker:
		return d.FromServiceWorker != nil
	case FieldRemotePort:
		return d.RemotePort != nil
	case FieldRemoteAddress:
		return d.RemoteAddress != nil
	case FieldStatus:
		return d.Status != nil
	case FieldStatusText:
		return d.StatusText != nil
	case FieldHTTPVersion:
		return d.HTTPVersion != nil
	case FieldSecurityState:
		return d.SecurityState != nil
	case FieldSecurityInfo:
		return d.SecurityInfo != nil
	case FieldMimeType:
		return d.MimeType != nil
	case FieldContentSize:
		return d.ContentSize != nil
	case FieldTransferredSize:
		return d.TransferredSize != nil
	case FieldTotalTime:
		return d.TotalTime != nil
	case FieldEventTimings:
		return d.EventTimings != nil
	case FieldHeadersSize:
		return d.HeadersSize != nil
	case FieldRequestHeaders:
		return d.RequestHeaders != nil
	case FieldRequestHeadersFromUploadStream:
		return d.RequestHeadersFromUploadStream != nil
	case FieldRequestCookies:
		return d.RequestCookies != nil
	case FieldRequestPostData:
		return d.RequestPostData != nil
	case FieldResponseHeaders:
		return d.ResponseHeaders != nil
	case FieldResponseCookies:
		return d.ResponseCookies != nil
	case FieldResponseContent:
		return d.ResponseContent != nil
	case FieldResponseContentDataURI:
		return d.ResponseContentDataURI != nil
	case FieldIsCustom:
		return d.IsCustom
	case FieldClonedFrom:
		return d.ClonedFrom != ""
	default:
		return false
	}
}

// Present returns the set of fields that have arrived.
func (d *Data) Present() FieldSet {
	var s FieldSet
	for f := Field(0); f < fieldCount; f++ {
		if d.Has(f) {
			s = s.With(f)
		}
	}
	return s
}

// Assign copies every field that is present in src and contained in allowed.
// Fields outside allowed are left untouched.
func (d *Data) Assign(src *Data, allowed FieldSet) {
	for f := Field(0); f < fieldCount; f++ {
		if allowed.Contains(f) && src.Has(f) {
			d.copyField(src, f)
		}
	}
}

func (d *Data) copyField(src *Data, f Field) {
	switch f {
	case FieldStartedMillis:
		d.StartedMillis = src.StartedMillis
	case FieldStartedDeltaMillis:
		d.StartedDeltaMillis = src.StartedDeltaMillis
	case FieldEndedMillis:
		d.EndedMillis = src.EndedMillis
	case FieldMethod:
		d.Method = src.Method
	case FieldURL:
		d.URL = src.URL
	case FieldIsXHR:
		d.IsXHR = src.IsXHR
	case FieldCause:
		d.Cause = src.Cause
	case FieldFromCache:
		d.FromCache = src.FromCache
	case FieldFromServiceWorker:
		d.FromServiceWorker = src.FromServiceWorker
	case FieldRemotePort:
		d.RemotePort = src.RemotePort
	case FieldRemoteAddress:
		d.RemoteAddress = src.RemoteAddress
	case FieldStatus:
		d.Status = src.Status
	case FieldStatusText:
		d.StatusText = src.StatusText
	case FieldHTTPVersion:
		d.HTTPVersion = src.HTTPVersion
	case FieldSecurityState:
		d.SecurityState = src.SecurityState
	case FieldSecurityInfo:
		d.SecurityInfo = src.SecurityInfo
	case FieldMimeType:
		d.MimeType = src.MimeType
	case FieldContentSize:
		d.ContentSize = src.ContentSize
	case FieldTransferredSize:
		d.TransferredSize = src.TransferredSize
	case FieldTotalTime:
		d.TotalTime = src.TotalTime
	case FieldEventTimings:
		d.EventTimings = src.EventTimings
	case FieldHeadersSize:
		d.HeadersSize = src.HeadersSize
	case FieldRequestHeaders:
		d.RequestHeaders = src.RequestHeaders
	case FieldRequestHeadersFromUploadStream:
		d.RequestHeadersFromUploadStream = src.RequestHeadersFromUploadStream
	case FieldRequestCookies:
		d.RequestCookies = src.RequestCookies
	case FieldRequestPostData:
		d.RequestPostData = src.RequestPostData
	case FieldResponseHeaders:
		d.ResponseHeaders = src.ResponseHeaders
	case FieldResponseCookies:
		d.ResponseCookies = src.ResponseCookies
	case FieldResponseContent:
		d.ResponseContent = src.ResponseContent
	case FieldResponseContentDataURI:
		d.ResponseContentDataURI = src.ResponseContentDataURI
	case FieldIsCustom:
		d.IsCustom = src.IsCustom
	case FieldClonedFrom:
		d.ClonedFrom = src.ClonedFrom
	}
}

// Accessors below return the zero value for fields that have not arrived.

func (d *Data) Started() float64      { return deref(d.StartedMillis) }
func (d *Data) StartedDelta() float64 { return deref(d.StartedDeltaMillis) }
func (d *Data) Ended() float64        { return deref(d.EndedMillis) }
func (d *Data) MethodOr() string      { return deref(d.Method) }
func (d *Data) URLOr() string         { return deref(d.URL) }
func (d *Data) StatusOr() string      { return deref(d.Status) }
func (d *Data) MimeTypeOr() string    { return deref(d.MimeType) }
func (d *Data) Cached() bool          { return deref(d.FromCache) }
func (d *Data) ServiceWorker() bool   { return deref(d.FromServiceWorker) }
func (d *Data) XHR() bool             { return deref(d.IsXHR) }

func (d *Data) CauseType() string {
	if d.Cause == nil {
		return ""
	}
	return d.Cause.Type
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
