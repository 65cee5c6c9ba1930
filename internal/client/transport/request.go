package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/yndnr/taskdeck-go/internal/core/domain"
)

// Content types set by the request constructors.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Request describes one logical API call. The body is buffered so the
// request can be dispatched any number of times.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string

	// attempt counts transient retries within the current Do call.
	attempt int
}

// NewRequest creates a request without a body.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
}

// NewJSONRequest creates a request with v encoded as a JSON body.
func NewJSONRequest(method, path string, v any) (*Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &domain.RequestError{
			Message: "encode request body: " + err.Error(),
			Code:    domain.CodeEncode,
			Cause:   err,
		}
	}
	r := NewRequest(method, path)
	r.Body = data
	r.ContentType = ContentTypeJSON
	return r, nil
}

// NewFormRequest creates a request with a form-encoded body.
func NewFormRequest(method, path string, form url.Values) *Request {
	r := NewRequest(method, path)
	r.Body = []byte(form.Encode())
	r.ContentType = ContentTypeForm
	return r
}

// Attempt returns the number of transient retries made so far by the
// current Do call.
func (r *Request) Attempt() int {
	return r.attempt
}

// SetHeader sets a header on the request.
func (r *Request) SetHeader(key, value string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
}

func (r *Request) bodyReader() *bytes.Reader {
	if r.Body == nil {
		return nil
	}
	return bytes.NewReader(r.Body)
}

// Response is a fully read HTTP response.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &domain.RequestError{
			Message: "invalid response from server",
			Code:    domain.CodeDecode,
			Status:  r.Status,
			Cause:   err,
		}
	}
	return nil
}
