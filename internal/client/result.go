package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// FailureKind classifies why a call did not produce a usable response.
type FailureKind string

const (
	// FailureRequest means the request could not be built or encoded.
	FailureRequest FailureKind = "request"
	// FailureTransport covers timeouts, refused connections and DNS errors.
	FailureTransport FailureKind = "transport"
	// FailureHTTP is a non-2xx response.
	FailureHTTP FailureKind = "http"
	// FailureMalformed is a 2xx response whose body is not JSON.
	FailureMalformed FailureKind = "malformed_response"
)

// Failure describes a failed call. StatusCode is zero when no response was
// received.
type Failure struct {
	Kind       FailureKind
	StatusCode int
	Message    string
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", f.Kind, f.StatusCode, f.Message)
	}
	return fmt.Sprintf("%s error: %s", f.Kind, f.Message)
}

// Result is the normalized outcome of one call. Exactly one of Data and Err
// is meaningful: Err is nil on success.
type Result struct {
	StatusCode int
	Data       any
	Raw        json.RawMessage
	Err        *Failure
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Error returns the failure as an error, or nil on success.
func (r Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// Extract returns the value at env inside the decoded body.
func (r Result) Extract(env Envelope) (any, bool) {
	if r.Err != nil {
		return nil, false
	}
	return env.Extract(r.Data)
}

// Decode unmarshals the raw body into v.
func (r Result) Decode(v any) error {
	if r.Err != nil {
		return r.Err
	}
	if len(r.Raw) == 0 {
		return fmt.Errorf("empty response body")
	}
	return json.Unmarshal(r.Raw, v)
}

func failed(kind FailureKind, status int, msg string) Result {
	return Result{StatusCode: status, Err: &Failure{Kind: kind, StatusCode: status, Message: msg}}
}

// decodeJSON decodes a body keeping numbers as json.Number so IDs survive
// without float rounding.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

// errorMessage pulls a human-readable message from an error body. JSON bodies
// are searched for message, error, error.message and data.message in that
// order; otherwise a short text body or the status text is used.
func errorMessage(status int, body []byte) string {
	if v, err := decodeJSON(body); err == nil {
		for _, env := range []Envelope{"message", "error", "error.message", "data.message"} {
			if s, ok := stringAt(v, env); ok {
				return s
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	if st := http.StatusText(status); st != "" {
		return st
	}
	return fmt.Sprintf("unexpected status %d", status)
}

func stringAt(v any, env Envelope) (string, bool) {
	got, ok := env.Extract(v)
	if !ok {
		return "", false
	}
	s, ok := got.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
