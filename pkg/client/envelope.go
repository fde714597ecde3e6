package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ErrorKind classifies a failed request.
type ErrorKind string

const (
	// KindAuthentication is an HTTP 401: the API key was rejected.
	KindAuthentication ErrorKind = "authentication"

	// KindForbidden is an HTTP 403: the subscription plan does not cover the request.
	KindForbidden ErrorKind = "forbidden"

	// KindRateLimit is an HTTP 429: the account quota is exhausted.
	KindRateLimit ErrorKind = "rate_limit"

	// KindHTTP is any other non-200 status.
	KindHTTP ErrorKind = "http"

	// KindParse is a 200 whose body is not JSON.
	KindParse ErrorKind = "parse"

	// KindRequest is a transport failure: connection, timeout, DNS or cancellation.
	KindRequest ErrorKind = "request"
)

// Messages carried by the fixed-status error kinds.
const (
	MsgAuthentication = "Authentication failed - Invalid API key"
	MsgForbidden      = "Access forbidden - Check API subscription plan"
	MsgRateLimit      = "Rate limit exceeded - Too many requests"
	MsgParse          = "JSON parsing failed"
)

// APIError describes a request that did not produce a usable payload.
type APIError struct {
	Kind    ErrorKind
	Message string

	// StatusCode is 0 for transport failures.
	StatusCode int

	Endpoint string
	Params   url.Values

	// RawResponse holds the body for KindHTTP and KindParse.
	RawResponse string

	// Err is the underlying transport or decode error, if any.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("apisports %s error on %s (status %d): %s",
			e.Kind, e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("apisports %s error on %s: %s", e.Kind, e.Endpoint, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err wraps an *APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// Metadata describes where a successful payload came from.
type Metadata struct {
	FromCache  bool       `json:"from_cache"`
	StatusCode int        `json:"status_code"`
	Endpoint   string     `json:"endpoint"`
	Params     url.Values `json:"params"`
}

// Envelope is the result of every Client.Get call: either a payload with its
// metadata, or an error. Exactly one of Payload and Error is set.
type Envelope struct {
	Payload json.RawMessage
	Meta    Metadata
	Error   *APIError
}

// OK reports whether the envelope carries a payload.
func (e *Envelope) OK() bool {
	return e.Error == nil
}

// Err returns the envelope's error as an error value, or nil on success.
func (e *Envelope) Err() error {
	if e.Error == nil {
		return nil
	}
	return e.Error
}

// Decode unmarshals the payload into v. It returns the envelope error instead
// when the request failed.
func (e *Envelope) Decode(v any) error {
	if e.Error != nil {
		return e.Error
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Meta.Endpoint, err)
	}
	return nil
}

// MarshalJSON renders the envelope as a single flat object.
//
// A success is the upstream object with from_cache, status_code, endpoint and
// params added; a non-object payload is nested under "data". An error is an
// object with error, status_code, endpoint, params and raw_response.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	if e.Error != nil {
		out := map[string]any{
			"error":    e.Error.Message,
			"kind":     e.Error.Kind,
			"endpoint": e.Error.Endpoint,
			"params":   paramsJSON(e.Error.Params),
		}
		if e.Error.StatusCode != 0 {
			out["status_code"] = e.Error.StatusCode
		}
		if e.Error.RawResponse != "" {
			out["raw_response"] = e.Error.RawResponse
		}
		return json.Marshal(out)
	}

	var out map[string]any
	if err := json.Unmarshal(e.Payload, &out); err != nil || out == nil {
		out = map[string]any{"data": e.Payload}
	}
	out["from_cache"] = e.Meta.FromCache
	out["status_code"] = e.Meta.StatusCode
	out["endpoint"] = e.Meta.Endpoint
	out["params"] = paramsJSON(e.Meta.Params)
	return json.Marshal(out)
}

// paramsJSON flattens single-valued parameters to plain strings.
func paramsJSON(params url.Values) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for name, values := range params {
		if len(values) == 1 {
			out[name] = values[0]
		} else {
			out[name] = values
		}
	}
	return out
}

// cachedResponse is the document stored in the cache for a successful call.
type cachedResponse struct {
	Payload    json.RawMessage `json:"payload"`
	StatusCode int             `json:"status_code"`
	Endpoint   string          `json:"endpoint"`
	Params     url.Values      `json:"params"`
}

func (r cachedResponse) envelope() *Envelope {
	return &Envelope{
		Payload: r.Payload,
		Meta: Metadata{
			FromCache:  true,
			StatusCode: r.StatusCode,
			Endpoint:   r.Endpoint,
			Params:     r.Params,
		},
	}
}
