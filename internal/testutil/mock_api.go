// Package testutil provides a fake API-Sports server for tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// TestAPIKey is the key MockAPI accepts unless configured otherwise.
const TestAPIKey = "test-api-key"

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is what MockAPI saw for one incoming request.
type RecordedRequest struct {
	Path   string
	Query  url.Values
	APIKey string
	At     time.Time
}

// MockAPI is a configurable fake of the API-Sports endpoints.
type MockAPI struct {
	server    *httptest.Server
	mu        sync.RWMutex
	responses map[string]MockResponse
	requests  []RecordedRequest

	// APIKey, when non-empty, is required in x-apisports-key; others get a 401.
	APIKey string
}

// NewMockAPI starts a mock server that requires TestAPIKey.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		responses: make(map[string]MockResponse),
		APIKey:    TestAPIKey,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

func (m *MockAPI) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		APIKey: r.Header.Get("x-apisports-key"),
		At:     time.Now(),
	})
	resp, exists := m.responses[r.URL.Path]
	requiredKey := m.APIKey
	m.mu.Unlock()

	if requiredKey != "" && r.Header.Get("x-apisports-key") != requiredKey {
		writeResponse(w, NewUnauthorizedResponse())
		return
	}

	if !exists {
		resp = NewHealthyResponse(`{"get":"` + r.URL.Path + `","errors":[],"results":0,"response":[]}`)
	}
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears recorded requests.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetResponse configures the response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = resp
}

// RequestCount returns the number of requests made to the server.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// Requests returns a copy of every recorded request in arrival order.
func (m *MockAPI) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RecordedRequest(nil), m.requests...)
}

// LastRequest returns the most recent request, or false if none arrived.
func (m *MockAPI) LastRequest() (RecordedRequest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return RecordedRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// NewHealthyResponse creates a standard 200 OK JSON response.
func NewHealthyResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type":                   "application/json",
			"x-ratelimit-requests-limit":     "100",
			"x-ratelimit-requests-remaining": "99",
		},
	}
}

// NewUnauthorizedResponse creates a 401 response.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"message":"Invalid API key"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewForbiddenResponse creates a 403 response.
func NewForbiddenResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"message":"You are not subscribed to this API."}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"message":"Too many requests. You have exceeded the limit of requests per minute of your subscription."}`,
		Headers: map[string]string{
			"Content-Type":                   "application/json",
			"x-ratelimit-requests-remaining": "0",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `upstream exploded`,
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}
}

// NewMalformedResponse creates a 200 whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>maintenance</html>`,
		Headers:    map[string]string{"Content-Type": "text/html"},
	}
}
