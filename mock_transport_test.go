package gosearchgate

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
)

// fakeTransport scripts backend behavior per call and counts round trips.
type fakeTransport struct {
	mu      sync.Mutex
	calls   int
	handler func(method, path string, body []byte) (*Response, error)
}

func (ft *fakeTransport) Request(_ context.Context, method, path string, body []byte, _ RequestOptions) (*Response, error) {
	ft.mu.Lock()
	ft.calls++
	ft.mu.Unlock()
	return ft.handler(method, path, body)
}

func (ft *fakeTransport) callCount() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.calls
}

func fakeFactory(ft *fakeTransport) TransportFactory {
	return func(*ConnectionInfo) Transport { return ft }
}

func jsonResponse(t *testing.T, statusCode int, v interface{}) *Response {
	t.Helper()
	b, err := json.Marshal(v)
	assertNilF(t, err, "marshalling fake response")
	return &Response{StatusCode: statusCode, Body: b}
}

func okJSON(t *testing.T, v interface{}) *Response {
	return jsonResponse(t, http.StatusOK, v)
}

func testResolver() *StaticConnectionResolver {
	return NewStaticConnectionResolver(&ConnectionInfo{
		ConnectionID: "c1",
		Protocol:     "http",
		Host:         "localhost",
		Port:         9200,
		Datasource:   "c1",
	})
}
