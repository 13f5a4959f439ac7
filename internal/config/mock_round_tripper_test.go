package config

import (
	"net/http"
	"sync/atomic"
)

type mockRoundTripper struct {
	calls   int32
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&m.calls, 1)
	return m.handler(req)
}

func (m *mockRoundTripper) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}
