package app

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"trainmap.dev/internal/metrics"
)

// latencyTrackingRoundTripper records the duration of every outgoing
// request in metrics.OutgoingLatency.
type latencyTrackingRoundTripper struct {
	next http.RoundTripper
}

func (rt *latencyTrackingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)

	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.OutgoingLatency.WithLabelValues(latencyLabel(req), req.Method, status).Observe(time.Since(start).Seconds())

	return resp, err
}

// latencyLabel is scheme, host and path. The query is dropped because it
// may carry credentials.
func latencyLabel(req *http.Request) string {
	return req.URL.Scheme + "://" + req.URL.Host + req.URL.Path
}

// NewPooledClient returns the client shared by the feed decoder, the station
// sources and the remote config loader.
//
// Connections are kept alive between poll cycles. Dialing and the TLS
// handshake fail after 5s; timeout bounds a whole request.
func NewPooledClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: &latencyTrackingRoundTripper{next: transport},
		Timeout:   timeout,
	}
}
