package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"trainmap.dev/internal/models"
)

// contentType is requested from the feed endpoint.
const contentType = "application/x-protobuf"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 32 << 20

// Decoder retrieves the configured realtime feed and decodes it.
// It never retries and never caches a response.
type Decoder struct {
	Feed    models.FeedConfig
	Client  *http.Client
	Timeout time.Duration
}

// NewDecoder returns a Decoder for cfg. A zero timeout leaves the request
// bounded only by the client and the caller's context.
func NewDecoder(cfg models.FeedConfig, client *http.Client, timeout time.Duration) *Decoder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Decoder{
		Feed:    cfg,
		Client:  client,
		Timeout: timeout,
	}
}

// FetchAndDecode issues one GET against the feed endpoint and decodes the body.
//
// A network failure or a non-2xx status yields a *TransportError and a
// malformed body a *DecodeError.
func (d *Decoder) FetchAndDecode(ctx context.Context) (*Feed, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	endpoint := d.Feed.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", contentType)
	if d.Feed.APIKeyHeader != "" && d.Feed.APIKeyValue != "" {
		req.Header.Set(d.Feed.APIKeyHeader, d.Feed.APIKeyValue)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return Decode(data)
}
