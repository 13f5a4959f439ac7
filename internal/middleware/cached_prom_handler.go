package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// CachedPromHandler serves a Prometheus text exposition that is gathered
// once per ttl instead of on every scrape.
type CachedPromHandler struct {
	mu          sync.RWMutex
	cache       []byte
	refreshedAt time.Time

	gatherer prometheus.Gatherer
	ttl      time.Duration
	live     http.Handler
}

// NewCachedPromHandler gathers once and then refreshes every ttl until ctx is done.
func NewCachedPromHandler(ctx context.Context, gatherer prometheus.Gatherer, ttl time.Duration) *CachedPromHandler {
	c := &CachedPromHandler{
		gatherer: gatherer,
		ttl:      ttl,
		live:     promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
	_ = c.Refresh()

	go c.refreshLoop(ctx)
	return c
}

func (c *CachedPromHandler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Refresh()
		}
	}
}

// Refresh gathers every metric family and replaces the cached exposition.
// On error the previous exposition is kept.
func (c *CachedPromHandler) Refresh() error {
	families, err := c.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metric family %s: %w", mf.GetName(), err)
		}
	}

	c.mu.Lock()
	c.cache = buf.Bytes()
	c.refreshedAt = time.Now()
	c.mu.Unlock()
	return nil
}

// RefreshedAt returns when the cache was last filled, or the zero time.
func (c *CachedPromHandler) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}

// ServeHTTP writes the cached exposition. Until the first successful
// refresh it gathers live.
func (c *CachedPromHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	cache := c.cache
	c.mu.RUnlock()

	if len(cache) == 0 {
		c.live.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_, _ = w.Write(cache)
}
