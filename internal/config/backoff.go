package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// baseRetryDelay is the wait before the first retry of DoWithBackoff.
const baseRetryDelay = 250 * time.Millisecond

// DoWithBackoff sends req with client and retries network errors and 5xx
// responses with jittered exponential delays.
//
// At most maxRetries retries follow the first attempt. A maxRetries of zero
// or less keeps retrying until ctx is done. Any response below 500 is
// returned to the caller, who owns its body.
func DoWithBackoff(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	var lastErr error
	delay := baseRetryDelay

	for attempt := 0; maxRetries <= 0 || attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(withJitter(delay))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("request to %s cancelled after %d attempts: %w", req.URL.Redacted(), attempt, ctx.Err())
			case <-timer.C:
			}
			delay = calculateNewBackoffDelay(delay)
		}

		attemptReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("request to %s cancelled: %w", req.URL.Redacted(), errors.Join(ctxErr, err))
			}
			lastErr = err
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded for %s: %w", req.URL.Redacted(), lastErr)
}
