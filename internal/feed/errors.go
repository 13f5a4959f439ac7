package feed

import "fmt"

// TransportError reports a failure to reach the feed: a network error or a
// non-success HTTP status.
type TransportError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feed request to %s failed with status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("feed request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not a well-formed feed message.
type DecodeError struct {
	Size int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %d byte feed message: %v", e.Size, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
