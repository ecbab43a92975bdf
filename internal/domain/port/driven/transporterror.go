package driven

import "fmt"

// TransportError wraps a failure reported by the HTTP layer underneath a
// RepoClient: a non-2xx status, a rate limit, a connection error. Err is the
// transport's own error, unchanged, so callers can errors.As into it.
type TransportError struct {
	Path       string
	StatusCode int // Zero when no response was received.
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: status %d: %v", e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
