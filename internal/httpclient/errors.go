package httpclient

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// UpstreamError represents a non-2xx answer from an upstream service
type UpstreamError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s", e.StatusCode, e.URL)
}

// TransportError means the upstream could not be reached or its body could not be read.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	cause := e.Err
	var urlErr *url.Error
	if errors.As(cause, &urlErr) {
		// url.Error repeats the raw URL, which may carry a key in its query.
		cause = urlErr.Err
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, cause)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

var secretParams = []string{"key", "api_key", "apikey", "token", "access_token"}

// Redact masks credential-bearing query parameters.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	changed := false
	for name := range q {
		for _, s := range secretParams {
			if strings.EqualFold(name, s) {
				q.Set(name, "REDACTED")
				changed = true
			}
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
