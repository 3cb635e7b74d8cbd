package github

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// APIError is a non-2xx response from the API. It unwraps to the sentinel
// in the types package that matches its status code, if any.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	// RetryAfter is the wait the server asked for, zero when unspecified.
	RetryAfter time.Duration

	kind error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

func newAPIError(method, path string, resp *http.Response, body []byte) *APIError {
	e := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Message:    gjson.GetBytes(body, "message").String(),
		RetryAfter: retryAfter(resp.Header, time.Now()),
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}

	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized:
		e.kind = types.ErrAuthentication
	case code == http.StatusTooManyRequests:
		e.kind = types.ErrRateLimited
	case code == http.StatusForbidden:
		if isRateLimit(resp.Header, e.Message) {
			e.kind = types.ErrRateLimited
		} else {
			e.kind = types.ErrAuthentication
		}
	case code == http.StatusNotFound || code == http.StatusGone:
		e.kind = types.ErrRemoteNotFound
	case code >= 500:
		e.kind = types.ErrTransient
	}
	return e
}

func isRateLimit(h http.Header, message string) bool {
	if h.Get("X-RateLimit-Remaining") == "0" || h.Get("Retry-After") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(message), "rate limit")
}

// retryAfter reads Retry-After (seconds) or, failing that, the primary
// rate limit reset time.
func retryAfter(h http.Header, now time.Time) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if h.Get("X-RateLimit-Remaining") == "0" {
		if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			if d := time.Unix(reset, 0).Sub(now); d > 0 {
				return d
			}
		}
	}
	return 0
}
