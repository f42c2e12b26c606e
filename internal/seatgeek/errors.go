package seatgeek

import (
	"errors"
	"net/http"
	"strings"
)

// Common errors.
var (
	ErrUpstream          = errors.New("upstream error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNotFound          = errors.New("not found")
)

// UpstreamError is a non-2xx API response. Its message is the HTTP status
// text.
type UpstreamError struct {
	Status     int
	StatusText string
}

func (e *UpstreamError) Error() string {
	return e.StatusText
}

// Is reports a match against ErrUpstream.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func newUpstreamError(resp *http.Response) *UpstreamError {
	text := http.StatusText(resp.StatusCode)
	// resp.Status is "404 Not Found"; prefer its reason phrase.
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		text = reason
	}
	return &UpstreamError{Status: resp.StatusCode, StatusText: text}
}
