package client

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/common"
)

// AuthError is a 401 response. It unwraps to common.ErrUnauthorized so
// callers can match it with errors.Is; Detail carries the server-supplied
// message when one was present (e.g. "No active account found with the
// given credentials").
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "unauthorized"
}

func (e *AuthError) Unwrap() error {
	return common.ErrUnauthorized
}

// StatusError is any non-2xx response that is neither an authorization
// failure nor a field-level validation failure: typically a 5xx or an
// unexpected shape. The raw body is kept for diagnostics.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Status)
}

// ValidationError is a 4xx response carrying field-level detail, e.g.
// {"username": ["already taken"]} or {"detail": "No active account found"}.
// Fields are surfaced verbatim so forms can display them per field.
type ValidationError struct {
	Status int
	Detail string
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed (status %d)", e.Status)
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", name, strings.Join(e.Fields[name], ", "))
	}
	return b.String()
}

// IsNetworkError reports whether err means no response was received at all
// (unreachable host, timeout). Such failures are transient and must never
// clear the session.
func IsNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
