// Package common defines shared sentinel errors used across the ArecaNut
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Auth errors (token recovery exhausted or an auth op already running).
	ErrUnauthorized = errors.New("unauthorized")
	ErrBusy         = errors.New("another authentication operation is in progress")

	// Normalization errors.
	ErrMalformedRecord = errors.New("malformed analysis record")

	ErrNotFound = errors.New("not found")
)
