// Package credentials owns durable persistence of the current session
// material: access token, refresh token, and the cached user record.
// No other component mutates the persisted state directly.
package credentials

import (
	"context"
)

// Repository is a small key/value store for session keys. Get returns
// (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
