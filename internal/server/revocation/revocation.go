// Package revocation keeps the ids of signed-out access tokens until the
// tokens would have expired anyway.
package revocation

import (
	"context"
	"time"
)

// Store is a denylist of access token ids (jti).
type Store interface {
	// Revoke denies id until expiresAt. Ids already expired are ignored.
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
	Close() error
}
