// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/credhex/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks up a refresh token by its opaque token string and returns its metadata.
	// Implementations return common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Consume atomically removes a refresh token and returns its metadata.
	// Implementations return common.ErrorNotFound when the token is absent,
	// including when a concurrent caller consumed it first.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string and returns
	// common.ErrorNotFound when no row went.
	Delete(ctx context.Context, token string) error

	// DeleteExpired purges tokens whose expiry is before now and reports how many went.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
