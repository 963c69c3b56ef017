package vault

import (
	"context"
	"sort"
	"strings"
)

// ListLimit caps the number of certificates returned by one List call.
const ListLimit = 100

// DefaultCacheControl is sent with every upload.
const DefaultCacheControl = "max-age=3600"

// PutOptions tune a single Put.
type PutOptions struct {
	CacheControl string
	ContentType  string
	// Overwrite is never set by the controller; stores reject existing keys
	// with common.ErrAlreadyExists unless it is true.
	Overwrite bool
}

// Store is a façade over an object-storage backend scoped by user prefix.
//
// Implementations wrap backend failures with common.ErrStoreUnavailable and
// make Remove idempotent.
type Store interface {
	List(ctx context.Context, userID string) ([]Certificate, error)
	Put(ctx context.Context, key string, body []byte, opts PutOptions) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

// SortNewestFirst orders certs by CreatedAt descending, breaking ties by
// StoredName descending, and truncates the result to ListLimit.
func SortNewestFirst(certs []Certificate) []Certificate {
	sort.SliceStable(certs, func(i, j int) bool {
		if !certs[i].CreatedAt.Equal(certs[j].CreatedAt) {
			return certs[i].CreatedAt.After(certs[j].CreatedAt)
		}
		return certs[i].StoredName > certs[j].StoredName
	})
	if len(certs) > ListLimit {
		certs = certs[:ListLimit]
	}
	return certs
}

// PublicURL builds "{baseURL}/{bucket}/{key}" without doubled slashes.
func PublicURL(baseURL, bucket, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.Trim(bucket, "/") + "/" + strings.TrimLeft(key, "/")
}
