package vault

import (
	"strings"
	"time"
)

// Certificate is one stored file as seen through a listing.
type Certificate struct {
	Key              string
	StoredName       string
	OriginalFileName string
	SizeBytes        int64
	ContentType      string
	CreatedAt        time.Time
}

// NewCertificate builds a Certificate from its key and backend attributes.
// StoredName and OriginalFileName are derived from the key.
func NewCertificate(key string, size int64, contentType string, createdAt time.Time) Certificate {
	stored := StoredNameFromKey(key)
	return Certificate{
		Key:              key,
		StoredName:       stored,
		OriginalFileName: OriginalFileName(stored),
		SizeBytes:        size,
		ContentType:      contentType,
		CreatedAt:        createdAt,
	}
}

// Matches reports whether the certificate's display name contains term,
// ignoring case. An empty term matches everything.
func (c Certificate) Matches(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.OriginalFileName), strings.ToLower(term))
}
