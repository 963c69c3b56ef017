package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credhex/internal/common"
	"github.com/dmitrijs2005/credhex/internal/logging"
	"github.com/dmitrijs2005/credhex/internal/server/metrics"
	"github.com/dmitrijs2005/credhex/internal/vault"
)

// MaxDownloadURLTTL is the longest lifetime S3 accepts for a presigned URL.
const MaxDownloadURLTTL = 7 * 24 * time.Hour

// ObjectStore is the vault store plus presigned downloads.
type ObjectStore interface {
	vault.Store
	PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// VaultService scopes every store call to the caller's own prefix.
type VaultService struct {
	store       ObjectStore
	metrics     *metrics.Metrics
	logger      logging.Logger
	downloadTTL time.Duration
}

func NewVaultService(store ObjectStore, m *metrics.Metrics, logger logging.Logger, downloadTTL time.Duration) *VaultService {
	return &VaultService{store: store, metrics: m, logger: logger, downloadTTL: downloadTTL}
}

// List returns the caller's certificates, newest first.
func (s *VaultService) List(ctx context.Context, userID string) ([]vault.Certificate, error) {
	certs, err := s.store.List(ctx, userID)
	s.count("list", err)
	if err != nil {
		s.logger.Error(ctx, "list certificates failed", "user_id", userID, "error", err)
		return nil, err
	}
	return certs, nil
}

// Put validates and stores one upload. The key must lie inside the
// caller's namespace; existing keys are never overwritten.
func (s *VaultService) Put(ctx context.Context, userID, key, contentType, cacheControl string, data []byte) error {
	if !vault.OwnsKey(userID, key) {
		s.metrics.VaultOp("put", metrics.ResultRejected)
		return common.ErrForbiddenKey
	}

	f := vault.File{
		Name:      vault.OriginalFileName(vault.StoredNameFromKey(key)),
		Type:      contentType,
		SizeBytes: int64(len(data)),
		Data:      data,
	}
	if err := vault.Validate(f); err != nil {
		s.metrics.VaultOp("put", metrics.ResultRejected)
		return err
	}

	if cacheControl == "" {
		cacheControl = vault.DefaultCacheControl
	}

	err := s.store.Put(ctx, key, data, vault.PutOptions{CacheControl: cacheControl, ContentType: contentType})
	s.count("put", err)
	if err != nil {
		s.logger.Warn(ctx, "put certificate failed", "key", key, "error", err)
		return err
	}

	s.metrics.AddUploadedBytes(f.SizeBytes)
	s.logger.Info(ctx, "certificate uploaded", "key", key, "size", f.SizeBytes)
	return nil
}

// Remove deletes a certificate of the caller. Missing keys are not an error.
func (s *VaultService) Remove(ctx context.Context, userID, key string) error {
	if !vault.OwnsKey(userID, key) {
		s.metrics.VaultOp("remove", metrics.ResultRejected)
		return common.ErrForbiddenKey
	}

	err := s.store.Remove(ctx, key)
	s.count("remove", err)
	if err != nil {
		s.logger.Warn(ctx, "remove certificate failed", "key", key, "error", err)
		return err
	}

	s.logger.Info(ctx, "certificate removed", "key", key)
	return nil
}

// DownloadURL presigns a GET for key. A non-positive ttl selects the
// configured default; anything above MaxDownloadURLTTL is capped.
func (s *VaultService) DownloadURL(ctx context.Context, userID, key string, ttl time.Duration) (string, error) {
	if !vault.OwnsKey(userID, key) {
		return "", common.ErrForbiddenKey
	}
	if ttl <= 0 {
		ttl = s.downloadTTL
	}
	if ttl > MaxDownloadURLTTL {
		ttl = MaxDownloadURLTTL
	}

	url, err := s.store.PresignedGetURL(ctx, key, ttl)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return url, nil
}

func (s *VaultService) count(op string, err error) {
	switch {
	case err == nil:
		s.metrics.VaultOp(op, metrics.ResultOK)
	case errors.Is(err, common.ErrAlreadyExists):
		s.metrics.VaultOp(op, metrics.ResultRejected)
	default:
		s.metrics.VaultOp(op, metrics.ResultError)
	}
}
