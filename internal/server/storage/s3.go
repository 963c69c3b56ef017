// Package storage implements vault.Store over an S3-compatible bucket.
// Every user's certificates live under "{userID}/"; the bucket itself is
// shared.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/credhex/internal/common"
	sc "github.com/dmitrijs2005/credhex/internal/server/config"
	"github.com/dmitrijs2005/credhex/internal/vault"
)

// MetadataSize is the user metadata key holding the upload size in bytes.
const MetadataSize = "size"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
)

// objectAPI is the subset of *s3.Client the store uses.
type objectAPI interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store is the S3 Vault Store Adapter.
type S3Store struct {
	client        objectAPI
	presign       presignAPI
	bucket        string
	publicBaseURL string
}

var _ vault.Store = (*S3Store)(nil)

// NewS3Store builds a store from server config using static credentials
// and a custom base endpoint (MinIO in development).
func NewS3Store(ctx context.Context, c *sc.Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		}
		o.UsePathStyle = c.S3UsePathStyle
	})

	return newS3Store(client, newS3PresignClient(client), c.S3Bucket, c.PublicBaseURL()), nil
}

func newS3Store(client objectAPI, presign presignAPI, bucket, publicBaseURL string) *S3Store {
	return &S3Store{client: client, presign: presign, bucket: bucket, publicBaseURL: publicBaseURL}
}

// EnsureBucket creates the bucket when HeadBucket cannot find it.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !hasErrorCode(err, "NotFound", "NoSuchBucket") {
		return unavailable("head bucket "+s.bucket, err)
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil && !hasErrorCode(err, "BucketAlreadyOwnedByYou", "BucketAlreadyExists") {
		return unavailable("create bucket "+s.bucket, err)
	}
	return nil
}

// List returns up to vault.ListLimit certificates under userID's prefix,
// newest first. All pages are read so the ordering is global.
func (s *S3Store) List(ctx context.Context, userID string) ([]vault.Certificate, error) {
	prefix := vault.UserPrefix(userID)

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	certs := make([]vault.Certificate, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, unavailable("list "+prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !vault.OwnsKey(userID, key) {
				continue
			}
			certs = append(certs, vault.NewCertificate(key, aws.ToInt64(obj.Size), "", aws.ToTime(obj.LastModified)))
		}
	}

	return vault.SortNewestFirst(certs), nil
}

// Put uploads body under key. Unless opts.Overwrite is set the write is
// conditional and an existing key yields common.ErrAlreadyExists.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, opts vault.PutOptions) error {
	size := int64(len(body))

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(size),
		Metadata:      map[string]string{MetadataSize: strconv.FormatInt(size, 10)},
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		in.CacheControl = aws.String(opts.CacheControl)
	}
	if !opts.Overwrite {
		in.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		if hasErrorCode(err, "PreconditionFailed", "ConditionalRequestConflict") {
			return fmt.Errorf("put %s: %w", key, common.ErrAlreadyExists)
		}
		return unavailable("put "+key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key succeeds.
func (s *S3Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !hasErrorCode(err, "NoSuchKey", "NotFound") {
		return unavailable("remove "+key, err)
	}
	return nil
}

func (s *S3Store) PublicURL(key string) string {
	return vault.PublicURL(s.publicBaseURL, s.bucket, key)
}

// PresignedGetURL returns a time-limited GET URL for key.
func (s *S3Store) PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return req.URL, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStoreUnavailable, err)
}

func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, c := range codes {
		if apiErr.ErrorCode() == c {
			return true
		}
	}
	return false
}
