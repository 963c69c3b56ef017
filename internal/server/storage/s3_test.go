package storage

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/credhex/internal/common"
	sc "github.com/dmitrijs2005/credhex/internal/server/config"
	"github.com/dmitrijs2005/credhex/internal/vault"
)

type fakeS3 struct {
	pages     []*s3.ListObjectsV2Output
	listErr   error
	listCalls []*s3.ListObjectsV2Input

	putErr  error
	puts    []*s3.PutObjectInput
	putBody []byte

	deleteErr error
	deletes   []string

	headErr   error
	createErr error
	created   bool
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listCalls = append(f.listCalls, in)
	if f.listErr != nil {
		return nil, f.listErr
	}
	i := 0
	if in.ContinuationToken != nil {
		i, _ = strconv.Atoi(*in.ContinuationToken)
	}
	return f.pages[i], nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	if in.Body != nil {
		f.putBody, _ = io.ReadAll(in.Body)
	}
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(context.Context, *s3.CreateBucketInput, ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = true
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

type fakePresign struct {
	err error
	ttl time.Duration
	key string
}

func (f *fakePresign) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var o s3.PresignOptions
	for _, fn := range optFns {
		fn(&o)
	}
	f.ttl = o.Expires
	f.key = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "http://minio/certificates/" + f.key + "?X-Amz-Signature=x", Method: "GET"}, nil
}

func object(key string, size int64, at time.Time) types.Object {
	return types.Object{Key: aws.String(key), Size: aws.Int64(size), LastModified: aws.Time(at)}
}

var base = time.UnixMilli(1700000000000).UTC()

func TestS3Store_List_PaginatesSortsAndFilters(t *testing.T) {
	f := &fakeS3{pages: []*s3.ListObjectsV2Output{
		{
			Contents: []types.Object{
				object("u1/1700000000000_a.pdf", 10, base),
				object("u1/", 0, base.Add(time.Hour)),
			},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("1"),
		},
		{
			Contents: []types.Object{
				object("u1/1700000001000_b.png", 20, base.Add(time.Second)),
			},
			IsTruncated: aws.Bool(false),
		},
	}}
	s := newS3Store(f, &fakePresign{}, "certificates", "http://minio:9000")

	certs, err := s.List(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, certs, 2)
	assert.Equal(t, "1700000001000_b.png", certs[0].StoredName)
	assert.Equal(t, "b.png", certs[0].OriginalFileName)
	assert.Equal(t, int64(20), certs[0].SizeBytes)
	assert.Equal(t, "u1/1700000000000_a.pdf", certs[1].Key)

	require.Len(t, f.listCalls, 2)
	assert.Equal(t, "u1/", aws.ToString(f.listCalls[0].Prefix))
	assert.Equal(t, "certificates", aws.ToString(f.listCalls[0].Bucket))
}

func TestS3Store_List_EmptyAndCapped(t *testing.T) {
	empty := &fakeS3{pages: []*s3.ListObjectsV2Output{{IsTruncated: aws.Bool(false)}}}
	certs, err := newS3Store(empty, nil, "b", "").List(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, certs)
	assert.Empty(t, certs)

	var many []types.Object
	for i := 0; i < 150; i++ {
		at := base.Add(time.Duration(i) * time.Millisecond)
		many = append(many, object(vault.ComputeStorageKey("u1", "f.pdf", at), 1, at))
	}
	full := &fakeS3{pages: []*s3.ListObjectsV2Output{{Contents: many, IsTruncated: aws.Bool(false)}}}
	certs, err = newS3Store(full, nil, "b", "").List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, certs, vault.ListLimit)
	assert.Equal(t, base.Add(149*time.Millisecond), certs[0].CreatedAt)
}

func TestS3Store_List_BackendFailure(t *testing.T) {
	f := &fakeS3{listErr: errors.New("connection refused")}
	_, err := newS3Store(f, nil, "b", "").List(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Len(t, f.listCalls, 1, "no retry")
}

func TestS3Store_Put(t *testing.T) {
	f := &fakeS3{}
	s := newS3Store(f, nil, "certificates", "")

	err := s.Put(context.Background(), "u1/1_a.pdf", []byte("%PDF"), vault.PutOptions{
		CacheControl: vault.DefaultCacheControl,
		ContentType:  vault.ContentTypePDF,
	})
	require.NoError(t, err)

	require.Len(t, f.puts, 1)
	in := f.puts[0]
	assert.Equal(t, "u1/1_a.pdf", aws.ToString(in.Key))
	assert.Equal(t, "*", aws.ToString(in.IfNoneMatch))
	assert.Equal(t, "application/pdf", aws.ToString(in.ContentType))
	assert.Equal(t, "max-age=3600", aws.ToString(in.CacheControl))
	assert.Equal(t, int64(4), aws.ToInt64(in.ContentLength))
	assert.Equal(t, map[string]string{"size": "4"}, in.Metadata)
	assert.Equal(t, []byte("%PDF"), f.putBody)
}

func TestS3Store_Put_Overwrite(t *testing.T) {
	f := &fakeS3{}
	require.NoError(t, newS3Store(f, nil, "b", "").Put(context.Background(), "u1/k", nil, vault.PutOptions{Overwrite: true}))
	assert.Nil(t, f.puts[0].IfNoneMatch)
	assert.Nil(t, f.puts[0].ContentType)
}

func TestS3Store_Put_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"precondition", &smithy.GenericAPIError{Code: "PreconditionFailed"}, common.ErrAlreadyExists},
		{"conflict", &smithy.GenericAPIError{Code: "ConditionalRequestConflict"}, common.ErrAlreadyExists},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, common.ErrStoreUnavailable},
		{"network", errors.New("dial tcp: timeout"), common.ErrStoreUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeS3{putErr: tt.err}
			err := newS3Store(f, nil, "b", "").Put(context.Background(), "u1/k", []byte("x"), vault.PutOptions{})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestS3Store_Remove(t *testing.T) {
	f := &fakeS3{}
	s := newS3Store(f, nil, "b", "")
	require.NoError(t, s.Remove(context.Background(), "u1/k"))
	require.NoError(t, s.Remove(context.Background(), "u1/k"))
	assert.Equal(t, []string{"u1/k", "u1/k"}, f.deletes)

	f.deleteErr = &smithy.GenericAPIError{Code: "NoSuchKey"}
	require.NoError(t, s.Remove(context.Background(), "u1/gone"))

	f.deleteErr = errors.New("boom")
	require.ErrorIs(t, s.Remove(context.Background(), "u1/k"), common.ErrStoreUnavailable)
}

func TestS3Store_PublicURL(t *testing.T) {
	s := newS3Store(&fakeS3{}, nil, "certificates", "http://minio:9000/")
	assert.Equal(t, "http://minio:9000/certificates/u1/1_a.pdf", s.PublicURL("u1/1_a.pdf"))
}

func TestS3Store_PresignedGetURL(t *testing.T) {
	p := &fakePresign{}
	s := newS3Store(&fakeS3{}, p, "certificates", "")

	url, err := s.PresignedGetURL(context.Background(), "u1/1_a.pdf", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "u1/1_a.pdf")
	assert.Equal(t, 5*time.Minute, p.ttl)

	p.err = errors.New("sign")
	_, err = s.PresignedGetURL(context.Background(), "u1/1_a.pdf", time.Minute)
	require.Error(t, err)
}

func TestS3Store_EnsureBucket(t *testing.T) {
	exists := &fakeS3{}
	require.NoError(t, newS3Store(exists, nil, "b", "").EnsureBucket(context.Background()))
	assert.False(t, exists.created)

	missing := &fakeS3{headErr: &types.NotFound{}}
	require.NoError(t, newS3Store(missing, nil, "b", "").EnsureBucket(context.Background()))
	assert.True(t, missing.created)

	race := &fakeS3{headErr: &types.NotFound{}, createErr: &types.BucketAlreadyOwnedByYou{}}
	require.NoError(t, newS3Store(race, nil, "b", "").EnsureBucket(context.Background()))

	down := &fakeS3{headErr: errors.New("refused")}
	require.ErrorIs(t, newS3Store(down, nil, "b", "").EnsureBucket(context.Background()), common.ErrStoreUnavailable)
}

func TestNewS3Store_Seams(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
	})

	cfg := &sc.Config{
		S3Region:        "us-east-1",
		S3RootUser:      "minioadmin",
		S3RootPassword:  "minioadmin",
		S3BaseEndpoint:  "http://127.0.0.1:9000",
		S3PublicBaseURL: "https://files.example.com",
		S3Bucket:        "certificates",
		S3UsePathStyle:  true,
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(_ aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		require.NotNil(t, c)
		return &s3.PresignClient{}
	}

	s, err := NewS3Store(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "https://files.example.com/certificates/u1/k", s.PublicURL("u1/k"))

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewS3Store(context.Background(), cfg)
	require.ErrorContains(t, err, "load-fail")
}
