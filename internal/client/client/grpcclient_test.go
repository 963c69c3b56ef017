package client

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/credhex/internal/api"
	"github.com/dmitrijs2005/credhex/internal/client/session"
	"github.com/dmitrijs2005/credhex/internal/common"
	"github.com/dmitrijs2005/credhex/internal/vault"
)

// fakeServer accepts access token "a1" until expired is set, and "a2"
// after a refresh with "r1".
type fakeServer struct {
	api.UnimplementedVaultServiceServer

	mu        sync.Mutex
	expired   bool
	refreshes int
	objects   map[string]api.Certificate
	listErr   error
	signedOut string
	ttl       int64
}

func (f *fakeServer) authorize(ctx context.Context) error {
	md, _ := metadata.FromIncomingContext(ctx)
	toks := md.Get(common.AccessTokenHeaderName)
	if len(toks) == 0 {
		return api.ToStatus(common.ErrorUnauthorized)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case toks[0] == "a1" && f.expired:
		return api.ToStatus(common.ErrTokenExpired)
	case toks[0] == "a1", toks[0] == "a2":
		return nil
	}
	return api.ToStatus(common.ErrInvalidToken)
}

func (f *fakeServer) Ping(context.Context, *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (f *fakeServer) Register(_ context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	if len(req.Password) < 6 {
		return nil, api.ToStatus(common.ErrWeakPassword)
	}
	return &api.RegisterResponse{UserID: "u-new"}, nil
}

func (f *fakeServer) Login(_ context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	if string(req.Password) != "secret1" {
		return nil, api.ToStatus(common.ErrorUnauthorized)
	}
	return &api.LoginResponse{AccessToken: "a1", RefreshToken: "r1", User: api.UserInfo{ID: "u1", Email: req.Email}}, nil
}

func (f *fakeServer) RefreshToken(_ context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.RefreshToken != "r1" {
		return nil, api.ToStatus(common.ErrInvalidToken)
	}
	f.refreshes++
	return &api.RefreshTokenResponse{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (f *fakeServer) CurrentUser(ctx context.Context, _ *api.CurrentUserRequest) (*api.CurrentUserResponse, error) {
	if err := f.authorize(ctx); err != nil {
		return nil, err
	}
	return &api.CurrentUserResponse{User: &api.UserInfo{ID: "u1", Email: "a@b.c"}}, nil
}

func (f *fakeServer) SignOut(ctx context.Context, req *api.SignOutRequest) (*api.SignOutResponse, error) {
	if err := f.authorize(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.signedOut = req.RefreshToken
	f.mu.Unlock()
	return &api.SignOutResponse{}, nil
}

func (f *fakeServer) ListCertificates(ctx context.Context, req *api.ListCertificatesRequest) (*api.ListCertificatesResponse, error) {
	if err := f.authorize(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	resp := &api.ListCertificatesResponse{}
	for _, c := range f.objects {
		if vault.OwnsKey(req.UserID, c.Key) {
			resp.Certificates = append(resp.Certificates, c)
		}
	}
	return resp, nil
}

func (f *fakeServer) PutCertificate(ctx context.Context, req *api.PutCertificateRequest) (*api.PutCertificateResponse, error) {
	if err := f.authorize(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[req.Key]; ok {
		return nil, api.ToStatus(common.ErrAlreadyExists)
	}
	f.objects[req.Key] = api.Certificate{
		Key:         req.Key,
		SizeBytes:   int64(len(req.Data)),
		ContentType: req.ContentType,
		CreatedAt:   time.Unix(int64(len(f.objects)), 0).UTC(),
	}
	return &api.PutCertificateResponse{}, nil
}

func (f *fakeServer) RemoveCertificate(ctx context.Context, req *api.RemoveCertificateRequest) (*api.RemoveCertificateResponse, error) {
	if err := f.authorize(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	delete(f.objects, req.Key)
	f.mu.Unlock()
	return &api.RemoveCertificateResponse{}, nil
}

func (f *fakeServer) GetDownloadURL(ctx context.Context, req *api.GetDownloadURLRequest) (*api.GetDownloadURLResponse, error) {
	if err := f.authorize(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.ttl = req.TTLSeconds
	f.mu.Unlock()
	return &api.GetDownloadURLResponse{URL: "https://signed/" + req.Key}, nil
}

func startClient(t *testing.T) (*GRPCClient, *fakeServer) {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	fake := &fakeServer{objects: map[string]api.Certificate{}}
	api.RegisterVaultServiceServer(srv, fake)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c := &GRPCClient{endpointURL: "passthrough:///bufnet", publicBaseURL: "http://127.0.0.1:9000/", bucket: "certificates"}
	err := c.InitGRPCClient(grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, fake
}

func login(t *testing.T, c *GRPCClient) {
	t.Helper()
	u, err := c.Login(context.Background(), "a@b.c", []byte("secret1"))
	require.NoError(t, err)
	require.Equal(t, &session.User{ID: "u1", Email: "a@b.c"}, u)
}

func TestGRPCClient_Ping(t *testing.T) {
	c, _ := startClient(t)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestGRPCClient_Register(t *testing.T) {
	c, _ := startClient(t)

	id, err := c.Register(context.Background(), "a@b.c", []byte("secret1"))
	require.NoError(t, err)
	assert.Equal(t, "u-new", id)

	_, err = c.Register(context.Background(), "a@b.c", []byte("123"))
	assert.ErrorIs(t, err, common.ErrWeakPassword)
}

func TestGRPCClient_LoginFailure(t *testing.T) {
	c, _ := startClient(t)

	_, err := c.Login(context.Background(), "a@b.c", []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.False(t, c.SignedIn())
}

func TestGRPCClient_CurrentUser(t *testing.T) {
	c, _ := startClient(t)

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u, "no user before login")

	login(t, c)

	u, err = c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &session.User{ID: "u1", Email: "a@b.c"}, u)
}

func TestGRPCClient_CurrentUser_InvalidTokenMeansNobody(t *testing.T) {
	c, _ := startClient(t)
	c.setTokens("garbage", "")

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.False(t, c.SignedIn())
}

func TestGRPCClient_RefreshesExpiredAccessToken(t *testing.T) {
	c, fake := startClient(t)
	login(t, c)

	fake.mu.Lock()
	fake.expired = true
	fake.mu.Unlock()

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, u)

	access, refresh := c.tokens()
	assert.Equal(t, "a2", access)
	assert.Equal(t, "r2", refresh)
	fake.mu.Lock()
	assert.Equal(t, 1, fake.refreshes)
	fake.mu.Unlock()
}

func TestAccessTokenInterceptor_PassesThroughOtherErrors(t *testing.T) {
	c := &GRPCClient{accessToken: "A1", refreshToken: "R1"}

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		md, _ := metadata.FromOutgoingContext(ctx)
		assert.Equal(t, []string{"A1"}, md.Get(common.AccessTokenHeaderName))
		return status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	err := c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestAccessTokenInterceptor_NoTokenNoHeader(t *testing.T) {
	c := &GRPCClient{}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		assert.Empty(t, md.Get(common.AccessTokenHeaderName))
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestGRPCClient_Certificates(t *testing.T) {
	c, fake := startClient(t)
	login(t, c)
	ctx := context.Background()

	opts := vault.PutOptions{ContentType: vault.ContentTypePDF, CacheControl: vault.DefaultCacheControl}
	require.NoError(t, c.Put(ctx, "u1/1700000000000_a.pdf", []byte("one"), opts))
	require.NoError(t, c.Put(ctx, "u1/1700000000001_b.pdf", []byte("three"), opts))

	err := c.Put(ctx, "u1/1700000000000_a.pdf", []byte("again"), opts)
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	certs, err := c.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, certs, 2)
	assert.Equal(t, "b.pdf", certs[0].OriginalFileName)
	assert.Equal(t, int64(5), certs[0].SizeBytes)
	assert.Equal(t, "1700000000000_a.pdf", certs[1].StoredName)

	require.NoError(t, c.Remove(ctx, "u1/1700000000000_a.pdf"))
	certs, err = c.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, certs, 1)

	url, err := c.DownloadURL(ctx, "u1/1700000000001_b.pdf", 2*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://signed/u1/1700000000001_b.pdf", url)
	fake.mu.Lock()
	assert.Equal(t, int64(120), fake.ttl)
	fake.mu.Unlock()
}

func TestGRPCClient_ListUnavailable(t *testing.T) {
	c, fake := startClient(t)
	login(t, c)
	fake.mu.Lock()
	fake.listErr = api.ToStatus(common.ErrStoreUnavailable)
	fake.mu.Unlock()

	_, err := c.List(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestGRPCClient_SignOut(t *testing.T) {
	c, fake := startClient(t)
	login(t, c)

	require.NoError(t, c.SignOut(context.Background()))
	assert.False(t, c.SignedIn())
	fake.mu.Lock()
	assert.Equal(t, "r1", fake.signedOut)
	fake.mu.Unlock()

	// nothing to do once signed out
	require.NoError(t, c.SignOut(context.Background()))
}

func TestGRPCClient_PublicURL(t *testing.T) {
	c := &GRPCClient{publicBaseURL: "http://127.0.0.1:9000/", bucket: "certificates"}
	assert.Equal(t, "http://127.0.0.1:9000/certificates/u1/1_a.pdf", c.PublicURL("u1/1_a.pdf"))
}
