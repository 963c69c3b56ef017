package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/credhex/internal/api"
	"github.com/dmitrijs2005/credhex/internal/client/session"
	"github.com/dmitrijs2005/credhex/internal/common"
	"github.com/dmitrijs2005/credhex/internal/vault"
)

// ErrUnavailable is returned by Ping when the server answers but is not healthy.
var ErrUnavailable = errors.New("server unavailable")

type GRPCClient struct {
	endpointURL   string
	publicBaseURL string
	bucket        string

	conn   *grpc.ClientConn
	client api.VaultServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

var (
	_ vault.Store              = (*GRPCClient)(nil)
	_ session.IdentityProvider = (*GRPCClient)(nil)
)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

// SignedIn reports whether the client holds an access token.
func (s *GRPCClient) SignedIn() bool {
	access, _ := s.tokens()
	return access != ""
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, refresh := s.tokens()

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" || method == api.FullMethod(api.MethodRefreshToken) {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return err
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

// NewCredHexClient connects to endpointURL. publicBaseURL and bucket are
// used to build public object URLs without a round trip.
func NewCredHexClient(endpointURL, publicBaseURL, bucket string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, publicBaseURL: publicBaseURL, bucket: bucket}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

// InitGRPCClient creates the connection. Extra options are appended after
// the defaults.
func (s *GRPCClient) InitGRPCClient(extra ...grpc.DialOption) error {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallSendMsgSize(api.MaxMessageSize),
			grpc.MaxCallRecvMsgSize(api.MaxMessageSize),
		),
	}
	conn, err := grpc.NewClient(s.endpointURL, append(opts, extra...)...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewVaultServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	return api.FromStatus(err)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// Register creates an account and returns its id. It does not sign in.
func (s *GRPCClient) Register(ctx context.Context, email string, password []byte) (string, error) {
	resp, err := s.client.Register(ctx, &api.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.UserID, nil
}

func (s *GRPCClient) Login(ctx context.Context, email string, password []byte) (*session.User, error) {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return &session.User{ID: resp.User.ID, Email: resp.User.Email}, nil
}

// CurrentUser returns nil without error when the client holds no usable
// credentials.
func (s *GRPCClient) CurrentUser(ctx context.Context) (*session.User, error) {
	if !s.SignedIn() {
		return nil, nil
	}

	resp, err := s.client.CurrentUser(ctx, &api.CurrentUserRequest{})
	if err != nil {
		err = s.mapError(err)
		if isAuthError(err) {
			s.setTokens("", "")
			return nil, nil
		}
		return nil, err
	}
	if resp.User == nil {
		return nil, nil
	}
	return &session.User{ID: resp.User.ID, Email: resp.User.Email}, nil
}

// SignOut revokes the session on the server and forgets the tokens
// locally whatever the outcome.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	access, refresh := s.tokens()
	if access == "" {
		return nil
	}
	defer s.setTokens("", "")

	_, err := s.client.SignOut(ctx, &api.SignOutRequest{RefreshToken: refresh})
	if err != nil {
		err = s.mapError(err)
		if isAuthError(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *GRPCClient) List(ctx context.Context, userID string) ([]vault.Certificate, error) {
	resp, err := s.client.ListCertificates(ctx, &api.ListCertificatesRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}

	certs := make([]vault.Certificate, 0, len(resp.Certificates))
	for _, c := range resp.Certificates {
		certs = append(certs, vault.NewCertificate(c.Key, c.SizeBytes, c.ContentType, c.CreatedAt))
	}
	return vault.SortNewestFirst(certs), nil
}

// Put uploads body under key. Overwrite is not supported remotely; the
// server always rejects existing keys.
func (s *GRPCClient) Put(ctx context.Context, key string, body []byte, opts vault.PutOptions) error {
	_, err := s.client.PutCertificate(ctx, &api.PutCertificateRequest{
		Key:          key,
		ContentType:  opts.ContentType,
		CacheControl: opts.CacheControl,
		Data:         body,
	})
	return s.mapError(err)
}

func (s *GRPCClient) Remove(ctx context.Context, key string) error {
	_, err := s.client.RemoveCertificate(ctx, &api.RemoveCertificateRequest{Key: key})
	return s.mapError(err)
}

func (s *GRPCClient) PublicURL(key string) string {
	return vault.PublicURL(s.publicBaseURL, s.bucket, key)
}

// DownloadURL asks the server for a presigned GET URL. A zero ttl lets the
// server pick its default.
func (s *GRPCClient) DownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	resp, err := s.client.GetDownloadURL(ctx, &api.GetDownloadURLRequest{Key: key, TTLSeconds: int64(ttl / time.Second)})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.URL, nil
}

func isAuthError(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) ||
		errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrRefreshTokenExpired)
}
