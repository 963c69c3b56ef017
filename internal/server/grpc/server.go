// Package grpc serves credhex.v1.VaultService.
package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/credhex/internal/api"
	"github.com/dmitrijs2005/credhex/internal/logging"
	"github.com/dmitrijs2005/credhex/internal/server/auth"
	"github.com/dmitrijs2005/credhex/internal/server/metrics"
	"github.com/dmitrijs2005/credhex/internal/server/models"
	"github.com/dmitrijs2005/credhex/internal/server/revocation"
	"github.com/dmitrijs2005/credhex/internal/server/services"
	"github.com/dmitrijs2005/credhex/internal/vault"
)

// UserService is the identity side consumed by the handlers.
type UserService interface {
	Register(ctx context.Context, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*services.TokenPair, *models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	SignOut(ctx context.Context, claims *auth.Claims, refreshToken string) error
}

// VaultService is the certificate side consumed by the handlers.
type VaultService interface {
	List(ctx context.Context, userID string) ([]vault.Certificate, error)
	Put(ctx context.Context, userID, key, contentType, cacheControl string, data []byte) error
	Remove(ctx context.Context, userID, key string) error
	DownloadURL(ctx context.Context, userID, key string, ttl time.Duration) (string, error)
}

type GRPCServer struct {
	api.UnimplementedVaultServiceServer
	address   string
	users     UserService
	vault     VaultService
	revoked   revocation.Store
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(address string, l logging.Logger, us UserService, vs VaultService,
	revoked revocation.Store, m *metrics.Metrics, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		vault:     vs,
		revoked:   revoked,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
}

// newServer builds the grpc.Server with the interceptor chain and message
// limits, and registers the service on it.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
		grpc.MaxRecvMsgSize(api.MaxMessageSize),
		grpc.MaxSendMsgSize(api.MaxMessageSize),
	)
	api.RegisterVaultServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
