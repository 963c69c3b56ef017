package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/credhex/internal/api"
	"github.com/dmitrijs2005/credhex/internal/common"
	"github.com/dmitrijs2005/credhex/internal/server/auth"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "x-request-id"

type ctxKey string

const claimsKey ctxKey = "claims"

// publicMethods need no access token.
var publicMethods = map[string]struct{}{
	api.FullMethod(api.MethodPing):         {},
	api.FullMethod(api.MethodRegister):     {},
	api.FullMethod(api.MethodLogin):        {},
	api.FullMethod(api.MethodRefreshToken): {},
}

func withClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

func firstMetadata(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// accessTokenInterceptor verifies the access token of every non-public
// method and rejects tokens that were signed out.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	accessToken := firstMetadata(ctx, common.AccessTokenHeaderName)
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, api.ToStatus(err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error(ctx, "revocation check failed", "error", err)
		return nil, status.Error(codes.Unavailable, "revocation check failed")
	}
	if revoked {
		return nil, api.ToStatus(common.ErrInvalidToken)
	}

	return handler(withClaims(ctx, claims), req)
}

// loggingInterceptor tags the call with a request id, logs its outcome and
// records RPC metrics.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	requestID := firstMetadata(ctx, RequestIDHeader)
	if requestID == "" {
		requestID = ulid.Make().String()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

	method := info.FullMethod[strings.LastIndex(info.FullMethod, "/")+1:]
	log := s.logger.With("request_id", requestID, "method", method)

	resp, err := handler(ctx, req)

	code := status.Code(err)
	elapsed := time.Since(start)
	s.metrics.ObserveRPC(method, code.String(), elapsed)

	switch code {
	case codes.OK:
		log.Info(ctx, "request handled", "duration", elapsed)
	case codes.Internal, codes.Unavailable, codes.Unknown:
		log.Error(ctx, "request failed", "code", code.String(), "error", err, "duration", elapsed)
	default:
		log.Warn(ctx, "request rejected", "code", code.String(), "error", err, "duration", elapsed)
	}

	return resp, err
}
