package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/credhex/internal/api"
	"github.com/dmitrijs2005/credhex/internal/common"
	"github.com/dmitrijs2005/credhex/internal/server/auth"
	"github.com/dmitrijs2005/credhex/internal/vault"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {
	defer common.WipeByteArray(req.Password)

	u, err := s.users.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, api.ToStatus(err)
	}
	return &api.RegisterResponse{UserID: u.ID}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	defer common.WipeByteArray(req.Password)

	tokens, u, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, api.ToStatus(err)
	}
	return &api.LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         api.UserInfo{ID: u.ID, Email: u.Email},
	}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, api.ToStatus(err)
	}
	return &api.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

// CurrentUser answers with a nil user when the account is gone.
func (s *GRPCServer) CurrentUser(ctx context.Context, req *api.CurrentUserRequest) (*api.CurrentUserResponse, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.users.CurrentUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &api.CurrentUserResponse{}, nil
		}
		return nil, api.ToStatus(err)
	}
	return &api.CurrentUserResponse{User: &api.UserInfo{ID: u.ID, Email: u.Email}}, nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *api.SignOutRequest) (*api.SignOutResponse, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.SignOut(ctx, claims, req.RefreshToken); err != nil {
		return nil, api.ToStatus(err)
	}
	return &api.SignOutResponse{}, nil
}

func (s *GRPCServer) ListCertificates(ctx context.Context, req *api.ListCertificatesRequest) (*api.ListCertificatesResponse, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if req.UserID != "" && req.UserID != claims.UserID {
		return nil, api.ToStatus(common.ErrForbiddenKey)
	}

	certs, err := s.vault.List(ctx, claims.UserID)
	if err != nil {
		return nil, api.ToStatus(err)
	}

	resp := &api.ListCertificatesResponse{Certificates: make([]api.Certificate, 0, len(certs))}
	for _, c := range certs {
		resp.Certificates = append(resp.Certificates, toAPICertificate(c))
	}
	return resp, nil
}

func (s *GRPCServer) PutCertificate(ctx context.Context, req *api.PutCertificateRequest) (*api.PutCertificateResponse, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.vault.Put(ctx, claims.UserID, req.Key, req.ContentType, req.CacheControl, req.Data); err != nil {
		return nil, api.ToStatus(err)
	}
	return &api.PutCertificateResponse{}, nil
}

func (s *GRPCServer) RemoveCertificate(ctx context.Context, req *api.RemoveCertificateRequest) (*api.RemoveCertificateResponse, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.vault.Remove(ctx, claims.UserID, req.Key); err != nil {
		return nil, api.ToStatus(err)
	}
	return &api.RemoveCertificateResponse{}, nil
}

func (s *GRPCServer) GetDownloadURL(ctx context.Context, req *api.GetDownloadURLRequest) (*api.GetDownloadURLResponse, error) {
	claims, err := requireClaims(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.vault.DownloadURL(ctx, claims.UserID, req.Key, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		return nil, api.ToStatus(err)
	}
	return &api.GetDownloadURLResponse{URL: url}, nil
}

func requireClaims(ctx context.Context) (*auth.Claims, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	return claims, nil
}

func toAPICertificate(c vault.Certificate) api.Certificate {
	return api.Certificate{
		Key:         c.Key,
		SizeBytes:   c.SizeBytes,
		ContentType: c.ContentType,
		CreatedAt:   c.CreatedAt,
	}
}
