// Package api is the wire contract between credhex-server and its clients:
// the VaultService descriptor, its request/response messages and the JSON
// codec they travel with.
package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "credhex.v1.VaultService"

// MaxMessageSize fits a 10 MiB certificate after base64 expansion.
const MaxMessageSize = 16 << 20

const (
	MethodPing              = "Ping"
	MethodRegister          = "Register"
	MethodLogin             = "Login"
	MethodRefreshToken      = "RefreshToken"
	MethodCurrentUser       = "CurrentUser"
	MethodSignOut           = "SignOut"
	MethodListCertificates  = "ListCertificates"
	MethodPutCertificate    = "PutCertificate"
	MethodRemoveCertificate = "RemoveCertificate"
	MethodGetDownloadURL    = "GetDownloadURL"
)

// FullMethod returns "/credhex.v1.VaultService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// VaultServiceServer is implemented by the server.
type VaultServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	CurrentUser(context.Context, *CurrentUserRequest) (*CurrentUserResponse, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
	ListCertificates(context.Context, *ListCertificatesRequest) (*ListCertificatesResponse, error)
	PutCertificate(context.Context, *PutCertificateRequest) (*PutCertificateResponse, error)
	RemoveCertificate(context.Context, *RemoveCertificateRequest) (*RemoveCertificateResponse, error)
	GetDownloadURL(context.Context, *GetDownloadURLRequest) (*GetDownloadURLResponse, error)
}

// UnimplementedVaultServiceServer answers every call with codes.Unimplemented.
type UnimplementedVaultServiceServer struct{}

func (UnimplementedVaultServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedVaultServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedVaultServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedVaultServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedVaultServiceServer) CurrentUser(context.Context, *CurrentUserRequest) (*CurrentUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CurrentUser not implemented")
}
func (UnimplementedVaultServiceServer) SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedVaultServiceServer) ListCertificates(context.Context, *ListCertificatesRequest) (*ListCertificatesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListCertificates not implemented")
}
func (UnimplementedVaultServiceServer) PutCertificate(context.Context, *PutCertificateRequest) (*PutCertificateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PutCertificate not implemented")
}
func (UnimplementedVaultServiceServer) RemoveCertificate(context.Context, *RemoveCertificateRequest) (*RemoveCertificateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveCertificate not implemented")
}
func (UnimplementedVaultServiceServer) GetDownloadURL(context.Context, *GetDownloadURLRequest) (*GetDownloadURLResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDownloadURL not implemented")
}

func unary[Req, Resp any](method string, call func(VaultServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(VaultServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(VaultServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes VaultService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, VaultServiceServer.Ping),
		unary(MethodRegister, VaultServiceServer.Register),
		unary(MethodLogin, VaultServiceServer.Login),
		unary(MethodRefreshToken, VaultServiceServer.RefreshToken),
		unary(MethodCurrentUser, VaultServiceServer.CurrentUser),
		unary(MethodSignOut, VaultServiceServer.SignOut),
		unary(MethodListCertificates, VaultServiceServer.ListCertificates),
		unary(MethodPutCertificate, VaultServiceServer.PutCertificate),
		unary(MethodRemoveCertificate, VaultServiceServer.RemoveCertificate),
		unary(MethodGetDownloadURL, VaultServiceServer.GetDownloadURL),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "credhex/v1/vault.proto",
}

// RegisterVaultServiceServer attaches srv to s.
func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// VaultServiceClient is the client side of VaultService.
type VaultServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	CurrentUser(ctx context.Context, in *CurrentUserRequest, opts ...grpc.CallOption) (*CurrentUserResponse, error)
	SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*SignOutResponse, error)
	ListCertificates(ctx context.Context, in *ListCertificatesRequest, opts ...grpc.CallOption) (*ListCertificatesResponse, error)
	PutCertificate(ctx context.Context, in *PutCertificateRequest, opts ...grpc.CallOption) (*PutCertificateResponse, error)
	RemoveCertificate(ctx context.Context, in *RemoveCertificateRequest, opts ...grpc.CallOption) (*RemoveCertificateResponse, error)
	GetDownloadURL(ctx context.Context, in *GetDownloadURLRequest, opts ...grpc.CallOption) (*GetDownloadURLResponse, error)
}

type vaultServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewVaultServiceClient returns a client that sends every call with the
// JSON content-subtype.
func NewVaultServiceClient(cc grpc.ClientConnInterface) VaultServiceClient {
	return &vaultServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *vaultServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *vaultServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *vaultServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *vaultServiceClient) CurrentUser(ctx context.Context, in *CurrentUserRequest, opts ...grpc.CallOption) (*CurrentUserResponse, error) {
	return invoke[CurrentUserResponse](ctx, c.cc, MethodCurrentUser, in, opts)
}

func (c *vaultServiceClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*SignOutResponse, error) {
	return invoke[SignOutResponse](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *vaultServiceClient) ListCertificates(ctx context.Context, in *ListCertificatesRequest, opts ...grpc.CallOption) (*ListCertificatesResponse, error) {
	return invoke[ListCertificatesResponse](ctx, c.cc, MethodListCertificates, in, opts)
}

func (c *vaultServiceClient) PutCertificate(ctx context.Context, in *PutCertificateRequest, opts ...grpc.CallOption) (*PutCertificateResponse, error) {
	return invoke[PutCertificateResponse](ctx, c.cc, MethodPutCertificate, in, opts)
}

func (c *vaultServiceClient) RemoveCertificate(ctx context.Context, in *RemoveCertificateRequest, opts ...grpc.CallOption) (*RemoveCertificateResponse, error) {
	return invoke[RemoveCertificateResponse](ctx, c.cc, MethodRemoveCertificate, in, opts)
}

func (c *vaultServiceClient) GetDownloadURL(ctx context.Context, in *GetDownloadURLRequest, opts ...grpc.CallOption) (*GetDownloadURLResponse, error) {
	return invoke[GetDownloadURLResponse](ctx, c.cc, MethodGetDownloadURL, in, opts)
}
