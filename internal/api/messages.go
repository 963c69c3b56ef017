package api

import "time"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password []byte `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password []byte `json:"password"`
}

type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         UserInfo `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type CurrentUserRequest struct{}

// CurrentUserResponse carries a nil User when the token no longer maps to a user.
type CurrentUserResponse struct {
	User *UserInfo `json:"user,omitempty"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutResponse struct{}

type Certificate struct {
	Key         string    `json:"key"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListCertificatesRequest names the namespace to list. It must be the
// caller's own user id.
type ListCertificatesRequest struct {
	UserID string `json:"user_id"`
}

type ListCertificatesResponse struct {
	Certificates []Certificate `json:"certificates"`
}

type PutCertificateRequest struct {
	Key          string `json:"key"`
	ContentType  string `json:"content_type"`
	CacheControl string `json:"cache_control,omitempty"`
	Data         []byte `json:"data"`
}

type PutCertificateResponse struct{}

type RemoveCertificateRequest struct {
	Key string `json:"key"`
}

type RemoveCertificateResponse struct{}

type GetDownloadURLRequest struct {
	Key        string `json:"key"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

type GetDownloadURLResponse struct {
	URL string `json:"url"`
}
