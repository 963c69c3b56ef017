package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/credhex/internal/common"
)

// errorCodes pairs sentinels with the status code they travel as. The
// status message is the sentinel's text, which lets the client recover
// the exact sentinel when several share a code.
var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrInvalidType, codes.InvalidArgument},
	{common.ErrTooLarge, codes.InvalidArgument},
	{common.ErrSizeMismatch, codes.InvalidArgument},
	{common.ErrInvalidEmail, codes.InvalidArgument},
	{common.ErrWeakPassword, codes.InvalidArgument},
	{common.ErrAlreadyExists, codes.AlreadyExists},
	{common.ErrEmailTaken, codes.AlreadyExists},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrRefreshTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrForbiddenKey, codes.PermissionDenied},
	{common.ErrStoreUnavailable, codes.Unavailable},
	{common.ErrorNotFound, codes.NotFound},
}

// ToStatus converts a service error into a gRPC status error. Unknown
// errors become codes.Internal without leaking their text.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return status.Error(e.code, e.err.Error())
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

// FromStatus converts a gRPC error back into the matching sentinel. When
// the message is not recognised the code decides.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, e := range errorCodes {
		if e.code == st.Code() && e.err.Error() == st.Message() {
			return e.err
		}
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return common.ErrorUnauthorized
	case codes.Unavailable:
		return common.ErrStoreUnavailable
	case codes.PermissionDenied:
		return common.ErrForbiddenKey
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	}
	return err
}
