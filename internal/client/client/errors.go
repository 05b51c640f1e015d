package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/devfeed/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotSignedIn  = errors.New("not signed in")
)

// ProviderError carries the backend's message verbatim for display while
// still matching a sentinel through errors.Is.
type ProviderError struct {
	Kind    error
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Kind
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	var kind error
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		kind = ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		kind = ErrUnavailable
	case codes.NotFound:
		kind = common.ErrorNotFound
	case codes.AlreadyExists:
		kind = common.ErrorAlreadyExists
	case codes.InvalidArgument:
		kind = common.ErrorValidation
	default:
		kind = common.ErrorInternal
	}
	return &ProviderError{Kind: kind, Message: st.Message()}
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}
