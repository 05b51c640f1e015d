package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/rpc"
	"github.com/dmitrijs2005/devfeed/internal/server/models"
	"github.com/dmitrijs2005/devfeed/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes. User-facing errors keep
// their message; anything unexpected becomes a bare internal error.
func toStatus(err error) error {
	var ue *services.Error
	userFacing := errors.As(err, &ue)

	msg := func(fallback string) string {
		if userFacing {
			return ue.Message
		}
		return fallback
	}

	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, common.ErrInvalidCredentials.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, msg(common.ErrorForbidden.Error()))
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, msg(common.ErrorValidation.Error()))
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, msg(common.ErrorAlreadyExists.Error()))
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, msg(common.ErrorNotFound.Error()))
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

// fail logs unexpected errors before mapping them.
func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, op+" failed", "error", err)
	} else {
		s.logger.Debug(ctx, op+" rejected", "error", err)
	}
	return st
}

func callerID(ctx context.Context) (string, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return id, nil
}

func toRPCUser(u *models.User) rpc.User {
	attrs := make(map[string]string, len(u.Attributes))
	for k, v := range u.Attributes {
		attrs[k] = v
	}
	return rpc.User{ID: u.ID, Email: u.Email, EmailVerified: u.EmailVerified, Attributes: attrs}
}

func toAuthResponse(sess *services.Session) *rpc.AuthResponse {
	return &rpc.AuthResponse{
		User:         toRPCUser(sess.User),
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}
}

func toRPCDocument(d *models.Document) rpc.Document {
	return rpc.Document{
		Collection: d.Collection,
		ID:         d.ID,
		Data:       d.Data,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.SignUpRequest) (*rpc.AuthResponse, error) {
	sess, err := s.users.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return nil, s.fail(ctx, "sign up", err)
	}
	s.logger.Info(ctx, "Registered", "user_id", sess.User.ID)
	return toAuthResponse(sess), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.AuthResponse, error) {
	sess, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "sign in", err)
	}
	return toAuthResponse(sess), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.AuthResponse, error) {
	sess, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.fail(ctx, "refresh token", err)
	}
	return toAuthResponse(sess), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.SignOutRequest) (*rpc.Empty, error) {
	if err := s.users.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.fail(ctx, "sign out", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) SendVerificationEmail(ctx context.Context, req *rpc.SendVerificationEmailRequest) (*rpc.Empty, error) {
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.users.SendVerificationEmail(ctx, uid); err != nil {
		return nil, s.fail(ctx, "send verification e-mail", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *rpc.UpdateProfileRequest) (*rpc.UpdateProfileResponse, error) {
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.UpdateProfile(ctx, uid, req.Attributes)
	if err != nil {
		return nil, s.fail(ctx, "update profile", err)
	}
	return &rpc.UpdateProfileResponse{User: toRPCUser(u)}, nil
}

func (s *GRPCServer) AddDocument(ctx context.Context, req *rpc.AddDocumentRequest) (*rpc.AddDocumentResponse, error) {
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.documents.Add(ctx, uid, req.Collection, req.Data)
	if err != nil {
		return nil, s.fail(ctx, "add document", err)
	}
	return &rpc.AddDocumentResponse{ID: doc.ID}, nil
}

func (s *GRPCServer) SetDocument(ctx context.Context, req *rpc.SetDocumentRequest) (*rpc.Empty, error) {
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.documents.Set(ctx, uid, req.Collection, req.ID, req.Data); err != nil {
		return nil, s.fail(ctx, "set document", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) GetDocument(ctx context.Context, req *rpc.GetDocumentRequest) (*rpc.GetDocumentResponse, error) {
	doc, err := s.documents.Get(ctx, req.Collection, req.ID)
	if err != nil {
		return nil, s.fail(ctx, "get document", err)
	}
	return &rpc.GetDocumentResponse{Document: toRPCDocument(doc)}, nil
}

func (s *GRPCServer) PresignUpload(ctx context.Context, req *rpc.PresignUploadRequest) (*rpc.PresignUploadResponse, error) {
	url, expires, err := s.storage.PresignUpload(ctx, req.Key, req.ContentType)
	if err != nil {
		return nil, s.fail(ctx, "presign upload", err)
	}
	return &rpc.PresignUploadResponse{Key: req.Key, URL: url, ExpiresAt: expires}, nil
}

func (s *GRPCServer) GetDownloadURL(ctx context.Context, req *rpc.GetDownloadURLRequest) (*rpc.GetDownloadURLResponse, error) {
	url, err := s.storage.DownloadURL(ctx, req.Key)
	if err != nil {
		return nil, s.fail(ctx, "download url", err)
	}
	return &rpc.GetDownloadURLResponse{URL: url}, nil
}

// WatchCollection streams the collection's snapshot and live changes until
// the client goes away.
func (s *GRPCServer) WatchCollection(req *rpc.WatchCollectionRequest, stream rpc.WatchCollectionServer) error {
	ctx := stream.Context()

	err := s.documents.Watch(ctx, req.Collection, func(c models.Change) error {
		return stream.Send(&rpc.Change{Type: rpc.ChangeType(c.Type), Document: toRPCDocument(&c.Document)})
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return s.fail(ctx, "watch collection", err)
	}
	return nil
}
