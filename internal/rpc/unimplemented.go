package rpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnimplementedBackendServer answers every call with codes.Unimplemented.
// Embed it to implement only part of BackendServer.
type UnimplementedBackendServer struct{}

func (UnimplementedBackendServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedBackendServer) SignUp(context.Context, *SignUpRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedBackendServer) SignIn(context.Context, *SignInRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedBackendServer) RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedBackendServer) SignOut(context.Context, *SignOutRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedBackendServer) SendVerificationEmail(context.Context, *SendVerificationEmailRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SendVerificationEmail not implemented")
}
func (UnimplementedBackendServer) UpdateProfile(context.Context, *UpdateProfileRequest) (*UpdateProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProfile not implemented")
}
func (UnimplementedBackendServer) AddDocument(context.Context, *AddDocumentRequest) (*AddDocumentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddDocument not implemented")
}
func (UnimplementedBackendServer) SetDocument(context.Context, *SetDocumentRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetDocument not implemented")
}
func (UnimplementedBackendServer) GetDocument(context.Context, *GetDocumentRequest) (*GetDocumentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDocument not implemented")
}
func (UnimplementedBackendServer) PresignUpload(context.Context, *PresignUploadRequest) (*PresignUploadResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PresignUpload not implemented")
}
func (UnimplementedBackendServer) GetDownloadURL(context.Context, *GetDownloadURLRequest) (*GetDownloadURLResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDownloadURL not implemented")
}
func (UnimplementedBackendServer) WatchCollection(*WatchCollectionRequest, WatchCollectionServer) error {
	return status.Error(codes.Unimplemented, "method WatchCollection not implemented")
}
