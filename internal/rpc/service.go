package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "devfeed.v1.Backend"

const (
	MethodPing                  = "/devfeed.v1.Backend/Ping"
	MethodSignUp                = "/devfeed.v1.Backend/SignUp"
	MethodSignIn                = "/devfeed.v1.Backend/SignIn"
	MethodRefreshToken          = "/devfeed.v1.Backend/RefreshToken"
	MethodSignOut               = "/devfeed.v1.Backend/SignOut"
	MethodSendVerificationEmail = "/devfeed.v1.Backend/SendVerificationEmail"
	MethodUpdateProfile         = "/devfeed.v1.Backend/UpdateProfile"
	MethodAddDocument           = "/devfeed.v1.Backend/AddDocument"
	MethodSetDocument           = "/devfeed.v1.Backend/SetDocument"
	MethodGetDocument           = "/devfeed.v1.Backend/GetDocument"
	MethodPresignUpload         = "/devfeed.v1.Backend/PresignUpload"
	MethodGetDownloadURL        = "/devfeed.v1.Backend/GetDownloadURL"
	MethodWatchCollection       = "/devfeed.v1.Backend/WatchCollection"
)

// PublicMethods need no access token.
var PublicMethods = map[string]bool{
	MethodPing:         true,
	MethodSignUp:       true,
	MethodSignIn:       true,
	MethodRefreshToken: true,
	MethodSignOut:      true,
}

type WatchCollectionServer = grpc.ServerStreamingServer[Change]

type BackendServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	SignUp(context.Context, *SignUpRequest) (*AuthResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error)
	SignOut(context.Context, *SignOutRequest) (*Empty, error)
	SendVerificationEmail(context.Context, *SendVerificationEmailRequest) (*Empty, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*UpdateProfileResponse, error)
	AddDocument(context.Context, *AddDocumentRequest) (*AddDocumentResponse, error)
	SetDocument(context.Context, *SetDocumentRequest) (*Empty, error)
	GetDocument(context.Context, *GetDocumentRequest) (*GetDocumentResponse, error)
	PresignUpload(context.Context, *PresignUploadRequest) (*PresignUploadResponse, error)
	GetDownloadURL(context.Context, *GetDownloadURLRequest) (*GetDownloadURLResponse, error)
	WatchCollection(*WatchCollectionRequest, WatchCollectionServer) error
}

func RegisterBackendServer(s grpc.ServiceRegistrar, srv BackendServer) {
	s.RegisterService(&BackendServiceDesc, srv)
}

func unary[Req, Res any](method string, call func(BackendServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BackendServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BackendServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchCollectionHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchCollectionRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(BackendServer).WatchCollection(in, &grpc.GenericServerStream[WatchCollectionRequest, Change]{ServerStream: stream})
}

var BackendServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BackendServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unary(MethodPing, BackendServer.Ping)},
		{MethodName: "SignUp", Handler: unary(MethodSignUp, BackendServer.SignUp)},
		{MethodName: "SignIn", Handler: unary(MethodSignIn, BackendServer.SignIn)},
		{MethodName: "RefreshToken", Handler: unary(MethodRefreshToken, BackendServer.RefreshToken)},
		{MethodName: "SignOut", Handler: unary(MethodSignOut, BackendServer.SignOut)},
		{MethodName: "SendVerificationEmail", Handler: unary(MethodSendVerificationEmail, BackendServer.SendVerificationEmail)},
		{MethodName: "UpdateProfile", Handler: unary(MethodUpdateProfile, BackendServer.UpdateProfile)},
		{MethodName: "AddDocument", Handler: unary(MethodAddDocument, BackendServer.AddDocument)},
		{MethodName: "SetDocument", Handler: unary(MethodSetDocument, BackendServer.SetDocument)},
		{MethodName: "GetDocument", Handler: unary(MethodGetDocument, BackendServer.GetDocument)},
		{MethodName: "PresignUpload", Handler: unary(MethodPresignUpload, BackendServer.PresignUpload)},
		{MethodName: "GetDownloadURL", Handler: unary(MethodGetDownloadURL, BackendServer.GetDownloadURL)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchCollection", Handler: watchCollectionHandler, ServerStreams: true},
	},
	Metadata: "devfeed/v1/backend",
}
