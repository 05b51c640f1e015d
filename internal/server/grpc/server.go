// Package grpc exposes the backend services over the devfeed.v1.Backend
// gRPC service.
package grpc

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/dmitrijs2005/devfeed/internal/rpc"
	"github.com/dmitrijs2005/devfeed/internal/server/models"
	"github.com/dmitrijs2005/devfeed/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type UserService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	SendVerificationEmail(ctx context.Context, userID string) error
	UpdateProfile(ctx context.Context, userID string, attrs map[string]string) (*models.User, error)
	UserIDFromAccessToken(token string) (string, error)
}

type DocumentService interface {
	Add(ctx context.Context, userID, collection string, data json.RawMessage) (*models.Document, error)
	Set(ctx context.Context, userID, collection, id string, data json.RawMessage) (*models.Document, error)
	Get(ctx context.Context, collection, id string) (*models.Document, error)
	Watch(ctx context.Context, collection string, send func(models.Change) error) error
}

type StorageService interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

type GRPCServer struct {
	rpc.UnimplementedBackendServer
	address   string
	users     UserService
	documents DocumentService
	storage   StorageService
	logger    logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ds DocumentService, ss StorageService) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		documents: ds,
		storage:   ss,
	}
}

// newServer builds a grpc.Server carrying the backend, the health service,
// tracing, and the access token interceptors.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)

	rpc.RegisterBackendServer(srv, s)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(rpc.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
