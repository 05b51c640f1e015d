package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/dmitrijs2005/devfeed/internal/rpc"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// SessionKey is the local key holding the refresh token of the signed-in user.
const SessionKey = "authSession"

const sessionVersion = 1

type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type persistedSession struct {
	RefreshToken string `json:"refresh_token"`
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	api         rpc.BackendClient
	sessions    SessionStore
	logger      logging.Logger
	auth        *authState

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	refreshMu sync.Mutex
}

func NewGRPCClient(endpointURL string, sessions SessionStore, l logging.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{
		endpointURL: endpointURL,
		sessions:    sessions,
		logger:      l.With("module", "grpc_client"),
		auth:        newAuthState(),
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.streamAccessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpointURL, err)
	}
	c.conn = conn
	c.api = rpc.NewBackendClient(conn)
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, _ := c.tokens()

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || rpc.PublicMethods[method] || !isTokenExpired(err) {
		return err
	}

	if rerr := c.refresh(ctx, access); rerr != nil {
		return err
	}

	access, _ = c.tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func (c *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	access, _ := c.tokens()
	return streamer(withAccessToken(ctx, access), desc, cc, method, opts...)
}

// refresh rotates the token pair unless another caller already replaced
// stale. A rejected refresh token ends the session.
func (c *GRPCClient) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refresh := c.tokens()
	if access != stale {
		return nil
	}
	if refresh == "" {
		return ErrNotSignedIn
	}

	resp, err := c.api.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		err = mapError(err)
		if isUnauthorized(err) {
			c.logger.Warn(ctx, "refresh token rejected, signing out", "error", err)
			c.endSession(ctx)
		}
		return err
	}

	c.startSession(ctx, resp)
	return nil
}

func isUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func (c *GRPCClient) startSession(ctx context.Context, resp *rpc.AuthResponse) *models.User {
	c.mu.Lock()
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	c.mu.Unlock()

	if data, err := models.Wrap(sessionVersion, persistedSession{RefreshToken: resp.RefreshToken}); err != nil {
		c.logger.Error(ctx, "encode session", "error", err)
	} else if err := c.sessions.Set(ctx, SessionKey, data); err != nil {
		c.logger.Error(ctx, "persist session", "error", err)
	}

	u := toUser(resp.User)
	c.auth.set(u)
	return u
}

func (c *GRPCClient) endSession(ctx context.Context) {
	c.mu.Lock()
	c.accessToken = ""
	c.refreshToken = ""
	c.mu.Unlock()

	if err := c.sessions.Delete(ctx, SessionKey); err != nil {
		c.logger.Error(ctx, "forget session", "error", err)
	}
	c.auth.set(nil)
}

func toUser(u rpc.User) *models.User {
	attrs := make(map[string]string, len(u.Attributes))
	for k, v := range u.Attributes {
		attrs[k] = v
	}
	return &models.User{ID: u.ID, Email: u.Email, EmailVerified: u.EmailVerified, Attributes: attrs}
}

// Restore resolves the initial auth state from the persisted refresh token.
// Without one, or when the server rejects it, the user is signed out. When
// the server cannot be reached the token is kept for the next start.
func (c *GRPCClient) Restore(ctx context.Context) error {
	data, err := c.sessions.Get(ctx, SessionKey)
	if err != nil {
		c.logger.Error(ctx, "read session", "error", err)
		c.auth.set(nil)
		return nil
	}
	if data == nil {
		c.auth.set(nil)
		return nil
	}

	var ps persistedSession
	if err := models.Unwrap(data, sessionVersion, &ps); err != nil || ps.RefreshToken == "" {
		c.logger.Warn(ctx, "ignoring stored session", "error", err)
		c.endSession(ctx)
		return nil
	}

	resp, err := c.api.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: ps.RefreshToken})
	if err != nil {
		err = mapError(err)
		if isUnauthorized(err) {
			c.endSession(ctx)
			return nil
		}
		c.auth.set(nil)
		return err
	}

	c.startSession(ctx, resp)
	return nil
}

func (c *GRPCClient) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := c.api.SignIn(ctx, &rpc.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	return c.startSession(ctx, resp), nil
}

func (c *GRPCClient) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := c.api.SignUp(ctx, &rpc.SignUpRequest{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	return c.startSession(ctx, resp), nil
}

// SignOut revokes the refresh token on the server when it can and always
// ends the local session.
func (c *GRPCClient) SignOut(ctx context.Context) error {
	_, refresh := c.tokens()
	if refresh != "" {
		if _, err := c.api.SignOut(ctx, &rpc.SignOutRequest{RefreshToken: refresh}); err != nil {
			c.logger.Warn(ctx, "server sign-out failed", "error", mapError(err))
		}
	}
	c.endSession(ctx)
	return nil
}

func (c *GRPCClient) SendVerificationEmail(ctx context.Context) error {
	_, err := c.api.SendVerificationEmail(ctx, &rpc.SendVerificationEmailRequest{})
	return mapError(err)
}

func (c *GRPCClient) UpdateProfile(ctx context.Context, attrs map[string]string) error {
	resp, err := c.api.UpdateProfile(ctx, &rpc.UpdateProfileRequest{Attributes: attrs})
	if err != nil {
		return mapError(err)
	}
	c.auth.set(toUser(resp.User))
	return nil
}

func (c *GRPCClient) CurrentUser() *models.User {
	return c.auth.current()
}

func (c *GRPCClient) OnAuthStateChanged(fn func(u *models.User)) func() {
	return c.auth.subscribe(fn)
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp, err := c.api.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) AddDocument(ctx context.Context, collection string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	resp, err := c.api.AddDocument(ctx, &rpc.AddDocumentRequest{Collection: collection, Data: data})
	if err != nil {
		return "", mapError(err)
	}
	return resp.ID, nil
}

func (c *GRPCClient) SetDocument(ctx context.Context, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = c.api.SetDocument(ctx, &rpc.SetDocumentRequest{Collection: collection, ID: id, Data: data})
	return mapError(err)
}

// GetDocument decodes the document into v. A missing document matches
// common.ErrorNotFound.
func (c *GRPCClient) GetDocument(ctx context.Context, collection, id string, v any) error {
	resp, err := c.api.GetDocument(ctx, &rpc.GetDocumentRequest{Collection: collection, ID: id})
	if err != nil {
		return mapError(err)
	}
	return json.Unmarshal(resp.Document.Data, v)
}

func (c *GRPCClient) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	resp, err := c.api.PresignUpload(ctx, &rpc.PresignUploadRequest{Key: key, ContentType: contentType})
	if err != nil {
		return "", mapError(err)
	}
	return resp.URL, nil
}

func (c *GRPCClient) DownloadURL(ctx context.Context, key string) (string, error) {
	resp, err := c.api.GetDownloadURL(ctx, &rpc.GetDownloadURLRequest{Key: key})
	if err != nil {
		return "", mapError(err)
	}
	return resp.URL, nil
}
