package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/devfeed/internal/client/biometric"
	"github.com/dmitrijs2005/devfeed/internal/client/client"
	"github.com/dmitrijs2005/devfeed/internal/client/composer"
	"github.com/dmitrijs2005/devfeed/internal/client/credentials"
	"github.com/dmitrijs2005/devfeed/internal/client/feed"
	"github.com/dmitrijs2005/devfeed/internal/client/interaction"
	"github.com/dmitrijs2005/devfeed/internal/client/kv/kvtest"
	"github.com/dmitrijs2005/devfeed/internal/client/media"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/client/notifications"
	"github.com/dmitrijs2005/devfeed/internal/client/session"
	"github.com/dmitrijs2005/devfeed/internal/client/settings"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

type fakeAuth struct {
	mu sync.Mutex

	loginCalls []credentials.Record
	loginErr   error
	onLogin    func()

	regCalls []string
	regErr   error

	signOuts int
	pingErr  error
}

func (f *fakeAuth) Login(_ context.Context, identifier, secret string, rememberMe bool) error {
	f.mu.Lock()
	f.loginCalls = append(f.loginCalls, credentials.Record{Identifier: identifier, Secret: secret, RememberMe: rememberMe})
	f.mu.Unlock()
	if f.loginErr == nil && f.onLogin != nil {
		f.onLogin()
	}
	return f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, username, email, secret string) error {
	f.regCalls = append(f.regCalls, username+"|"+email+"|"+secret)
	return f.regErr
}

func (f *fakeAuth) SignOut(context.Context) error { f.signOuts++; return nil }

func (f *fakeAuth) DisplayName(context.Context) string { return "ann" }

func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

type fakeGate struct {
	r session.Route
	u *models.User
}

func (g *fakeGate) Route() session.Route { return g.r }
func (g *fakeGate) User() *models.User   { return g.u }

func (g *fakeGate) signIn(email string) {
	g.r, g.u = session.RouteAppShell, &models.User{ID: "u1", Email: email}
}

type fakeCreds struct {
	rec credentials.Record
	ok  bool
}

func (f fakeCreds) Load(context.Context) (credentials.Record, bool) { return f.rec, f.ok }

type uploadFunc func(ctx context.Context, path string, onProgress media.ProgressFunc) (string, error)

func (f uploadFunc) Upload(ctx context.Context, path string, onProgress media.ProgressFunc) (string, error) {
	return f(ctx, path, onProgress)
}

type nopProfile struct{}

func (nopProfile) UpdateProfile(context.Context, map[string]string) error { return nil }

type fakeProvider struct {
	hardware bool
	err      error
}

func (p fakeProvider) HasHardware(context.Context) (bool, error) { return p.hardware, nil }
func (p fakeProvider) Authenticate(context.Context, biometric.Prompt) error {
	return p.err
}

type testApp struct {
	*App
	auth  *fakeAuth
	gate  *fakeGate
	out   *bytes.Buffer
	store *kvtest.Faulty
}

type appOption func(*testApp)

func withCreds(rec credentials.Record) appOption {
	return func(ta *testApp) { ta.credentials = fakeCreds{rec: rec, ok: true} }
}

func withUploader(u composer.Uploader) appOption {
	return func(ta *testApp) { ta.composer = composer.New(u, ta.feed, ta.auth, logging.Nop()) }
}

func withWatch(w notifications.WatchFunc) appOption {
	return func(ta *testApp) { ta.inbox = notifications.NewInbox(w, logging.Nop()) }
}

func withProvider(p biometric.Provider) appOption {
	return func(ta *testApp) {
		ta.unlocker = biometric.NewUnlocker(p, ta.credentials, ta.auth.Login, logging.Nop())
	}
}

func noWatch(ctx context.Context, _ string, _ func(client.Change)) (notifications.Subscription, error) {
	return &ctxSub{ctx: ctx}, nil
}

type ctxSub struct{ ctx context.Context }

func (s *ctxSub) Close()                {}
func (s *ctxSub) Done() <-chan struct{} { return s.ctx.Done() }

// newTestApp builds an App over real local stores and fake backend-facing
// parts. input is what the user types.
func newTestApp(t *testing.T, input string, opts ...appOption) *testApp {
	t.Helper()

	store := kvtest.NewFaulty(kvtest.Open(t))
	fs := feed.NewStore(store, logging.Nop())
	fs.Load(context.Background())
	auth := &fakeAuth{}
	out := &bytes.Buffer{}

	ta := &testApp{
		App: &App{
			authService:  auth,
			credentials:  fakeCreds{},
			feed:         fs,
			interactions: interaction.NewStore(store, logging.Nop()),
			settings:     settings.NewStore(store, nopProfile{}, logging.Nop()),
			logger:       logging.Nop(),
			reader:       bufio.NewReader(strings.NewReader(input)),
			out:          out,
			cards:        map[int64]*interaction.Card{},
		},
		auth:  auth,
		gate:  &fakeGate{r: session.RouteWelcome},
		out:   out,
		store: store,
	}
	ta.App.gate = ta.gate
	ta.composer = composer.New(uploadFunc(func(context.Context, string, media.ProgressFunc) (string, error) {
		return "", nil
	}), fs, auth, logging.Nop())
	ta.inbox = notifications.NewInbox(noWatch, logging.Nop())
	ta.settings.Load(context.Background())

	for _, o := range opts {
		o(ta)
	}
	if ta.unlocker == nil {
		ta.unlocker = biometric.NewUnlocker(fakeProvider{hardware: true}, ta.credentials, auth.Login, logging.Nop())
	}
	t.Cleanup(ta.leaveShell)
	return ta
}

// plainInput makes the password helper read from the buffered input as it
// does when stdin is not a terminal.
func plainInput(t *testing.T) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })
}
