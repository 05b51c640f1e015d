package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/client/app"
	"github.com/dmitrijs2005/devfeed/internal/client/biometric"
	"github.com/dmitrijs2005/devfeed/internal/client/composer"
	"github.com/dmitrijs2005/devfeed/internal/client/credentials"
	"github.com/dmitrijs2005/devfeed/internal/client/feed"
	"github.com/dmitrijs2005/devfeed/internal/client/interaction"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/client/notifications"
	"github.com/dmitrijs2005/devfeed/internal/client/services"
	"github.com/dmitrijs2005/devfeed/internal/client/session"
	"github.com/dmitrijs2005/devfeed/internal/client/settings"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type sessionView interface {
	Route() session.Route
	User() *models.User
}

type credentialReader interface {
	Load(ctx context.Context) (credentials.Record, bool)
}

// loginForm is the welcome screen's form. It is filled from the remembered
// credentials once each time the welcome screen is entered and is left as
// typed when a login fails.
type loginForm struct {
	identifier string
	secret     string
	rememberMe bool
}

type App struct {
	authService  services.AuthService
	credentials  credentialReader
	gate         sessionView
	feed         *feed.Store
	interactions *interaction.Store
	composer     *composer.Composer
	inbox        *notifications.Inbox
	settings     *settings.Store
	unlocker     *biometric.Unlocker
	logger       logging.Logger

	onlineCheckInterval time.Duration

	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	mode Mode

	form        loginForm
	formMounted bool
	lastRoute   session.Route
	cards       map[int64]*interaction.Card
	stopInbox   context.CancelFunc
	inboxDone   chan struct{}
}

// NewApp builds the front-end over an application context, reading from in
// and writing to out.
func NewApp(ac *app.Context, in io.Reader, out io.Writer) *App {
	a := &App{
		authService:         ac.Auth,
		credentials:         ac.Credentials,
		gate:                ac.Gate,
		feed:                ac.Feed,
		interactions:        ac.Interactions,
		composer:            ac.Composer,
		inbox:               ac.Inbox,
		settings:            ac.Settings,
		logger:              ac.Logger.With("module", "cli"),
		onlineCheckInterval: ac.Config.OnlineCheckInterval,
		reader:              bufio.NewReader(in),
		out:                 out,
		cards:               map[int64]*interaction.Card{},
	}

	provider := biometric.NewTerminalProvider(int(os.Stdin.Fd()), a.readLine, out)
	a.unlocker = biometric.NewUnlocker(provider, ac.Credentials, ac.Auth.Login, ac.Logger)
	return a
}

func (a *App) readLine() (string, error) {
	return readLine(a.reader)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// showError prints a failure the way the mobile client showed its blocking
// alert: the provider's message, verbatim.
func (a *App) showError(err error) {
	a.println("Error:", err.Error())
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher pings the backend every interval until ctx ends
// and flips the connectivity mode accordingly.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
