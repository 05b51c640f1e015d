// Package app builds the client's components from configuration and owns
// their lifetime. The resulting Context is passed explicitly to the
// front-end.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/devfeed/internal/client/client"
	"github.com/dmitrijs2005/devfeed/internal/client/composer"
	"github.com/dmitrijs2005/devfeed/internal/client/config"
	"github.com/dmitrijs2005/devfeed/internal/client/credentials"
	"github.com/dmitrijs2005/devfeed/internal/client/feed"
	"github.com/dmitrijs2005/devfeed/internal/client/interaction"
	"github.com/dmitrijs2005/devfeed/internal/client/kv"
	"github.com/dmitrijs2005/devfeed/internal/client/media"
	"github.com/dmitrijs2005/devfeed/internal/client/notifications"
	"github.com/dmitrijs2005/devfeed/internal/client/services"
	"github.com/dmitrijs2005/devfeed/internal/client/session"
	"github.com/dmitrijs2005/devfeed/internal/client/settings"
	"github.com/dmitrijs2005/devfeed/internal/cryptox"
	"github.com/dmitrijs2005/devfeed/internal/filex"
	"github.com/dmitrijs2005/devfeed/internal/logging"
	"google.golang.org/grpc"
)

const (
	DatabaseFile  = "devfeed.db"
	DeviceKeyFile = "device.key"
)

type Context struct {
	Config *config.Config
	Logger logging.Logger

	Store        *kv.SQLiteStore
	Backend      *client.GRPCClient
	Credentials  *credentials.Store
	Auth         services.AuthService
	Gate         *session.Gate
	Feed         *feed.Store
	Interactions *interaction.Store
	Uploader     *media.Uploader
	Composer     *composer.Composer
	Inbox        *notifications.Inbox
	Settings     *settings.Store
}

// New opens the data directory, device key and database, connects the
// backend client and wires every component. The caller must Close the
// returned Context.
func New(ctx context.Context, cfg *config.Config, l logging.Logger, opts ...grpc.DialOption) (*Context, error) {
	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	key, err := cryptox.LoadOrCreateKey(filepath.Join(dir, DeviceKeyFile))
	if err != nil {
		return nil, fmt.Errorf("device key: %w", err)
	}

	store, err := kv.Open(ctx, filepath.Join(dir, DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	backend, err := client.NewGRPCClient(cfg.ServerEndpointAddr, store, l, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	c := &Context{
		Config:       cfg,
		Logger:       l,
		Store:        store,
		Backend:      backend,
		Credentials:  credentials.NewStore(store, key, l),
		Gate:         session.NewGate(backend, l),
		Feed:         feed.NewStore(store, l),
		Interactions: interaction.NewStore(store, l),
		Uploader:     media.NewUploader(backend, backend, l),
		Inbox:        notifications.NewInbox(notifications.Watch(backend), l),
		Settings:     settings.NewStore(store, backend, l),
	}
	c.Auth = services.NewAuthService(backend, backend, c.Credentials, backend, l)
	c.Composer = composer.New(c.Uploader, c.Feed, c.Auth, l)
	return c, nil
}

// Start loads the local documents, subscribes the session gate and resolves
// the first auth state. A backend that cannot be reached leaves the user
// signed out; the error is logged.
func (c *Context) Start(ctx context.Context) {
	c.Feed.Load(ctx)
	c.Settings.Load(ctx)
	c.Gate.Start()

	if err := c.Backend.Restore(ctx); err != nil {
		c.Logger.Warn(ctx, "restore session", "error", err)
	}
}

func (c *Context) Close() error {
	c.Gate.Stop()
	return errors.Join(c.Backend.Close(), c.Store.Close())
}
