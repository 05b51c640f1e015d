// Package session routes the application between the welcome flow and the
// authenticated shell based on the auth provider's state signal.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

// AuthSignal is the auth provider's "state changed" stream. The callback
// receives the signed-in user or nil.
type AuthSignal interface {
	OnAuthStateChanged(fn func(u *models.User)) (unsubscribe func())
}

type Route int

const (
	RouteInitializing Route = iota
	RouteAppShell
	RouteWelcome
)

func (r Route) String() string {
	switch r {
	case RouteAppShell:
		return "app"
	case RouteWelcome:
		return "welcome"
	default:
		return "initializing"
	}
}

// Gate holds the session derived from the auth signal. Nothing may be routed
// until the first callback after Start; until then Route reports
// RouteInitializing.
type Gate struct {
	signal AuthSignal
	logger logging.Logger

	mu       sync.Mutex
	gen      uint64
	active   bool
	release  func()
	resolved bool
	user     *models.User
	ready    chan struct{}
}

func NewGate(s AuthSignal, l logging.Logger) *Gate {
	return &Gate{
		signal: s,
		logger: l.With("module", "session"),
		ready:  make(chan struct{}),
	}
}

// Start subscribes to the auth signal. Starting an active gate is a no-op;
// starting a stopped gate re-enters the initializing state.
func (g *Gate) Start() {
	g.mu.Lock()
	if g.active {
		g.mu.Unlock()
		return
	}
	g.gen++
	gen := g.gen
	g.active = true
	// ready stays open while unresolved, so callers already in Wait are
	// woken by whichever subscription resolves first.
	if g.resolved {
		g.ready = make(chan struct{})
	}
	g.resolved = false
	g.user = nil
	g.mu.Unlock()

	unsubscribe := g.signal.OnAuthStateChanged(func(u *models.User) {
		g.onChange(gen, u)
	})

	var once sync.Once
	release := func() { once.Do(unsubscribe) }

	g.mu.Lock()
	if g.gen == gen && g.active {
		g.release = release
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	// stopped while subscribing
	release()
}

// Stop releases the subscription. It is safe to call any number of times.
func (g *Gate) Stop() {
	g.mu.Lock()
	release := g.release
	g.release = nil
	g.active = false
	g.mu.Unlock()

	if release != nil {
		release()
	}
}

// Run keeps the gate subscribed until ctx ends.
func (g *Gate) Run(ctx context.Context) {
	g.Start()
	defer g.Stop()
	<-ctx.Done()
}

func (g *Gate) onChange(gen uint64, u *models.User) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.gen || !g.active {
		return
	}

	g.user = u
	if !g.resolved {
		g.resolved = true
		close(g.ready)
	}
	g.logger.Debug(context.Background(), "auth state changed", "route", routeFor(u).String())
}

func routeFor(u *models.User) Route {
	if u != nil {
		return RouteAppShell
	}
	return RouteWelcome
}

func (g *Gate) Route() Route {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.resolved {
		return RouteInitializing
	}
	return routeFor(g.user)
}

// User returns the signed-in user, or nil when signed out or unresolved.
func (g *Gate) User() *models.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Wait blocks until the session is resolved.
func (g *Gate) Wait(ctx context.Context) (Route, error) {
	g.mu.Lock()
	ready := g.ready
	g.mu.Unlock()

	select {
	case <-ready:
		return g.Route(), nil
	case <-ctx.Done():
		return RouteInitializing, ctx.Err()
	}
}
