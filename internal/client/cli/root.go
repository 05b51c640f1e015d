package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/devfeed/internal/client/session"
)

func (a *App) getStatus() string {
	s := ""
	if u := a.gate.User(); u != nil {
		s = u.Email + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// route returns the current session route and handles leaving or entering
// a screen: the welcome form is re-mounted on entry, and the shell's card
// and inbox subscriptions live only while the shell is shown.
func (a *App) route(ctx context.Context) session.Route {
	r := a.gate.Route()
	if r == a.lastRoute {
		return r
	}

	switch a.lastRoute {
	case session.RouteAppShell:
		a.leaveShell()
	case session.RouteWelcome:
		a.formMounted = false
	}

	switch r {
	case session.RouteAppShell:
		a.enterShell(ctx)
	case session.RouteWelcome:
		a.mountLoginForm(ctx)
	}
	a.lastRoute = r
	return r
}

func (a *App) enterShell(ctx context.Context) {
	ictx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.stopInbox, a.inboxDone = cancel, done

	go func() {
		defer close(done)
		if err := a.inbox.Run(ictx); err != nil {
			a.logger.Warn(ictx, "files inbox stopped", "error", err)
		}
	}()
}

func (a *App) leaveShell() {
	for id, c := range a.cards {
		c.Unmount()
		delete(a.cards, id)
	}
	if a.stopInbox != nil {
		a.stopInbox()
		<-a.inboxDone
		a.stopInbox, a.inboxDone = nil, nil
	}
}

// Root runs the REPL until the user exits or ctx ends.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to devfeed (type 'help' for commands)")

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(wctx, a.onlineCheckInterval)

	defer a.leaveShell()
	runREPL(ctx, a, a.getStatus, a.readLine)
}
