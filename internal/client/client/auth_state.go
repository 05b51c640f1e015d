package client

import (
	"sync"

	"github.com/dmitrijs2005/devfeed/internal/client/models"
)

// authState fans the signed-in user out to listeners. Listeners registered
// before the first resolution hear about it when it happens; later ones are
// called immediately with the current user. Deliveries are serialized so a
// listener never observes states out of order.
type authState struct {
	deliver sync.Mutex

	mu        sync.Mutex
	resolved  bool
	user      *models.User
	listeners map[uint64]func(*models.User)
	nextID    uint64
}

func newAuthState() *authState {
	return &authState{listeners: make(map[uint64]func(*models.User))}
}

func (a *authState) subscribe(fn func(*models.User)) func() {
	a.deliver.Lock()
	defer a.deliver.Unlock()

	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	resolved, user := a.resolved, a.user
	a.mu.Unlock()

	if resolved {
		fn(user)
	}

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *authState) set(u *models.User) {
	a.deliver.Lock()
	defer a.deliver.Unlock()

	a.mu.Lock()
	a.resolved = true
	a.user = u
	fns := make([]func(*models.User), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}

func (a *authState) current() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}
