package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/devfeed/internal/client/client"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/common"
)

type fakeAuth struct {
	users    map[string]string
	current  *models.User
	signInN  int
	verifyN  int
	verifyEr error
	signOutN int
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*models.User, error) {
	f.signInN++
	if pw, ok := f.users[email]; !ok || pw != password {
		return nil, &client.ProviderError{Kind: client.ErrUnauthorized, Message: "invalid email or password"}
	}
	f.current = &models.User{ID: "uid-" + email, Email: email}
	return f.current, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.signOutN++
	f.current = nil
	return nil
}

func (f *fakeAuth) CreateUser(_ context.Context, email, password string) (*models.User, error) {
	if _, ok := f.users[email]; ok {
		return nil, &client.ProviderError{Kind: common.ErrorAlreadyExists, Message: "email already in use"}
	}
	f.users[email] = password
	f.current = &models.User{ID: "uid-" + email, Email: email}
	return f.current, nil
}

func (f *fakeAuth) SendVerificationEmail(context.Context) error {
	f.verifyN++
	return f.verifyEr
}

func (f *fakeAuth) UpdateProfile(context.Context, map[string]string) error { return nil }
func (f *fakeAuth) CurrentUser() *models.User                              { return f.current }
func (f *fakeAuth) OnAuthStateChanged(func(*models.User)) func()           { return func() {} }

type fakeDocs struct {
	docs   map[string]json.RawMessage
	setErr error
	getErr error
}

func newFakeDocs() *fakeDocs { return &fakeDocs{docs: map[string]json.RawMessage{}} }

func (f *fakeDocs) AddDocument(context.Context, string, any) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeDocs) SetDocument(_ context.Context, collection, id string, v any) error {
	if f.setErr != nil {
		return f.setErr
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.docs[collection+"/"+id] = b
	return nil
}

func (f *fakeDocs) GetDocument(_ context.Context, collection, id string, v any) error {
	if f.getErr != nil {
		return f.getErr
	}
	b, ok := f.docs[collection+"/"+id]
	if !ok {
		return &client.ProviderError{Kind: common.ErrorNotFound, Message: "document not found"}
	}
	return json.Unmarshal(b, v)
}

func (f *fakeDocs) OnSnapshot(context.Context, string, func(client.Change)) (*client.Subscription, error) {
	return nil, errors.New("not used")
}

type pingFunc func(context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }
