package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/devfeed/internal/client/client"
	"github.com/dmitrijs2005/devfeed/internal/client/credentials"
	"github.com/dmitrijs2005/devfeed/internal/client/kv/kvtest"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/cryptox"
	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	auth  *fakeAuth
	docs  *fakeDocs
	creds *credentials.Store
	store *kvtest.Faulty
	svc   AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		auth:  &fakeAuth{users: map[string]string{"ann@example.com": "hunter2"}},
		docs:  newFakeDocs(),
		store: kvtest.NewFaulty(kvtest.Open(t)),
	}
	f.creds = credentials.NewStore(f.store, common.GenerateRandByteArray(cryptox.KeySize), logging.Nop())
	f.svc = NewAuthService(f.auth, f.docs, f.creds, pingFunc(func(context.Context) error { return nil }), logging.Nop())
	return f
}

func TestLogin_RememberMeSavesRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Login(ctx, "ann@example.com", "hunter2", true))

	rec, ok := f.creds.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, credentials.Record{Identifier: "ann@example.com", Secret: "hunter2", RememberMe: true}, rec)
}

func TestLogin_WithoutRememberMeClearsRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Login(ctx, "ann@example.com", "hunter2", true))
	require.NoError(t, f.svc.Login(ctx, "ann@example.com", "hunter2", false))

	_, ok := f.creds.Load(ctx)
	assert.False(t, ok)
}

func TestLogin_FailureSurfacesProviderMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.creds.Save(ctx, credentials.Record{Identifier: "ann@example.com", Secret: "hunter2", RememberMe: true})

	err := f.svc.Login(ctx, "ann@example.com", "wrong", false)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, "invalid email or password", err.Error())
	assert.Nil(t, f.auth.CurrentUser())
	assert.Equal(t, 1, f.auth.signInN, "no retry")

	// a failed login leaves the remembered record alone
	_, ok := f.creds.Load(ctx)
	assert.True(t, ok)
}

func TestLogin_PersistenceFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.store.FailWrites(true)

	require.NoError(t, f.svc.Login(context.Background(), "ann@example.com", "hunter2", true))
	assert.NotNil(t, f.auth.CurrentUser())
}

func TestLogin_EmptyFields(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.svc.Login(context.Background(), "", "x", true), common.ErrorValidation)
	require.ErrorIs(t, f.svc.Login(context.Background(), "x", "", true), common.ErrorValidation)
	assert.Equal(t, 0, f.auth.signInN)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, "bob", "bob@example.com", "pw"))
	assert.Equal(t, 1, f.auth.verifyN)

	var p models.Profile
	require.NoError(t, f.docs.GetDocument(ctx, common.UsersCollection, "uid-bob@example.com", &p))
	assert.Equal(t, models.Profile{Username: "bob", Email: "bob@example.com"}, p)
	assert.NotContains(t, string(f.docs.docs["users/uid-bob@example.com"]), "pw")
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Register(context.Background(), "ann", "ann@example.com", "pw")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Equal(t, "email already in use", err.Error())
}

func TestRegister_VerificationFailureNotFatal(t *testing.T) {
	f := newFixture(t)
	f.auth.verifyEr = errors.New("smtp down")

	require.NoError(t, f.svc.Register(context.Background(), "bob", "bob@example.com", "pw"))
}

func TestRegister_ProfileWriteFails(t *testing.T) {
	f := newFixture(t)
	f.docs.setErr = errors.New("boom")

	require.Error(t, f.svc.Register(context.Background(), "bob", "bob@example.com", "pw"))
}

func TestDisplayName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "", f.svc.DisplayName(ctx))

	require.NoError(t, f.svc.Login(ctx, "ann@example.com", "hunter2", false))
	assert.Equal(t, "ann", f.svc.DisplayName(ctx), "falls back to the e-mail local part")

	require.NoError(t, f.docs.SetDocument(ctx, common.UsersCollection, "uid-ann@example.com", models.Profile{Username: "Annie"}))
	assert.Equal(t, "Annie", f.svc.DisplayName(ctx))

	f.docs.getErr = errors.New("offline")
	assert.Equal(t, "ann", f.svc.DisplayName(ctx))
}

func TestSignOutAndPing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Login(ctx, "ann@example.com", "hunter2", false))
	require.NoError(t, f.svc.SignOut(ctx))
	assert.Nil(t, f.auth.CurrentUser())
	assert.Equal(t, 1, f.auth.signOutN)

	require.NoError(t, f.svc.Ping(ctx))
}
