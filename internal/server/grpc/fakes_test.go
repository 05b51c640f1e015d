package grpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/server/models"
	"github.com/dmitrijs2005/devfeed/internal/server/services"
)

type fakeUsers struct {
	signUpErr error
	lastAttrs map[string]string
	verifyFor string
}

func (f *fakeUsers) session(email string) *services.Session {
	return &services.Session{
		User:         &models.User{ID: "u-1", Email: email, Attributes: map[string]string{"displayName": "Alice"}},
		AccessToken:  "good",
		RefreshToken: "refresh-1",
	}
}

func (f *fakeUsers) SignUp(_ context.Context, email, password, _ string) (*services.Session, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.session(email), nil
}

func (f *fakeUsers) SignIn(_ context.Context, email, password string) (*services.Session, error) {
	if password != "pw" {
		return nil, common.ErrInvalidCredentials
	}
	return f.session(email), nil
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.Session, error) {
	if token != "refresh-1" {
		return nil, common.ErrRefreshTokenExpired
	}
	return f.session("a@example.com"), nil
}

func (f *fakeUsers) SignOut(context.Context, string) error { return nil }

func (f *fakeUsers) SendVerificationEmail(_ context.Context, userID string) error {
	f.verifyFor = userID
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, userID string, attrs map[string]string) (*models.User, error) {
	f.lastAttrs = attrs
	return &models.User{ID: userID, Email: "a@example.com", Attributes: attrs}, nil
}

func (f *fakeUsers) UserIDFromAccessToken(token string) (string, error) {
	switch token {
	case "good":
		return "u-1", nil
	case "expired":
		return "", common.ErrTokenExpired
	default:
		return "", common.ErrInvalidToken
	}
}

type fakeDocs struct {
	added    []string
	snapshot []models.Change
	watchErr error
}

func (f *fakeDocs) Add(_ context.Context, userID, collection string, data json.RawMessage) (*models.Document, error) {
	f.added = append(f.added, userID+":"+collection+":"+string(data))
	return &models.Document{Collection: collection, ID: "d-1", Data: data}, nil
}

func (f *fakeDocs) Set(_ context.Context, userID, collection, id string, data json.RawMessage) (*models.Document, error) {
	if collection == common.UsersCollection && id != userID {
		return nil, services.ErrNotProfileOwner
	}
	return &models.Document{Collection: collection, ID: id, Data: data}, nil
}

func (f *fakeDocs) Get(_ context.Context, collection, id string) (*models.Document, error) {
	if id != "d-1" {
		return nil, common.ErrorNotFound
	}
	return &models.Document{Collection: collection, ID: id, Data: json.RawMessage(`{"n":1}`)}, nil
}

func (f *fakeDocs) Watch(ctx context.Context, _ string, send func(models.Change) error) error {
	if f.watchErr != nil {
		return f.watchErr
	}
	for _, c := range f.snapshot {
		if err := send(c); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return nil
}

type fakeStorage struct{}

func (fakeStorage) PresignUpload(_ context.Context, key, _ string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, services.ErrInvalidKey
	}
	return "https://s3/put/" + key, time.Date(2025, 1, 1, 0, 15, 0, 0, time.UTC), nil
}

func (fakeStorage) DownloadURL(_ context.Context, key string) (string, error) {
	return "https://s3/get/" + key, nil
}
