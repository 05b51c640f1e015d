package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/devfeed/internal/client/models"
)

// AuthProvider is the authentication half of the backend.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	SignOut(ctx context.Context) error
	CreateUser(ctx context.Context, email, password string) (*models.User, error)
	SendVerificationEmail(ctx context.Context) error
	UpdateProfile(ctx context.Context, attrs map[string]string) error
	CurrentUser() *models.User
	OnAuthStateChanged(fn func(u *models.User)) (unsubscribe func())
}

type DocumentStore interface {
	AddDocument(ctx context.Context, collection string, v any) (string, error)
	SetDocument(ctx context.Context, collection, id string, v any) error
	GetDocument(ctx context.Context, collection, id string, v any) error
	OnSnapshot(ctx context.Context, collection string, fn func(Change)) (*Subscription, error)
}

type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// Change is one document event delivered by OnSnapshot.
type Change struct {
	Type       string
	Collection string
	ID         string
	Data       json.RawMessage
}

const (
	ChangeAdded    = "added"
	ChangeModified = "modified"
	ChangeRemoved  = "removed"
)
