package rpc

import (
	"encoding/json"
	"time"
)

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the identity part of an auth session.
type User struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	EmailVerified bool              `json:"email_verified"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// AuthResponse is returned by SignUp, SignIn and RefreshToken.
type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SendVerificationEmailRequest struct{}

type UpdateProfileRequest struct {
	Attributes map[string]string `json:"attributes"`
}

type UpdateProfileResponse struct {
	User User `json:"user"`
}

type Document struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type AddDocumentRequest struct {
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data"`
}

type AddDocumentResponse struct {
	ID string `json:"id"`
}

type SetDocumentRequest struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Data       json.RawMessage `json:"data"`
}

type GetDocumentRequest struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

type GetDocumentResponse struct {
	Document Document `json:"document"`
}

type PresignUploadRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
}

type PresignUploadResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type GetDownloadURLRequest struct {
	Key string `json:"key"`
}

type GetDownloadURLResponse struct {
	URL string `json:"url"`
}

type WatchCollectionRequest struct {
	Collection string `json:"collection"`
}

type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// Change is one element of a WatchCollection stream.
type Change struct {
	Type     ChangeType `json:"type"`
	Document Document   `json:"document"`
}
