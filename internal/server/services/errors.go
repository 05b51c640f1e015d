// Package services contains the backend's business logic: accounts and
// tokens, JSON documents with change notification, and object storage URLs.
package services

// Error is a failure whose message is safe to show to end users. Kind is
// one of the common sentinels and decides the wire status.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func userError(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}
