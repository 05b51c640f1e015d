// Package models defines the client-side data shapes shared between
// components: posts, uploaded-file records, the signed-in user and the
// versioned envelope every persisted document is wrapped in.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformed          = errors.New("malformed payload")
	ErrUnsupportedVersion = errors.New("unsupported payload version")
)

// Envelope tags a persisted payload with its schema version.
type Envelope struct {
	Version int             `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

func Wrap[T any](version int, v T) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Version: version, Payload: payload})
}

// Unwrap decodes data into v. Anything other than a well-formed envelope of
// exactly the given version is an error wrapping ErrMalformed or
// ErrUnsupportedVersion.
func Unwrap[T any](data []byte, version int, v *T) error {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e.Version != version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, e.Version)
	}
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
