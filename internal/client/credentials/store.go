// Package credentials persists the last-used login (identifier, secret and
// the remember-me flag) under a single local key.
//
// The record is sealed under the device key before it is written. Save and
// Clear never fail from the caller's point of view: storage errors are
// logged and the login flow carries on.
package credentials

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/devfeed/internal/client/kv"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/cryptox"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

const (
	StorageKey = "lastLoginInfo"
	version    = 1
)

type Record struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
	RememberMe bool   `json:"rememberMe"`
}

type Store struct {
	kv     kv.Store
	key    []byte
	logger logging.Logger
}

func NewStore(s kv.Store, deviceKey []byte, l logging.Logger) *Store {
	return &Store{kv: s, key: deviceKey, logger: l.With("module", "credentials")}
}

func (s *Store) Save(ctx context.Context, r Record) {
	sealed, err := cryptox.Seal(r, s.key)
	if err != nil {
		s.logger.Error(ctx, "seal credential record", "error", err)
		return
	}

	data, err := models.Wrap(version, sealed)
	if err != nil {
		s.logger.Error(ctx, "wrap credential record", "error", err)
		return
	}

	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		s.logger.Error(ctx, "save credential record", "error", err)
	}
}

// Load returns the stored record. Undecodable or foreign records count as
// absent.
func (s *Store) Load(ctx context.Context) (Record, bool) {
	data, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Error(ctx, "load credential record", "error", err)
		return Record{}, false
	}
	if data == nil {
		return Record{}, false
	}

	var sealed []byte
	if err := models.Unwrap(data, version, &sealed); err != nil {
		s.logger.Warn(ctx, "ignoring stored credential record", "error", err)
		return Record{}, false
	}

	var r Record
	if err := cryptox.Open(sealed, s.key, &r); err != nil {
		if errors.Is(err, cryptox.ErrShortCiphertext) {
			s.logger.Warn(ctx, "ignoring truncated credential record")
		} else {
			s.logger.Warn(ctx, "ignoring credential record sealed under another key", "error", err)
		}
		return Record{}, false
	}
	return r, true
}

func (s *Store) Clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		s.logger.Error(ctx, "clear credential record", "error", err)
	}
}
