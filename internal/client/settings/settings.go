// Package settings stores the user's preferences on the device.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/devfeed/internal/client/kv"
	"github.com/dmitrijs2005/devfeed/internal/client/models"
	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/logging"
)

const (
	StorageKey = "settings"

	// TwoStepAttribute is the profile attribute mirroring TwoStepVerification.
	TwoStepAttribute = "twoStepVerificationEnabled"

	version = 1
)

const (
	DarkMode            = "darkMode"
	EmailNotifications  = "emailNotifications"
	PushNotifications   = "pushNotifications"
	TwoStepVerification = "twoStepVerification"
)

var ErrUnknownPreference = errors.New("unknown preference")

type Preferences struct {
	DarkMode            bool `json:"darkMode"`
	EmailNotifications  bool `json:"emailNotifications"`
	PushNotifications   bool `json:"pushNotifications"`
	TwoStepVerification bool `json:"twoStepVerification"`
}

func Defaults() Preferences {
	return Preferences{EmailNotifications: true}
}

func (p *Preferences) field(name string) (*bool, bool) {
	switch name {
	case DarkMode:
		return &p.DarkMode, true
	case EmailNotifications:
		return &p.EmailNotifications, true
	case PushNotifications:
		return &p.PushNotifications, true
	case TwoStepVerification:
		return &p.TwoStepVerification, true
	}
	return nil, false
}

// Map returns the preferences keyed by name.
func (p Preferences) Map() map[string]bool {
	return map[string]bool{
		DarkMode:            p.DarkMode,
		EmailNotifications:  p.EmailNotifications,
		PushNotifications:   p.PushNotifications,
		TwoStepVerification: p.TwoStepVerification,
	}
}

// Names lists the preference names in a stable order.
func Names() []string {
	n := []string{DarkMode, EmailNotifications, PushNotifications, TwoStepVerification}
	sort.Strings(n)
	return n
}

type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, attrs map[string]string) error
}

type Store struct {
	kv      kv.Store
	profile ProfileUpdater
	logger  logging.Logger

	mu    sync.Mutex
	prefs Preferences
}

func NewStore(s kv.Store, p ProfileUpdater, l logging.Logger) *Store {
	return &Store{kv: s, profile: p, logger: l.With("module", "settings"), prefs: Defaults()}
}

// Load reads the stored preferences. Absent or unreadable data leaves the
// defaults in place.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = Defaults()
	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Error(ctx, "read settings", "error", err)
		return
	}
	if raw == nil {
		return
	}

	var p Preferences
	if err := models.Unwrap(raw, version, &p); err != nil {
		s.logger.Warn(ctx, "ignoring stored settings", "error", err)
		return
	}
	s.prefs = p
}

func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

func (s *Store) persist(ctx context.Context, p Preferences) error {
	b, err := models.Wrap(version, p)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, StorageKey, b)
}

// Toggle flips one preference and stores the result. If the write fails, or
// for two-step verification the profile update fails, the preference goes
// back to its old value and the error is returned.
func (s *Store) Toggle(ctx context.Context, name string) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.prefs
	next := prev
	f, ok := next.field(name)
	if !ok {
		return prev, fmt.Errorf("%w: %q: %w", ErrUnknownPreference, name, common.ErrorValidation)
	}
	*f = !*f

	s.prefs = next
	if err := s.persist(ctx, next); err != nil {
		s.prefs = prev
		s.logger.Error(ctx, "persist settings, reverted", "preference", name, "error", err)
		return prev, fmt.Errorf("save settings: %w", err)
	}

	if name != TwoStepVerification {
		return next, nil
	}

	attrs := map[string]string{TwoStepAttribute: strconv.FormatBool(next.TwoStepVerification)}
	if err := s.profile.UpdateProfile(ctx, attrs); err != nil {
		s.logger.Error(ctx, "update two-step verification, reverted", "error", err)
		s.prefs = prev
		if perr := s.persist(ctx, prev); perr != nil {
			s.logger.Error(ctx, "restore settings", "error", perr)
		}
		return prev, fmt.Errorf("update profile: %w", err)
	}
	return next, nil
}
