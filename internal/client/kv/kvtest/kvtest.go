// Package kvtest provides kv stores for tests: a real SQLite store in a
// temp dir, and a wrapper that fails writes on demand.
package kvtest

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/devfeed/internal/client/kv"
)

var ErrInjected = errors.New("injected storage failure")

func Open(t testing.TB) *kv.SQLiteStore {
	t.Helper()
	s, err := kv.Open(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Faulty delegates to an inner store. While FailWrites is set every write
// returns ErrInjected; while FailReads is set so does Get.
type Faulty struct {
	kv.Store

	mu         sync.Mutex
	failWrites bool
	failReads  bool
}

func NewFaulty(inner kv.Store) *Faulty {
	return &Faulty{Store: inner}
}

func (f *Faulty) FailWrites(v bool) {
	f.mu.Lock()
	f.failWrites = v
	f.mu.Unlock()
}

func (f *Faulty) FailReads(v bool) {
	f.mu.Lock()
	f.failReads = v
	f.mu.Unlock()
}

func (f *Faulty) writeErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return ErrInjected
	}
	return nil
}

func (f *Faulty) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return f.Store.Get(ctx, key)
}

func (f *Faulty) Set(ctx context.Context, key string, value []byte) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Store.Set(ctx, key, value)
}

func (f *Faulty) Delete(ctx context.Context, key string) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Store.Delete(ctx, key)
}

func (f *Faulty) SetMany(ctx context.Context, values map[string][]byte) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Store.SetMany(ctx, values)
}

func (f *Faulty) DeleteMany(ctx context.Context, keys ...string) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Store.DeleteMany(ctx, keys...)
}

func (f *Faulty) Clear(ctx context.Context) error {
	if err := f.writeErr(); err != nil {
		return err
	}
	return f.Store.Clear(ctx)
}
