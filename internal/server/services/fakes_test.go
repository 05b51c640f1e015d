package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/cryptox"
	"github.com/dmitrijs2005/devfeed/internal/dbx"
	"github.com/dmitrijs2005/devfeed/internal/server/models"
	"github.com/dmitrijs2005/devfeed/internal/server/repositories/documents"
	"github.com/dmitrijs2005/devfeed/internal/server/repositories/users"
)

// fastHasher keeps argon2 cheap in tests.
var fastHasher = cryptox.NewPasswordHasher(&cryptox.Argon2Params{
	Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16,
})

type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int
	err    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func clone(u *models.User) *models.User {
	c := *u
	c.Attributes = make(map[string]string, len(u.Attributes))
	for k, v := range u.Attributes {
		c.Attributes[k] = v
	}
	return &c
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("u-%d", f.nextID)
	u.CreatedAt = time.Now()
	f.byID[u.ID] = clone(u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (f *fakeUsersRepo) SetVerificationToken(_ context.Context, id, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.VerificationToken = token
	return nil
}

func (f *fakeUsersRepo) UpdateAttributes(_ context.Context, id string, attrs map[string]string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if u.Attributes == nil {
		u.Attributes = map[string]string{}
	}
	for k, v := range attrs {
		u.Attributes[k] = v
	}
	return clone(u), nil
}

type docKey struct{ collection, id string }

type fakeDocsRepo struct {
	mu   sync.Mutex
	docs map[docKey]*models.Document
	seq  int
	err  error
}

func newFakeDocsRepo() *fakeDocsRepo {
	return &fakeDocsRepo{docs: map[docKey]*models.Document{}}
}

func (f *fakeDocsRepo) stamp() time.Time {
	f.seq++
	return time.Date(2025, 1, 1, 0, 0, f.seq, 0, time.UTC)
}

func (f *fakeDocsRepo) Insert(_ context.Context, d *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	k := docKey{d.Collection, d.ID}
	if _, ok := f.docs[k]; ok {
		return common.ErrorAlreadyExists
	}
	d.CreatedAt = f.stamp()
	d.UpdatedAt = d.CreatedAt
	c := *d
	f.docs[k] = &c
	return nil
}

func (f *fakeDocsRepo) Upsert(_ context.Context, d *models.Document) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	k := docKey{d.Collection, d.ID}
	existing, ok := f.docs[k]
	if ok {
		d.CreatedAt = existing.CreatedAt
	} else {
		d.CreatedAt = f.stamp()
	}
	d.UpdatedAt = f.stamp()
	c := *d
	f.docs[k] = &c
	return !ok, nil
}

func (f *fakeDocsRepo) Get(_ context.Context, collection, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.docs[docKey{collection, id}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *d
	return &c, nil
}

func (f *fakeDocsRepo) List(_ context.Context, collection string) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Document
	for k, d := range f.docs {
		if k.collection == collection {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeDocsRepo) Delete(_ context.Context, collection, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := docKey{collection, id}
	d, ok := f.docs[k]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.docs, k)
	return d, nil
}

type fakeRepoManager struct {
	users *fakeUsersRepo
	docs  *fakeDocsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newFakeUsersRepo(), docs: newFakeDocsRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository      { return m.docs }

type sentMail struct{ email, link string }

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendVerification(_ context.Context, email, link string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{email, link})
	return nil
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }
