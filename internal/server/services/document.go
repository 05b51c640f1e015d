package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"

	"github.com/dmitrijs2005/devfeed/internal/common"
	"github.com/dmitrijs2005/devfeed/internal/logging"
	"github.com/dmitrijs2005/devfeed/internal/server/events"
	"github.com/dmitrijs2005/devfeed/internal/server/models"
	"github.com/dmitrijs2005/devfeed/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	ErrNoCollection    = userError(common.ErrorValidation, "A collection name is required.")
	ErrNoDocumentID    = userError(common.ErrorValidation, "A document id is required.")
	ErrInvalidData     = userError(common.ErrorValidation, "Document data must be a JSON object.")
	ErrNotProfileOwner = userError(common.ErrorForbidden, "You can only write your own profile.")
)

var newDocumentID = uuid.NewString

// DocumentService stores JSON documents and announces every write on the
// event bus. Documents in the users collection are keyed by user id and
// only their owner may write them.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	bus         events.Bus
	logger      logging.Logger
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, bus events.Bus, l logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		bus:         bus,
		logger:      l.With("module", "document_service"),
	}
}

func validateData(data json.RawMessage) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return ErrInvalidData
	}
	return nil
}

func checkWrite(userID, collection, id string) error {
	if collection == "" {
		return ErrNoCollection
	}
	if id == "" {
		return ErrNoDocumentID
	}
	if collection == common.UsersCollection && id != userID {
		return ErrNotProfileOwner
	}
	return nil
}

// Add stores data under a new random id.
func (s *DocumentService) Add(ctx context.Context, userID, collection string, data json.RawMessage) (*models.Document, error) {
	id := newDocumentID()
	if err := checkWrite(userID, collection, id); err != nil {
		return nil, err
	}
	if err := validateData(data); err != nil {
		return nil, err
	}

	doc := &models.Document{Collection: collection, ID: id, Data: data}
	if err := s.repomanager.Documents(s.db).Insert(ctx, doc); err != nil {
		return nil, err
	}

	s.publish(ctx, models.ChangeAdded, doc)
	return doc, nil
}

// Set creates or replaces a document.
func (s *DocumentService) Set(ctx context.Context, userID, collection, id string, data json.RawMessage) (*models.Document, error) {
	if err := checkWrite(userID, collection, id); err != nil {
		return nil, err
	}
	if err := validateData(data); err != nil {
		return nil, err
	}

	doc := &models.Document{Collection: collection, ID: id, Data: data}
	created, err := s.repomanager.Documents(s.db).Upsert(ctx, doc)
	if err != nil {
		return nil, err
	}

	typ := models.ChangeModified
	if created {
		typ = models.ChangeAdded
	}
	s.publish(ctx, typ, doc)
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	if collection == "" {
		return nil, ErrNoCollection
	}
	if id == "" {
		return nil, ErrNoDocumentID
	}
	return s.repomanager.Documents(s.db).Get(ctx, collection, id)
}

// Delete removes a document and announces the removal.
func (s *DocumentService) Delete(ctx context.Context, userID, collection, id string) error {
	if err := checkWrite(userID, collection, id); err != nil {
		return err
	}

	doc, err := s.repomanager.Documents(s.db).Delete(ctx, collection, id)
	if err != nil {
		return err
	}
	s.publish(ctx, models.ChangeRemoved, doc)
	return nil
}

// Watch calls send with every existing document of collection as an added
// change, then with each live change until ctx ends or send fails. Live
// "added" changes for documents already sent in the snapshot are skipped.
func (s *DocumentService) Watch(ctx context.Context, collection string, send func(models.Change) error) error {
	if collection == "" {
		return ErrNoCollection
	}

	// Subscribe first so nothing written during the snapshot is lost.
	changes, cancel, err := s.bus.Subscribe(ctx, collection)
	if err != nil {
		return err
	}
	defer cancel()

	docs, err := s.repomanager.Documents(s.db).List(ctx, collection)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		seen[doc.ID] = struct{}{}
		if err := send(models.Change{Type: models.ChangeAdded, Document: *doc}); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-changes:
			_, dup := seen[change.Document.ID]
			delete(seen, change.Document.ID)
			if dup && change.Type == models.ChangeAdded {
				continue
			}
			if err := send(change); err != nil {
				return err
			}
		}
	}
}

// publish never fails the write: the row is already committed.
func (s *DocumentService) publish(ctx context.Context, typ models.ChangeType, doc *models.Document) {
	if err := s.bus.Publish(ctx, models.Change{Type: typ, Document: *doc}); err != nil {
		s.logger.Error(ctx, "publish change", "collection", doc.Collection, "id", doc.ID, "error", err)
	}
}
