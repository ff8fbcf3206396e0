// Package collections holds every collection and its entries and enforces
// the naming rules: collection names are unique per owner, cite keys are
// unique per collection.
package collections

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/dmitrijs2005/litmgmt/internal/logging"
	"github.com/dmitrijs2005/litmgmt/internal/server/ids"
	"github.com/dmitrijs2005/litmgmt/internal/server/models"
)

// Store is the id -> collection index.
//
// Ownership lives in the users' ownership sets. The store is the only writer
// of those sets and mutates them under its own lock, so readers that need a
// stable view of ownership must go through the store (or View).
//
// Entry operations address collections by id and do not check ownership;
// callers are expected to consult UserOwns first.
type Store struct {
	mu     sync.RWMutex
	ids    *ids.Allocator
	logger logging.Logger
	index  map[int]*models.Collection
}

func NewStore(alloc *ids.Allocator, logger logging.Logger) *Store {
	return &Store{
		ids:    alloc,
		logger: logger.With("module", "collections"),
		index:  make(map[int]*models.Collection),
	}
}

func notFound(what string, id int) error {
	return fmt.Errorf("%s %d: %w", what, id, common.ErrorNotFound)
}

// ListCollections returns copies of the user's collections in the order they
// were acquired. Ids that no longer resolve are logged and skipped.
func (s *Store) ListCollections(ctx context.Context, user *models.User) []*models.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Collection
	for _, id := range user.CollectionIDs() {
		c, ok := s.index[id]
		if !ok {
			s.logger.Warn(ctx, "owned collection missing from index", "user", user.Name, "collection_id", id)
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

// GetCollection returns a copy of the collection regardless of owner.
func (s *Store) GetCollection(_ context.Context, id int) (*models.Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

func (s *Store) UserOwns(user *models.User, id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return user.OwnsCollection(id)
}

// nameTaken reports whether another collection of user already uses name.
// Caller holds s.mu.
func (s *Store) nameTaken(user *models.User, name string, except int) bool {
	for _, id := range user.CollectionIDs() {
		if id == except {
			continue
		}
		if c, ok := s.index[id]; ok && c.Name == name {
			return true
		}
	}
	return false
}

// owned resolves a collection the user must own. Caller holds s.mu.
func (s *Store) owned(user *models.User, id int) (*models.Collection, error) {
	c, ok := s.index[id]
	if !ok {
		return nil, notFound("collection", id)
	}
	if !user.OwnsCollection(id) {
		return nil, fmt.Errorf("collection %d: %w", id, common.ErrForbidden)
	}
	return c, nil
}

func (s *Store) CreateCollection(ctx context.Context, user *models.User, name string) (*models.Collection, error) {
	if name == "" {
		return nil, common.ErrEmptyField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(user, name, -1) {
		return nil, fmt.Errorf("collection %q: %w", name, common.ErrNameConflict)
	}

	c := models.NewCollection(s.ids.Next(ids.Collection), name)
	s.index[c.ID] = c
	user.AddCollection(c.ID)

	s.logger.Info(ctx, "collection created", "user", user.Name, "collection_id", c.ID)
	return c.Clone(), nil
}

func (s *Store) RenameCollection(ctx context.Context, user *models.User, id int, name string) error {
	if name == "" {
		return common.ErrEmptyField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.owned(user, id)
	if err != nil {
		return err
	}
	if s.nameTaken(user, name, id) {
		return fmt.Errorf("collection %q: %w", name, common.ErrNameConflict)
	}

	c.Name = name
	s.logger.Info(ctx, "collection renamed", "user", user.Name, "collection_id", id)
	return nil
}

// DeleteCollection removes the collection and all its entries.
func (s *Store) DeleteCollection(ctx context.Context, user *models.User, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.owned(user, id); err != nil {
		return err
	}

	delete(s.index, id)
	user.RemoveCollection(id)

	s.logger.Info(ctx, "collection deleted", "user", user.Name, "collection_id", id)
	return nil
}

func (s *Store) ListEntries(_ context.Context, colID int) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.index[colID]
	if !ok {
		return nil, notFound("collection", colID)
	}

	out := make([]*models.Entry, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Clone()
	}
	return out, nil
}

func (s *Store) GetEntry(_ context.Context, colID, entryID int) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.entry(colID, entryID)
	if err != nil {
		return nil, err
	}
	return e.Clone(), nil
}

// entry resolves an entry inside a collection. Caller holds s.mu.
func (s *Store) entry(colID, entryID int) (*models.Entry, error) {
	c, ok := s.index[colID]
	if !ok {
		return nil, notFound("collection", colID)
	}
	e, _ := c.Entry(entryID)
	if e == nil {
		return nil, notFound("entry", entryID)
	}
	return e, nil
}

func (s *Store) CreateEntry(ctx context.Context, colID int, citeKey string, entryType models.EntryType) (*models.Entry, error) {
	if citeKey == "" {
		return nil, common.ErrEmptyField
	}
	if !entryType.Valid() {
		return nil, fmt.Errorf("entry type %d: %w", int(entryType), common.ErrParseFailure)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.index[colID]
	if !ok {
		return nil, notFound("collection", colID)
	}
	if c.EntryByKey(citeKey) != nil {
		return nil, fmt.Errorf("%q: %w", citeKey, common.ErrKeyConflict)
	}

	e := models.NewEntry(s.ids.Next(ids.Entry), citeKey, entryType)
	c.Entries = append(c.Entries, e)

	s.logger.Info(ctx, "entry created", "collection_id", colID, "entry_id", e.ID)
	return e.Clone(), nil
}

func (s *Store) RenameEntry(ctx context.Context, colID, entryID int, citeKey string) error {
	if citeKey == "" {
		return common.ErrEmptyField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.entry(colID, entryID)
	if err != nil {
		return err
	}
	if other := s.index[colID].EntryByKey(citeKey); other != nil && other.ID != entryID {
		return fmt.Errorf("%q: %w", citeKey, common.ErrKeyConflict)
	}

	e.CiteKey = citeKey
	s.logger.Info(ctx, "entry renamed", "collection_id", colID, "entry_id", entryID)
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, colID, entryID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.index[colID]
	if !ok {
		return notFound("collection", colID)
	}
	_, i := c.Entry(entryID)
	if i < 0 {
		return notFound("entry", entryID)
	}
	c.Entries = append(c.Entries[:i:i], c.Entries[i+1:]...)

	s.logger.Info(ctx, "entry deleted", "collection_id", colID, "entry_id", entryID)
	return nil
}

// SetField upserts a single field value.
func (s *Store) SetField(ctx context.Context, colID, entryID int, ft models.FieldType, value string) error {
	return s.SetFields(ctx, colID, entryID, []models.Field{{Type: ft, Value: value}})
}

// SetFields applies several upserts atomically: either every field type is
// valid and all are written, or nothing changes.
func (s *Store) SetFields(ctx context.Context, colID, entryID int, fields []models.Field) error {
	for _, f := range fields {
		if !f.Type.Valid() {
			return fmt.Errorf("field type %d: %w", int(f.Type), common.ErrParseFailure)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.entry(colID, entryID)
	if err != nil {
		return err
	}
	for _, f := range fields {
		e.SetField(f.Type, f.Value)
	}

	s.logger.Debug(ctx, "entry fields set", "collection_id", colID, "entry_id", entryID, "count", len(fields))
	return nil
}

// View calls fn with every collection, ordered by id, under the read lock.
// Ownership sets are stable for the duration of fn. fn must not call back
// into the store or retain the collections.
func (s *Store) View(fn func(cols []*models.Collection)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cols := make([]*models.Collection, 0, len(s.index))
	for _, c := range s.index {
		cols = append(cols, c)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].ID < cols[j].ID })

	fn(cols)
}

// Restore replaces the index. Collections with an id seen earlier are
// skipped, as are entries whose id was already used anywhere or whose cite
// key repeats within the collection. It returns the number of collections
// kept.
func (s *Store) Restore(ctx context.Context, cols []*models.Collection) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = make(map[int]*models.Collection, len(cols))
	seenEntries := make(map[int]struct{})

	for _, c := range cols {
		if _, dup := s.index[c.ID]; dup {
			s.logger.Warn(ctx, "duplicate collection id skipped", "collection_id", c.ID)
			continue
		}

		kept := c.Entries[:0:0]
		keys := make(map[string]struct{}, len(c.Entries))
		for _, e := range c.Entries {
			if _, dup := seenEntries[e.ID]; dup {
				s.logger.Warn(ctx, "duplicate entry id skipped", "collection_id", c.ID, "entry_id", e.ID)
				continue
			}
			if _, dup := keys[e.CiteKey]; dup {
				s.logger.Warn(ctx, "duplicate cite key skipped", "collection_id", c.ID, "entry_id", e.ID)
				continue
			}
			seenEntries[e.ID] = struct{}{}
			keys[e.CiteKey] = struct{}{}
			kept = append(kept, e)
		}
		c.Entries = kept
		s.index[c.ID] = c
	}

	return len(s.index)
}
