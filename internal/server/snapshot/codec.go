package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/dmitrijs2005/litmgmt/internal/logging"
	"github.com/dmitrijs2005/litmgmt/internal/server/collections"
	"github.com/dmitrijs2005/litmgmt/internal/server/ids"
	"github.com/dmitrijs2005/litmgmt/internal/server/models"
	"github.com/dmitrijs2005/litmgmt/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/litmgmt/internal/server/users"
)

// Codec saves and restores the allocator, the user directory and the
// collection store through a snapshot repository.
type Codec struct {
	ids    *ids.Allocator
	users  *users.Directory
	store  *collections.Store
	repo   snapshots.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewCodec(alloc *ids.Allocator, dir *users.Directory, store *collections.Store,
	repo snapshots.Repository, logger logging.Logger) *Codec {
	return &Codec{
		ids:    alloc,
		users:  dir,
		store:  store,
		repo:   repo,
		logger: logger.With("module", "snapshot"),
		now:    time.Now,
	}
}

// Capture copies the current state. Both the directory and the store read
// locks are held while copying, so the result never shows half of a write.
func (c *Codec) Capture() State {
	var s State
	c.users.View(func(us []*models.User) {
		c.store.View(func(cols []*models.Collection) {
			s.Counters[0], s.Counters[1], s.Counters[2] = c.ids.Counters()
			s.Users = make([]*models.User, len(us))
			for i, u := range us {
				s.Users[i] = models.NewUser(u.ID, u.Name, u.Email, u.PasswordHash, u.CollectionIDs())
			}
			s.Collections = make([]*models.Collection, len(cols))
			for i, col := range cols {
				s.Collections[i] = col.Clone()
			}
		})
	})
	s.WrittenOn = c.now()
	return s
}

// Save writes the current state to the repository.
func (c *Codec) Save(ctx context.Context) error {
	s := c.Capture()

	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := c.repo.Write(ctx, data); err != nil {
		c.logger.Error(ctx, "snapshot write failed", "error", err)
		return fmt.Errorf("save snapshot: %w", err)
	}

	c.logger.Info(ctx, "snapshot saved",
		"users", len(s.Users), "collections", len(s.Collections), "bytes", len(data))
	return nil
}

// LoadReport summarises what Load restored.
type LoadReport struct {
	Users       int
	Collections int
	Entries     int
	Skipped     []error
	// SourceErr is set when the snapshot could not be read; the state then
	// starts empty.
	SourceErr error
}

// Load restores the state from the repository and seeds the allocator. It
// must run once, before the directory or the store issue any id.
//
// Nothing here is fatal: a missing or unreadable snapshot gives an empty
// state, broken records are skipped. Everything dropped is logged.
func (c *Codec) Load(ctx context.Context) LoadReport {
	var report LoadReport

	data, err := c.repo.Read(ctx)
	if err != nil {
		report.SourceErr = err
		if errors.Is(err, common.ErrorNotFound) {
			c.logger.Info(ctx, "no snapshot found, starting empty")
		} else {
			c.logger.Warn(ctx, "snapshot unreadable, starting empty", "error", err)
		}
		c.ids.Seed(0, 0, 0)
		c.users.Restore(ctx, nil)
		c.store.Restore(ctx, nil)
		return report
	}

	s, errs := Decode(data)
	for _, e := range errs {
		c.logger.Warn(ctx, "snapshot record skipped", "error", e)
	}
	report.Skipped = errs

	if s.LegacyEntries > 0 {
		c.logger.Warn(ctx, "legacy top-level entries ignored", "count", s.LegacyEntries)
	}

	c.ids.Seed(Floors(s))
	report.Users = c.users.Restore(ctx, s.Users)
	report.Collections = c.store.Restore(ctx, s.Collections)
	c.store.View(func(cols []*models.Collection) {
		for _, col := range cols {
			report.Entries += len(col.Entries)
		}
	})

	c.logger.Info(ctx, "snapshot loaded",
		"users", report.Users, "collections", report.Collections, "entries", report.Entries,
		"skipped", len(report.Skipped))
	return report
}

// Floors returns the counters to seed the allocator with: the persisted
// value, raised past the highest id actually present and never below zero.
func Floors(s State) (user, collection, entry int) {
	user, collection, entry = max(s.Counters[0], 0), max(s.Counters[1], 0), max(s.Counters[2], 0)
	for _, u := range s.Users {
		user = max(user, u.ID+1)
	}
	for _, c := range s.Collections {
		collection = max(collection, c.ID+1)
		for _, e := range c.Entries {
			entry = max(entry, e.ID+1)
		}
	}
	return user, collection, entry
}
