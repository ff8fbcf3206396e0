// Package users implements the user directory and session authenticator:
// registration, login, logout and token lookup.
package users

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/dmitrijs2005/litmgmt/internal/cryptox"
	"github.com/dmitrijs2005/litmgmt/internal/logging"
	"github.com/dmitrijs2005/litmgmt/internal/server/ids"
	"github.com/dmitrijs2005/litmgmt/internal/server/models"
)

var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,7}$`)

// TokenMinter builds a fresh session token for a user.
type TokenMinter interface {
	Mint(userID int, userName, passwordDigest string) (string, error)
}

// Directory owns all registered users and the live sessions.
//
// A user holds at most one live token. Tokens never expire; they are only
// removed by Logout or by a restart.
type Directory struct {
	mu     sync.RWMutex
	ids    *ids.Allocator
	minter TokenMinter
	params cryptox.Params
	logger logging.Logger

	byID     map[int]*models.User
	byName   map[string]*models.User
	sessions map[string]*models.User
	active   map[int]string
}

type Option func(*Directory)

// WithDigestParams overrides the argon2id cost used for new digests.
func WithDigestParams(p cryptox.Params) Option {
	return func(d *Directory) { d.params = p }
}

func NewDirectory(alloc *ids.Allocator, minter TokenMinter, logger logging.Logger, opts ...Option) *Directory {
	d := &Directory{
		ids:      alloc,
		minter:   minter,
		params:   cryptox.DefaultParams,
		logger:   logger.With("module", "users"),
		byID:     make(map[int]*models.User),
		byName:   make(map[string]*models.User),
		sessions: make(map[string]*models.User),
		active:   make(map[int]string),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Register creates a user account. The name is case-folded before the
// uniqueness check and stored lower-cased.
func (d *Directory) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, common.ErrEmptyField
	}
	name = strings.ToLower(name)

	d.mu.RLock()
	_, taken := d.byName[name]
	d.mu.RUnlock()
	if taken {
		return nil, fmt.Errorf("user %q: %w", name, common.ErrNameConflict)
	}

	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%q: %w", email, common.ErrInvalidEmail)
	}

	digest := cryptox.HashPassword(password, d.params)

	d.mu.Lock()
	defer d.mu.Unlock()

	// someone may have taken the name while the digest was computed
	if _, taken := d.byName[name]; taken {
		return nil, fmt.Errorf("user %q: %w", name, common.ErrNameConflict)
	}

	user := models.NewUser(d.ids.Next(ids.User), name, email, digest, nil)
	d.byID[user.ID] = user
	d.byName[user.Name] = user

	d.logger.Info(ctx, "user registered", "user", user.Name, "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and returns the user's session token. A
// user who is already logged in gets the existing token back.
func (d *Directory) Login(ctx context.Context, name, password string) (string, error) {
	if name == "" || password == "" {
		return "", common.ErrAuthenticationFailure
	}
	name = strings.ToLower(name)

	d.mu.RLock()
	user, ok := d.byName[name]
	var digest string
	if ok {
		digest = user.PasswordHash
	}
	d.mu.RUnlock()

	if !ok || !cryptox.VerifyPassword(digest, password) {
		d.logger.Info(ctx, "login failed", "user", name)
		return "", common.ErrAuthenticationFailure
	}

	var upgraded string
	if cryptox.IsLegacyDigest(digest) {
		upgraded = cryptox.HashPassword(password, d.params)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if upgraded != "" && user.PasswordHash == digest {
		user.PasswordHash = upgraded
		d.logger.Info(ctx, "legacy password digest upgraded", "user", user.Name)
	}

	if token, ok := d.active[user.ID]; ok {
		return token, nil
	}

	token, err := d.minter.Mint(user.ID, user.Name, user.PasswordHash)
	if err != nil {
		d.logger.Error(ctx, "token minting failed", "user", user.Name, "error", err)
		return "", fmt.Errorf("mint token: %w", common.ErrorInternal)
	}

	d.sessions[token] = user
	d.active[user.ID] = token

	d.logger.Info(ctx, "user logged in", "user", user.Name)
	return token, nil
}

// Logout ends the session behind token. Unknown tokens are ignored.
func (d *Directory) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.sessions[token]
	if !ok {
		return
	}
	delete(d.sessions, token)
	delete(d.active, user.ID)

	d.logger.Info(ctx, "user logged out", "user", user.Name)
}

// ValidateToken returns the user a live token belongs to.
func (d *Directory) ValidateToken(_ context.Context, token string) (*models.User, bool) {
	if token == "" {
		return nil, false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.sessions[token]
	return user, ok
}

// View calls fn with every user, ordered by id, while holding the read lock.
// fn must not call back into the directory.
func (d *Directory) View(fn func(users []*models.User)) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	users := make([]*models.User, 0, len(d.byID))
	for _, u := range d.byID {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	fn(users)
}

// Restore replaces every user with the given ones and drops all sessions.
// Users whose id or name is already taken by an earlier one are skipped and
// logged. A collection listed by several kept users stays with the first of
// them. It returns the number of users kept.
func (d *Directory) Restore(ctx context.Context, users []*models.User) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.byID = make(map[int]*models.User, len(users))
	d.byName = make(map[string]*models.User, len(users))
	d.sessions = make(map[string]*models.User)
	d.active = make(map[int]string)
	owner := make(map[int]int)

	for _, u := range users {
		u.Name = strings.ToLower(u.Name)
		if _, dup := d.byID[u.ID]; dup {
			d.logger.Warn(ctx, "duplicate user id skipped", "user_id", u.ID)
			continue
		}
		if _, dup := d.byName[u.Name]; dup {
			d.logger.Warn(ctx, "duplicate user name skipped", "user", u.Name, "user_id", u.ID)
			continue
		}
		d.byID[u.ID] = u
		d.byName[u.Name] = u
		d.dropClaimed(ctx, u, owner)
	}

	return len(d.byID)
}

// dropClaimed removes from u every collection an earlier user already owns
// and records the rest as owned by u.
func (d *Directory) dropClaimed(ctx context.Context, u *models.User, owner map[int]int) {
	for _, id := range u.CollectionIDs() {
		if first, ok := owner[id]; ok {
			d.logger.Warn(ctx, "duplicate collection ownership dropped",
				"collection_id", id, "user_id", u.ID, "owner_id", first)
			u.RemoveCollection(id)
			continue
		}
		owner[id] = u.ID
	}
}
