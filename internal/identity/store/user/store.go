package user

import (
	"context"
	"sort"
	"sync"

	"scriptorium/internal/identity/models"
	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/cache"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/platform/sentinel"
)

// Store keeps users in a cache.Store keyed by id. Lookups by username and
// email scan the values. Saves are serialized so uniqueness checks and writes
// cannot interleave.
type Store struct {
	mu    sync.Mutex
	users cache.Store[id.UserID, *models.User]
	page  pagination.Config
}

func New(users cache.Store[id.UserID, *models.User], page pagination.Config) *Store {
	return &Store{users: users, page: page}
}

// FindByID returns sentinel.ErrNotFound when no user has the id.
func (s *Store) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, ok := s.users.Get(ctx, userID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return u, nil
}

func (s *Store) FindByUsername(ctx context.Context, username models.Username) (*models.User, error) {
	return s.findFirst(ctx, func(u *models.User) bool { return u.Username() == username })
}

func (s *Store) FindByEmail(ctx context.Context, email models.Email) (*models.User, error) {
	return s.findFirst(ctx, func(u *models.User) bool { return u.Email() == email })
}

func (s *Store) findFirst(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	all, err := s.users.Values(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range all {
		if match(u) {
			return u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Save upserts the user. A deleted user is removed instead. Returns
// sentinel.ErrAlreadyUsed when another user holds the username or email.
func (s *Store) Save(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.IsDeleted() {
		return s.users.Delete(ctx, u.ID())
	}

	all, err := s.users.Values(ctx)
	if err != nil {
		return err
	}
	for _, other := range all {
		if other.ID() == u.ID() {
			continue
		}
		if other.Username() == u.Username() || other.Email() == u.Email() {
			return sentinel.ErrAlreadyUsed
		}
	}
	return s.users.Set(ctx, u.ID(), u)
}

// Delete removes the user; deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.Delete(ctx, userID)
}

// Search pages over all users ordered by creation time, then id.
func (s *Store) Search(ctx context.Context, offset, limit int) (*pagination.Pagination[*models.User], error) {
	all, err := s.users.Values(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().Before(b.CreatedAt())
		}
		return a.ID() < b.ID()
	})
	return pagination.Apply(s.page, offset, limit, all), nil
}
