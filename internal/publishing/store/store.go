// Package store holds the publishing read models in cache backends.
package store

import (
	"context"
	"sort"

	"scriptorium/internal/publishing/models"
	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/cache"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/platform/sentinel"
)

type entity[I id.Identifier] interface {
	ID() I
	IsDeleted() bool
}

// Cached is a repository over a cache.Store keyed by the entity id. Saving a
// deleted entity removes it.
type Cached[I id.Identifier, T entity[I]] struct {
	items cache.Store[I, T]
	page  pagination.Config
}

type (
	AuthorStore = Cached[id.AuthorID, *models.Author]
	ReaderStore = Cached[id.ReaderID, *models.Reader]
)

func NewAuthorStore(items cache.Store[id.AuthorID, *models.Author], page pagination.Config) *AuthorStore {
	return &AuthorStore{items: items, page: page}
}

func NewReaderStore(items cache.Store[id.ReaderID, *models.Reader], page pagination.Config) *ReaderStore {
	return &ReaderStore{items: items, page: page}
}

// FindByID returns sentinel.ErrNotFound for unknown ids.
func (s *Cached[I, T]) FindByID(ctx context.Context, key I) (T, error) {
	v, ok := s.items.Get(ctx, key)
	if !ok {
		var zero T
		return zero, sentinel.ErrNotFound
	}
	return v, nil
}

func (s *Cached[I, T]) Exists(ctx context.Context, key I) bool {
	_, ok := s.items.Get(ctx, key)
	return ok
}

func (s *Cached[I, T]) Save(ctx context.Context, v T) error {
	if v.IsDeleted() {
		return s.items.Delete(ctx, v.ID())
	}
	return s.items.Set(ctx, v.ID(), v)
}

func (s *Cached[I, T]) Delete(ctx context.Context, key I) error {
	return s.items.Delete(ctx, key)
}

// Search pages over all entries ordered by id.
func (s *Cached[I, T]) Search(ctx context.Context, offset, limit int) (*pagination.Pagination[T], error) {
	all, err := s.items.Values(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })
	return pagination.Apply(s.page, offset, limit, all), nil
}
