package service

import (
	"context"
	"errors"

	"scriptorium/internal/publishing/models"
	"scriptorium/internal/publishing/store"
	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/platform/sentinel"
)

// Service answers read queries over the publishing read models.
type Service struct {
	authors *store.AuthorStore
	readers *store.ReaderStore
}

func New(authors *store.AuthorStore, readers *store.ReaderStore) *Service {
	return &Service{authors: authors, readers: readers}
}

func (s *Service) GetAuthor(ctx context.Context, authorID id.AuthorID) (*models.Author, error) {
	a, err := s.authors.FindByID(ctx, authorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "author not found")
	}
	return a, err
}

func (s *Service) ListAuthors(ctx context.Context, offset, limit int) (*pagination.Pagination[*models.Author], error) {
	return s.authors.Search(ctx, offset, limit)
}

func (s *Service) GetReader(ctx context.Context, readerID id.ReaderID) (*models.Reader, error) {
	r, err := s.readers.FindByID(ctx, readerID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "reader not found")
	}
	return r, err
}
