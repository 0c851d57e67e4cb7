// Package identity owns user accounts: registration, validation, password
// management and deletion. Every state change is published on the "user"
// topic for the other contexts to react to.
package identity

import (
	"scriptorium/internal/identity/hasher"
	"scriptorium/internal/identity/models"
	"scriptorium/internal/identity/service"
	userstore "scriptorium/internal/identity/store/user"
	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/cache"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/pagination"
)

// Service exposes the identity use cases.
type Service = service.Service

type RegisterCommand = service.RegisterCommand

// NewStore builds the user repository on top of a cache backend.
func NewStore(users cache.Store[id.UserID, *models.User], page pagination.Config) *userstore.Store {
	return userstore.New(users, page)
}

// NewService constructs the identity service with a bcrypt hasher.
func NewService(users service.Repository, publisher event.Publisher, opts ...service.Option) *Service {
	return service.New(users, hasher.New(0), publisher, opts...)
}
