package service

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"scriptorium/internal/identity/metrics"
	"scriptorium/internal/identity/models"
	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/platform/sentinel"
	"scriptorium/pkg/requestcontext"
)

const minPasswordLength = 8

// Repository persists users. Lookups return sentinel.ErrNotFound; Save returns
// sentinel.ErrAlreadyUsed on a username or email clash.
type Repository interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username models.Username) (*models.User, error)
	FindByEmail(ctx context.Context, email models.Email) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID id.UserID) error
	Search(ctx context.Context, offset, limit int) (*pagination.Pagination[*models.User], error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// Service runs identity use cases: mutate the user, save it, then publish the
// events it recorded.
type Service struct {
	users     Repository
	hasher    PasswordHasher
	publisher event.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(users Repository, hasher PasswordHasher, publisher event.Publisher, opts ...Option) *Service {
	s := &Service{users: users, hasher: hasher, publisher: publisher}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RegisterCommand carries raw registration input.
type RegisterCommand struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Register creates an unvalidated account.
//
// Errors: CodeValidation for malformed input, CodeInvalidInput for an unknown
// role, CodeConflict when the username or email is taken.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*models.User, error) {
	username, err := models.ParseUsername(cmd.Username)
	if err != nil {
		return nil, err
	}
	email, err := models.ParseEmail(cmd.Email)
	if err != nil {
		return nil, err
	}
	role, err := id.ParseRole(cmd.Role)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(cmd.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "username already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}
	user, err := models.NewUser(id.NewID[id.UserID](), username, email, hash, role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, user); err != nil {
		return nil, err
	}
	s.metrics.IncrementRegistered()
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID(), "username", user.Username())
	return user, nil
}

// Validate confirms an account, which makes the user an author and reader in
// publishing.
func (s *Service) Validate(ctx context.Context, userID id.UserID) error {
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.Validate(requestcontext.Now(ctx)); err != nil {
		return err
	}
	if err := s.saveAndPublish(ctx, user); err != nil {
		return err
	}
	s.metrics.IncrementValidated()
	return nil
}

// RequestPasswordRecovery publishes a recovery request for the account with
// the given email. Unknown addresses succeed silently so callers cannot probe
// for accounts.
func (s *Service) RequestPasswordRecovery(ctx context.Context, rawEmail string) error {
	email, err := models.ParseEmail(rawEmail)
	if err != nil {
		return err
	}
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.logger.DebugContext(ctx, "password recovery for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	if err := user.RequestPasswordRecovery(requestcontext.Now(ctx)); err != nil {
		return err
	}
	return s.saveAndPublish(ctx, user)
}

// ChangePassword replaces the password after verifying the current one.
//
// Errors: CodeUnauthorized when current does not match.
func (s *Service) ChangePassword(ctx context.Context, userID id.UserID, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hasher.Verify(user.PasswordHash(), current); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(hash, requestcontext.Now(ctx)); err != nil {
		return err
	}
	return s.saveAndPublish(ctx, user)
}

// Delete removes the account and publishes UserDeleted.
func (s *Service) Delete(ctx context.Context, userID id.UserID) error {
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	user.Delete(requestcontext.Now(ctx))
	if err := s.saveAndPublish(ctx, user); err != nil {
		return err
	}
	s.metrics.IncrementDeleted()
	s.logger.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}

func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.find(ctx, userID)
}

func (s *Service) List(ctx context.Context, offset, limit int) (*pagination.Pagination[*models.User], error) {
	return s.users.Search(ctx, offset, limit)
}

func (s *Service) find(ctx context.Context, userID id.UserID) (*models.User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user ID required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// saveAndPublish persists the user and hands its drained events to the
// publisher. Handler failures never reach this point; only serialization or a
// cancelled context do.
func (s *Service) saveAndPublish(ctx context.Context, user *models.User) error {
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.New(dErrors.CodeConflict, "username or email already registered")
		}
		return err
	}
	events, err := user.Events()
	if err != nil {
		return err
	}
	if _, err := s.publisher.PublishAll(ctx, events); err != nil {
		return err
	}
	return nil
}

func validatePassword(p string) error {
	if utf8.RuneCountInString(p) < minPasswordLength {
		return dErrors.Newf(dErrors.CodeValidation, "password must be at least %d characters", minPasswordLength)
	}
	return nil
}
