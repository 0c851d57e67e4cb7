package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"scriptorium/internal/identity/models"
	"scriptorium/internal/identity/service/mocks"
	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/event"
	eventmocks "scriptorium/pkg/platform/event/mocks"
	"scriptorium/pkg/platform/sentinel"
	"scriptorium/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	users     *mocks.MockRepository
	hasher    *mocks.MockPasswordHasher
	publisher *eventmocks.MockPublisher
	service   *Service
	ctx       context.Context
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockRepository(s.ctrl)
	s.hasher = mocks.NewMockPasswordHasher(s.ctrl)
	s.publisher = eventmocks.NewMockPublisher(s.ctrl)
	s.service = New(s.users, s.hasher, s.publisher)
	s.now = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) existingUser(validated bool) *models.User {
	u, err := models.NewUser("usr-1", "alice", "alice@example.com", "stored-hash", id.RoleMember, s.now.Add(-time.Hour))
	s.Require().NoError(err)
	if validated {
		s.Require().NoError(u.Validate(s.now.Add(-time.Minute)))
	}
	_, err = u.Events()
	s.Require().NoError(err)
	return u
}

// codes matches a PublishAll batch by topic/code sequence.
func codes(want ...string) gomock.Matcher {
	return gomock.Cond(func(events []event.Event) bool {
		if len(events) != len(want) {
			return false
		}
		for i, e := range events {
			if e.Topic != models.TopicUser || e.Code != want[i] {
				return false
			}
		}
		return true
	})
}

func (s *ServiceSuite) TestRegister() {
	cmd := RegisterCommand{Username: " Alice ", Email: "alice@example.com", Password: "s3cret-pass"}

	s.Run("saves then publishes registered", func() {
		gomock.InOrder(
			s.users.EXPECT().FindByUsername(s.ctx, models.Username("alice")).Return(nil, sentinel.ErrNotFound),
			s.users.EXPECT().FindByEmail(s.ctx, models.Email("alice@example.com")).Return(nil, sentinel.ErrNotFound),
			s.hasher.EXPECT().Hash("s3cret-pass").Return("hashed", nil),
			s.users.EXPECT().Save(s.ctx, gomock.Any()).Return(nil),
			s.publisher.EXPECT().PublishAll(s.ctx, codes(models.CodeRegistered)).Return(1, nil),
		)

		user, err := s.service.Register(s.ctx, cmd)
		s.Require().NoError(err)
		s.Equal(models.Username("alice"), user.Username())
		s.Equal(id.RoleMember, user.Role())
		s.Equal("hashed", user.PasswordHash())
		s.Equal(s.now, user.CreatedAt())
		s.Zero(user.PendingEvents())
	})

	s.Run("rejects malformed input before touching the store", func() {
		for _, bad := range []RegisterCommand{
			{Username: "al", Email: "alice@example.com", Password: "s3cret-pass"},
			{Username: "alice", Email: "not-an-email", Password: "s3cret-pass"},
			{Username: "alice", Email: "alice@example.com", Password: "short"},
		} {
			_, err := s.service.Register(s.ctx, bad)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "%+v", bad)
		}
		_, err := s.service.Register(s.ctx, RegisterCommand{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass", Role: "root"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("username taken", func() {
		s.users.EXPECT().FindByUsername(s.ctx, models.Username("alice")).Return(s.existingUser(false), nil)

		_, err := s.service.Register(s.ctx, cmd)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("store clash on save", func() {
		s.users.EXPECT().FindByUsername(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.users.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.hasher.EXPECT().Hash(gomock.Any()).Return("hashed", nil)
		s.users.EXPECT().Save(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		_, err := s.service.Register(s.ctx, cmd)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("infrastructure errors propagate unchanged", func() {
		storeErr := dErrors.New(dErrors.CodeInfrastructure, "redis down")
		s.users.EXPECT().FindByUsername(gomock.Any(), gomock.Any()).Return(nil, storeErr)

		_, err := s.service.Register(s.ctx, cmd)
		s.ErrorIs(err, storeErr)
	})
}

func (s *ServiceSuite) TestValidate() {
	s.Run("publishes validated", func() {
		user := s.existingUser(false)
		s.users.EXPECT().FindByID(s.ctx, user.ID()).Return(user, nil)
		s.users.EXPECT().Save(s.ctx, user).Return(nil)
		s.publisher.EXPECT().PublishAll(s.ctx, codes(models.CodeValidated)).Return(2, nil)

		s.Require().NoError(s.service.Validate(s.ctx, user.ID()))
		s.True(user.IsValidated())
	})

	s.Run("twice is a conflict and publishes nothing", func() {
		user := s.existingUser(true)
		s.users.EXPECT().FindByID(s.ctx, user.ID()).Return(user, nil)

		err := s.service.Validate(s.ctx, user.ID())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown user", func() {
		s.users.EXPECT().FindByID(s.ctx, id.UserID("usr-404")).Return(nil, sentinel.ErrNotFound)

		err := s.service.Validate(s.ctx, "usr-404")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty id", func() {
		err := s.service.Validate(s.ctx, "")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestRequestPasswordRecovery() {
	s.Run("validated user", func() {
		user := s.existingUser(true)
		s.users.EXPECT().FindByEmail(s.ctx, user.Email()).Return(user, nil)
		s.users.EXPECT().Save(s.ctx, user).Return(nil)
		s.publisher.EXPECT().PublishAll(s.ctx, codes(models.CodePasswordRecoveryRequested)).Return(1, nil)

		s.NoError(s.service.RequestPasswordRecovery(s.ctx, "alice@example.com"))
	})

	s.Run("unknown email succeeds silently", func() {
		s.users.EXPECT().FindByEmail(s.ctx, models.Email("ghost@example.com")).Return(nil, sentinel.ErrNotFound)

		s.NoError(s.service.RequestPasswordRecovery(s.ctx, "ghost@example.com"))
	})

	s.Run("unvalidated user", func() {
		user := s.existingUser(false)
		s.users.EXPECT().FindByEmail(s.ctx, user.Email()).Return(user, nil)

		err := s.service.RequestPasswordRecovery(s.ctx, "alice@example.com")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestChangePassword() {
	s.Run("verifies current password", func() {
		user := s.existingUser(true)
		s.users.EXPECT().FindByID(s.ctx, user.ID()).Return(user, nil)
		s.hasher.EXPECT().Verify("stored-hash", "wrong-pass").Return(dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))

		err := s.service.ChangePassword(s.ctx, user.ID(), "wrong-pass", "brand-new-pass")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal("stored-hash", user.PasswordHash())
	})

	s.Run("replaces hash", func() {
		user := s.existingUser(true)
		s.users.EXPECT().FindByID(s.ctx, user.ID()).Return(user, nil)
		s.hasher.EXPECT().Verify("stored-hash", "old-password").Return(nil)
		s.hasher.EXPECT().Hash("brand-new-pass").Return("new-hash", nil)
		s.users.EXPECT().Save(s.ctx, user).Return(nil)
		s.publisher.EXPECT().PublishAll(s.ctx, codes(models.CodePasswordChanged)).Return(1, nil)

		s.Require().NoError(s.service.ChangePassword(s.ctx, user.ID(), "old-password", "brand-new-pass"))
		s.Equal("new-hash", user.PasswordHash())
	})
}

func (s *ServiceSuite) TestDelete() {
	s.Run("saves deleted user and publishes deleted", func() {
		user := s.existingUser(true)
		s.users.EXPECT().FindByID(s.ctx, user.ID()).Return(user, nil)
		s.users.EXPECT().Save(s.ctx, user).DoAndReturn(func(_ context.Context, u *models.User) error {
			s.True(u.IsDeleted())
			return nil
		})
		s.publisher.EXPECT().PublishAll(s.ctx, codes(models.CodeDeleted)).Return(3, nil)

		s.NoError(s.service.Delete(s.ctx, user.ID()))
	})

	s.Run("cancelled publish is reported", func() {
		user := s.existingUser(true)
		cancelled := dErrors.New(dErrors.CodeTimeout, "publish cancelled")
		s.users.EXPECT().FindByID(s.ctx, user.ID()).Return(user, nil)
		s.users.EXPECT().Save(s.ctx, user).Return(nil)
		s.publisher.EXPECT().PublishAll(s.ctx, gomock.Any()).Return(0, cancelled)

		s.ErrorIs(s.service.Delete(s.ctx, user.ID()), cancelled)
	})
}
