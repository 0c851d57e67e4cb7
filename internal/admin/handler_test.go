package admin

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks UserLister

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"scriptorium/internal/admin/mocks"
	"scriptorium/internal/identity/models"
	id "scriptorium/pkg/domain"
	"scriptorium/pkg/platform/event"
	eventlogmemory "scriptorium/pkg/platform/eventlog/memory"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	users  *mocks.MockUserLister
	events *eventlogmemory.InMemoryStore
	router chi.Router
	saved  []event.Event
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.users = mocks.NewMockUserLister(gomock.NewController(s.T()))
	s.events = eventlogmemory.NewInMemoryStore()
	s.router = chi.NewRouter()
	New(s.events, s.users, pagination.Config{MaxPageSize: 3}, nil).Register(s.router)

	s.saved = nil
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i, tc := range []struct{ topic, code string }{
		{"user", "registered"},
		{"user", "validated"},
		{"author", "created"},
		{"reader", "created"},
		{"payment", "created"},
		{"payment", "paid"},
	} {
		e, err := event.New(tc.topic, tc.code, map[string]int{"n": i}, base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(err)
		s.Require().NoError(s.events.Save(testutil.Context(), e))
		s.saved = append(s.saved, e)
	}
}

func (s *HandlerSuite) TestSearchPagesWithCursor() {
	rr := testutil.Get(s.router, "/admin/events")
	s.Equal(http.StatusOK, rr.Code)
	first := testutil.UnmarshalResponse[EventsResponse](s.T(), rr)
	s.Equal(3, first.Count, "limit defaults to the configured maximum")
	s.Equal(s.saved[2].ID, first.NextAfter)

	rr = testutil.Get(s.router, "/admin/events?after="+first.NextAfter)
	second := testutil.UnmarshalResponse[EventsResponse](s.T(), rr)
	s.Equal(3, second.Count)
	s.Equal(s.saved[3].ID, second.Events[0].ID)
	s.Empty(second.NextAfter)
}

func (s *HandlerSuite) TestSearchFilters() {
	rr := testutil.Get(s.router, "/admin/events?topic=Payment")
	resp := testutil.UnmarshalResponse[EventsResponse](s.T(), rr)
	s.Require().Equal(2, resp.Count)
	s.Equal("created", resp.Events[0].Code)

	rr = testutil.Get(s.router, "/admin/events?code=created&limit=10")
	resp = testutil.UnmarshalResponse[EventsResponse](s.T(), rr)
	s.Equal(3, resp.Count)

	from := s.saved[4].Timestamp.Format(time.RFC3339)
	rr = testutil.Get(s.router, "/admin/events?from="+from)
	resp = testutil.UnmarshalResponse[EventsResponse](s.T(), rr)
	s.Equal(2, resp.Count)

	rr = testutil.Get(s.router, "/admin/events?topic=nothing")
	resp = testutil.UnmarshalResponse[EventsResponse](s.T(), rr)
	s.Equal(0, resp.Count)
	s.NotNil(resp.Events)
}

func (s *HandlerSuite) TestSearchRejectsBadInput() {
	for _, path := range []string{
		"/admin/events?topic=not_valid",
		"/admin/events?from=yesterday",
		"/admin/events?limit=-4",
		"/admin/events?from=2026-04-02T00:00:00Z&to=2026-04-01T00:00:00Z",
	} {
		rr := testutil.Get(s.router, path)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	}
}

func (s *HandlerSuite) TestListUsers() {
	u, err := models.NewUser("usr-1", "janedoe", "jane@example.com", "hash", id.RoleMember, testutil.FixedTime)
	s.Require().NoError(err)
	page := pagination.Apply(pagination.Config{}, 0, 10, []*models.User{u})
	s.users.EXPECT().List(gomock.Any(), 0, 10).Return(page, nil)

	rr := testutil.Get(s.router, "/admin/users?limit=10")
	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[UsersListResponse](s.T(), rr)
	s.Equal(1, resp.Total)
	s.Require().Len(resp.Users, 1)
	s.Equal("janedoe", resp.Users[0].Username)
	s.Equal("member", resp.Users[0].Role)
	s.False(resp.Users[0].Validated)
}

func (s *HandlerSuite) TestListUsersFailure() {
	s.users.EXPECT().List(gomock.Any(), 0, 0).Return(nil, errors.New("boom"))

	rr := testutil.Get(s.router, "/admin/users")
	testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")

	rr = testutil.Get(s.router, fmt.Sprintf("/admin/users?offset=%s", "x"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}
