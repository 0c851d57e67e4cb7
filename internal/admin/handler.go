// Package admin exposes operator endpoints: event log search and the user
// directory.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"scriptorium/internal/identity/models"
	dErrors "scriptorium/pkg/domain-errors"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/eventlog"
	"scriptorium/pkg/platform/httputil"
	"scriptorium/pkg/platform/pagination"
	"scriptorium/pkg/requestcontext"
)

// UserLister is the slice of the identity service the admin API reads.
type UserLister interface {
	List(ctx context.Context, offset, limit int) (*pagination.Pagination[*models.User], error)
}

// Handler serves /admin routes.
type Handler struct {
	events eventlog.Repository
	users  UserLister
	page   pagination.Config
	logger *slog.Logger
}

func New(events eventlog.Repository, users UserLister, page pagination.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{events: events, users: users, page: page, logger: logger}
}

// Register mounts the admin endpoints on r. Callers add authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/events", h.HandleSearchEvents)
	r.Get("/admin/users", h.HandleListUsers)
}

// HandleSearchEvents handles GET /admin/events.
//
// Query parameters: topic, code, after (event id cursor), from and to
// (RFC 3339) and limit.
func (h *Handler) HandleSearchEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := parseEventQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// ask for one extra row to learn whether another page exists
	page := pagination.New[event.Event](h.page, 0, q.Limit, 0)
	q.Limit = page.Limit() + 1

	events, err := h.events.Search(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "event log search failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := EventsResponse{Events: events}
	if len(events) > page.Limit() {
		resp.Events = events[:page.Limit()]
		resp.NextAfter = resp.Events[len(resp.Events)-1].ID
	}
	if resp.Events == nil {
		resp.Events = []event.Event{}
	}
	resp.Count = len(resp.Events)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleListUsers handles GET /admin/users?offset=&limit=.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, err := httputil.QueryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.users.List(ctx, offset, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list users failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUsersList(page))
}

func parseEventQuery(r *http.Request) (eventlog.Query, error) {
	values := r.URL.Query()
	q := eventlog.Query{
		AfterID: strings.TrimSpace(values.Get("after")),
		Topic:   strings.ToLower(strings.TrimSpace(values.Get("topic"))),
		Code:    strings.ToLower(strings.TrimSpace(values.Get("code"))),
	}
	if q.Topic != "" && !event.ValidName(q.Topic) {
		return q, dErrors.Newf(dErrors.CodeBadRequest, "invalid topic %q", q.Topic)
	}
	if q.Code != "" && !event.ValidName(q.Code) {
		return q, dErrors.Newf(dErrors.CodeBadRequest, "invalid code %q", q.Code)
	}

	var err error
	if q.From, err = parseTime(values.Get("from"), "from"); err != nil {
		return q, err
	}
	if q.To, err = parseTime(values.Get("to"), "to"); err != nil {
		return q, err
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return q, dErrors.New(dErrors.CodeBadRequest, "to must not be before from")
	}
	if q.Limit, err = httputil.QueryInt(r, "limit", 0); err != nil {
		return q, err
	}
	return q, nil
}

func parseTime(raw, name string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "%s must be an RFC 3339 timestamp", name)
	}
	return &t, nil
}
