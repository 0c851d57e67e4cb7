package admin

import (
	"time"

	"scriptorium/internal/identity/models"
	"scriptorium/pkg/platform/event"
	"scriptorium/pkg/platform/pagination"
)

// UserInfoResponse is the HTTP response DTO for user info.
type UserInfoResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Validated   bool       `json:"validated"`
	CreatedAt   time.Time  `json:"created_at"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
}

// UsersListResponse wraps one page of users.
type UsersListResponse struct {
	Users  []*UserInfoResponse `json:"users"`
	Offset int                 `json:"offset"`
	Limit  int                 `json:"limit"`
	Total  int                 `json:"total"`
}

// EventsResponse is one page of the event log. NextAfter is the cursor for the
// following page and is empty on the last one.
type EventsResponse struct {
	Events    []event.Event `json:"events"`
	Count     int           `json:"count"`
	NextAfter string        `json:"next_after,omitempty"`
}

func toUsersList(page *pagination.Pagination[*models.User]) *UsersListResponse {
	resp := &UsersListResponse{
		Users:  make([]*UserInfoResponse, 0, page.Count()),
		Offset: page.Offset(),
		Limit:  page.Limit(),
		Total:  page.Total(),
	}
	for _, u := range page.Items() {
		resp.Users = append(resp.Users, &UserInfoResponse{
			ID:          string(u.ID()),
			Username:    u.Username().String(),
			Email:       u.Email().String(),
			Role:        u.Role().String(),
			Validated:   u.IsValidated(),
			CreatedAt:   u.CreatedAt(),
			ValidatedAt: u.ValidatedAt(),
		})
	}
	return resp
}
