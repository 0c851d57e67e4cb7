package models

import (
	"encoding/json"
	"net/mail"
	"regexp"
	"strings"
	"time"

	id "scriptorium/pkg/domain"
	dErrors "scriptorium/pkg/domain-errors"
)

const (
	minUsernameLength = 4
	maxUsernameLength = 64
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Username is a unique, lowercase account handle.
type Username string

// ParseUsername trims and lowercases raw before validating it.
//
// Errors: CodeValidation when the result is not 4..64 characters of
// lowercase letters, digits, '-' or '_'.
func ParseUsername(raw string) (Username, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if len(s) < minUsernameLength || len(s) > maxUsernameLength {
		return "", dErrors.Newf(dErrors.CodeValidation, "username must be %d to %d characters", minUsernameLength, maxUsernameLength)
	}
	if !usernamePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeValidation, "username may only contain lowercase letters, digits, '-' and '_'")
	}
	return Username(s), nil
}

func (u Username) String() string { return string(u) }

// Email is a normalized mailbox address without display name.
type Email string

// ParseEmail accepts a bare RFC 5322 address and lowercases it.
//
// Errors: CodeValidation when raw is not a single bare address.
func ParseEmail(raw string) (Email, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Name != "" || addr.Address != raw {
		return "", dErrors.New(dErrors.CodeValidation, "invalid email address")
	}
	return Email(strings.ToLower(addr.Address)), nil
}

func (e Email) String() string { return string(e) }

// User is the identity aggregate.
//
// Invariants:
//   - username and email are valid value objects and unique across users
//   - a user is validated at most once
//   - password recovery is only offered to validated users
type User struct {
	id.AggregateRoot[id.UserID]
	username     Username
	email        Email
	passwordHash string
	role         id.Role
	validatedAt  *time.Time
}

// NewUser registers a new account and records UserRegistered.
func NewUser(userID id.UserID, username Username, email Email, passwordHash string, role id.Role, now time.Time) (*User, error) {
	root, err := id.NewAggregateRoot(userID, now)
	if err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	u := &User{
		AggregateRoot: root,
		username:      username,
		email:         email,
		passwordHash:  passwordHash,
		role:          role,
	}
	u.RecordEvent(UserRegistered{UserID: userID, Username: username, Email: email, Role: role, At: now})
	return u, nil
}

func (u *User) Username() Username { return u.username }
func (u *User) Email() Email { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() id.Role { return u.role }
func (u *User) IsValidated() bool { return u.validatedAt != nil }
func (u *User) ValidatedAt() *time.Time { return u.validatedAt }

// Validate confirms the account.
//
// Errors: CodeConflict when the user was already validated.
func (u *User) Validate(now time.Time) error {
	if u.IsValidated() {
		return dErrors.New(dErrors.CodeConflict, "already_validated")
	}
	u.validatedAt = &now
	u.Update(now)
	u.RecordEvent(UserValidated{UserID: u.ID(), Username: u.username, Email: u.email, At: now})
	return nil
}

// RequestPasswordRecovery records the request so notification can mail it.
//
// Errors: CodeConflict when the user is not validated.
func (u *User) RequestPasswordRecovery(now time.Time) error {
	if !u.IsValidated() {
		return dErrors.New(dErrors.CodeConflict, "not_validated")
	}
	u.RecordEvent(PasswordRecoveryRequested{UserID: u.ID(), Email: u.email, At: now})
	return nil
}

func (u *User) ChangePassword(passwordHash string, now time.Time) error {
	if passwordHash == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "password hash required")
	}
	u.passwordHash = passwordHash
	u.Update(now)
	u.RecordEvent(PasswordChanged{UserID: u.ID(), At: now})
	return nil
}

// Delete marks the user deleted and records UserDeleted.
func (u *User) Delete(now time.Time) {
	u.AggregateRoot.Delete(now)
	u.RecordEvent(UserDeleted{UserID: u.ID(), At: now})
}

// Clone copies the persisted state. Pending events are not copied.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.AggregateRoot = u.Snapshot()
	if u.validatedAt != nil {
		t := *u.validatedAt
		c.validatedAt = &t
	}
	return &c
}

type userState struct {
	id.AggregateState[id.UserID]
	Username     Username   `json:"username"`
	Email        Email      `json:"email"`
	PasswordHash string     `json:"password_hash"`
	Role         id.Role    `json:"role"`
	ValidatedAt  *time.Time `json:"validated_at,omitempty"`
}

func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userState{
		AggregateState: u.State(),
		Username:       u.username,
		Email:          u.email,
		PasswordHash:   u.passwordHash,
		Role:           u.role,
		ValidatedAt:    u.validatedAt,
	})
}

func (u *User) UnmarshalJSON(data []byte) error {
	var s userState
	if err := json.Unmarshal(data, &s); err != nil {
		return dErrors.Wrap(err, dErrors.CodeSerialization, "decode user")
	}
	root, err := id.RestoreAggregateRoot(s.AggregateState)
	if err != nil {
		return err
	}
	*u = User{
		AggregateRoot: root,
		username:      s.Username,
		email:         s.Email,
		passwordHash:  s.PasswordHash,
		role:          s.Role,
		validatedAt:   s.ValidatedAt,
	}
	return nil
}
