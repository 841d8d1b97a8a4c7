package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of authorization levels a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleRater Role = "rater"
	RoleAdmin Role = "admin"
)

// ParseRole validates a raw role string. Unknown values are rejected.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, nil
	case RoleRater:
		return RoleRater, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

func (r Role) String() string { return string(r) }

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// UserSummary is the public projection of a user joined onto ratings.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// Actor identifies the caller of a service operation. The zero value is an
// anonymous caller.
type Actor struct {
	ID   string
	Role Role
}

// Authenticated reports whether the actor carries a resolved identity.
func (a Actor) Authenticated() bool {
	return a.ID != ""
}
