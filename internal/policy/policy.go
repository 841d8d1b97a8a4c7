// Package policy decides whether an actor may perform a rating action.
// Decide never touches the store.
package policy

import (
	"errors"
	"fmt"

	"github.com/agrirate/agrirate/internal/domain"
)

// Action names an operation subject to authorization.
type Action string

const (
	CreateRating         Action = "rating:create"
	UpdateOwnRating      Action = "rating:update-own"
	ViewProductRatings   Action = "rating:view"
	AdminListRatings     Action = "admin:rating:list"
	AdminUpdateAnyRating Action = "admin:rating:update"
	AdminDeleteAnyRating Action = "admin:rating:delete"
)

// Reason explains a denial.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonNotOwner         Reason = "not_owner"
	ReasonUnknownAction    Reason = "unknown_action"
)

var (
	// ErrUnauthenticated is returned by Decision.Err for anonymous callers.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned by Decision.Err for every other denial.
	ErrForbidden = errors.New("forbidden")
)

// Decision is the outcome of Decide.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision { return Decision{Allowed: true} }

func deny(r Reason) Decision { return Decision{Reason: r} }

// Err converts a denial into ErrUnauthenticated or ErrForbidden, wrapped with
// the reason. An allowed decision yields nil.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return ErrUnauthenticated
	default:
		return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
}

var raterRoles = map[domain.Role]struct{}{
	domain.RoleRater: {},
	domain.RoleAdmin: {},
}

// Decide maps (actor, action, owner of the target resource) to allow or deny.
// Only role is gated here; binding a non-admin mutation to the caller's own
// rating is the service's job, and ownerID is checked only for UpdateOwnRating
// when the caller supplies one.
func Decide(actor domain.Actor, action Action, ownerID string) Decision {
	if action == ViewProductRatings {
		return allow()
	}
	if !knownAction(action) {
		return deny(ReasonUnknownAction)
	}
	if !actor.Authenticated() {
		return deny(ReasonUnauthenticated)
	}

	switch action {
	case CreateRating, UpdateOwnRating:
		if _, ok := raterRoles[actor.Role]; !ok {
			return deny(ReasonInsufficientRole)
		}
		if action == UpdateOwnRating && ownerID != "" && ownerID != actor.ID {
			return deny(ReasonNotOwner)
		}
		return allow()
	default:
		if actor.Role != domain.RoleAdmin {
			return deny(ReasonInsufficientRole)
		}
		return allow()
	}
}

func knownAction(a Action) bool {
	switch a {
	case CreateRating, UpdateOwnRating, ViewProductRatings,
		AdminListRatings, AdminUpdateAnyRating, AdminDeleteAnyRating:
		return true
	}
	return false
}
