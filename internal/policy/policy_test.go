package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrirate/agrirate/internal/domain"
)

func TestDecide(t *testing.T) {
	anon := domain.Actor{}
	user := domain.Actor{ID: "u1", Role: domain.RoleUser}
	rater := domain.Actor{ID: "r1", Role: domain.RoleRater}
	admin := domain.Actor{ID: "a1", Role: domain.RoleAdmin}
	unknownRole := domain.Actor{ID: "x1", Role: domain.Role("superuser")}

	tests := []struct {
		name   string
		actor  domain.Actor
		action Action
		owner  string
		want   Decision
	}{
		{"anonymous may view", anon, ViewProductRatings, "", Decision{Allowed: true}},
		{"user may view", user, ViewProductRatings, "", Decision{Allowed: true}},

		{"anonymous cannot create", anon, CreateRating, "", Decision{Reason: ReasonUnauthenticated}},
		{"plain user cannot create", user, CreateRating, "", Decision{Reason: ReasonInsufficientRole}},
		{"rater creates", rater, CreateRating, "", Decision{Allowed: true}},
		{"admin creates", admin, CreateRating, "", Decision{Allowed: true}},
		{"unknown role cannot create", unknownRole, CreateRating, "", Decision{Reason: ReasonInsufficientRole}},

		{"rater updates own", rater, UpdateOwnRating, "r1", Decision{Allowed: true}},
		{"rater cannot update another's", rater, UpdateOwnRating, "someone", Decision{Reason: ReasonNotOwner}},
		{"plain user cannot update own", user, UpdateOwnRating, "u1", Decision{Reason: ReasonInsufficientRole}},

		{"anonymous admin list", anon, AdminListRatings, "", Decision{Reason: ReasonUnauthenticated}},
		{"rater admin list", rater, AdminListRatings, "", Decision{Reason: ReasonInsufficientRole}},
		{"admin list", admin, AdminListRatings, "", Decision{Allowed: true}},
		{"rater admin update", rater, AdminUpdateAnyRating, "r1", Decision{Reason: ReasonInsufficientRole}},
		{"admin updates any", admin, AdminUpdateAnyRating, "someone", Decision{Allowed: true}},
		{"user admin delete", user, AdminDeleteAnyRating, "", Decision{Reason: ReasonInsufficientRole}},
		{"admin deletes any", admin, AdminDeleteAnyRating, "someone", Decision{Allowed: true}},

		{"unknown action", admin, Action("rating:explode"), "", Decision{Reason: ReasonUnknownAction}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.actor, tt.action, tt.owner))
		})
	}
}

func TestDecisionErr(t *testing.T) {
	require.NoError(t, Decision{Allowed: true}.Err())

	err := Decide(domain.Actor{}, CreateRating, "").Err()
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.False(t, errors.Is(err, ErrForbidden))

	err = Decide(domain.Actor{ID: "u", Role: domain.RoleUser}, CreateRating, "").Err()
	require.ErrorIs(t, err, ErrForbidden)
	require.Contains(t, err.Error(), string(ReasonInsufficientRole))
}
