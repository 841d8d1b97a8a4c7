package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrirate/agrirate/internal/domain"
	"github.com/agrirate/agrirate/internal/repository"
)

const testSecret = "0123456789abcdef-test-secret"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	require.NoError(t, VerifyPassword(hash, "password123"))
	require.ErrorIs(t, VerifyPassword(hash, "password124"), ErrInvalidCredentials)
	require.Error(t, VerifyPassword("not-a-bcrypt-hash", "password123"))
}

func TestTokenIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	sub, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestTokenParseRejects(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	good, err := issuer.Issue("user-1")
	require.NoError(t, err)

	expired := NewTokenIssuer(testSecret, time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("user-1")
	require.NoError(t, err)

	other := NewTokenIssuer("another-secret-of-16+", time.Hour)
	foreign, err := other.Issue("user-1")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":      "not.a.token",
		"expired":      old,
		"wrong secret": foreign,
		"alg none":     none,
		"no subject":   noSubject,
		"tampered":     good + "x",
		"empty":        "",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Parse(tok)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

type fakeUsers map[string]domain.User

func (f fakeUsers) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := f[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func TestSessionLookupReadsRoleFromStore(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	users := fakeUsers{"u1": {ID: "u1", Role: domain.RoleRater}}
	lookup := NewSessionLookup(issuer, users)

	token, err := issuer.Issue("u1")
	require.NoError(t, err)

	actor, err := lookup.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: "u1", Role: domain.RoleRater}, actor)

	users["u1"] = domain.User{ID: "u1", Role: domain.RoleUser}
	actor, err = lookup.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, actor.Role)

	ghost, err := issuer.Issue("gone")
	require.NoError(t, err)
	_, err = lookup.Resolve(context.Background(), ghost)
	require.ErrorIs(t, err, ErrInvalidToken)
}
