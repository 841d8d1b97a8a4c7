package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrirate/agrirate/internal/domain"
	"github.com/agrirate/agrirate/internal/repository"
)

// UserFinder is the slice of the users repository the session lookup needs.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
}

// SessionLookup turns a bearer token into an Actor. The role is read from the
// store on every call so a role change takes effect immediately.
type SessionLookup struct {
	tokens *TokenIssuer
	users  UserFinder
}

// NewSessionLookup wires a token issuer to a user source.
func NewSessionLookup(tokens *TokenIssuer, users UserFinder) *SessionLookup {
	return &SessionLookup{tokens: tokens, users: users}
}

// Resolve returns the actor for token. ErrInvalidToken is returned for bad
// tokens and for tokens whose user no longer exists.
func (s *SessionLookup) Resolve(ctx context.Context, token string) (domain.Actor, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return domain.Actor{}, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Actor{}, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
		}
		return domain.Actor{}, fmt.Errorf("load session user: %w", err)
	}
	return domain.Actor{ID: user.ID, Role: user.Role}, nil
}
