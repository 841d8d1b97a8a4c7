package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agrirate/agrirate/internal/auth"
	"github.com/agrirate/agrirate/internal/domain"
	"github.com/agrirate/agrirate/internal/repository"
)

// RegisterInput is a self-service sign-up request.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput exchanges credentials for a session token.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a signed session token and the account it belongs to.
type LoginResult struct {
	Token string
	User  domain.User
}

// AccountService manages registration, login and role assignment.
type AccountService struct {
	repo     *repository.Repository
	tokens   *auth.TokenIssuer
	logger   *zap.Logger
	validate *validator.Validate
}

// NewAccountService builds an AccountService.
func NewAccountService(repo *repository.Repository, tokens *auth.TokenIssuer, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		repo:     repo,
		tokens:   tokens,
		logger:   logger.Named("accounts"),
		validate: newValidator(),
	}
}

// Register creates an account with the user role. Roles can only be raised
// through SetRole.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(s.validate, in); err != nil {
		return domain.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.repo.Users.Create(ctx, repository.UserCreateParams{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		return domain.User{}, mapRepoError("register", err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(s.validate, in); err != nil {
		return LoginResult{}, err
	}

	user, err := s.repo.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, fmt.Errorf("login: %w", ErrUnauthenticated)
		}
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return LoginResult{}, fmt.Errorf("login: %w", ErrUnauthenticated)
		}
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: user}, nil
}

// Me returns the caller's own profile.
func (s *AccountService) Me(ctx context.Context, actor domain.Actor) (domain.User, error) {
	if !actor.Authenticated() {
		return domain.User{}, ErrUnauthenticated
	}
	user, err := s.repo.Users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, fmt.Errorf("me: %w", ErrUnauthenticated)
		}
		return domain.User{}, fmt.Errorf("me: %w", err)
	}
	return user, nil
}

// SetRole assigns a role to the account with the given email. It is exposed
// only through the operator CLI.
func (s *AccountService) SetRole(ctx context.Context, email, rawRole string) (domain.User, error) {
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return domain.User{}, invalidField("role", "must be one of user, rater, admin")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.User{}, invalidField("email", "is required")
	}
	user, err := s.repo.Users.SetRole(ctx, email, role)
	if err != nil {
		return domain.User{}, mapRepoError("set role", err)
	}
	s.logger.Info("role changed", zap.String("user_id", user.ID), zap.Stringer("role", user.Role))
	return user, nil
}
