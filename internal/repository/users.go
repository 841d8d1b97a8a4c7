package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/agrirate/agrirate/internal/domain"
)

// UsersRepository persists accounts.
type UsersRepository struct {
	db DBTX
}

const userColumns = `id, name, email, password_hash, role, created_at`

// UserCreateParams bundles the fields required to register a user.
type UserCreateParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         domain.Role
}

// Create inserts a user. A duplicate email yields ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	const query = `
        INSERT INTO users (id, name, email, password_hash, role)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING ` + userColumns

	role := params.Role
	if role == "" {
		role = domain.RoleUser
	}
	row := r.db.QueryRow(ctx, query, uuid.NewString(), params.Name, normalizeEmail(params.Email), params.PasswordHash, string(role))
	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapWriteError(err)
	}
	return user, nil
}

// GetByID fetches a user by identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUserOrNotFound(row)
}

// GetByEmail fetches a user by (case-insensitive) email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email))
	return scanUserOrNotFound(row)
}

// SetRole changes the role of the user with the given email.
func (r *UsersRepository) SetRole(ctx context.Context, email string, role domain.Role) (domain.User, error) {
	const query = `UPDATE users SET role = $2 WHERE email = $1 RETURNING ` + userColumns
	row := r.db.QueryRow(ctx, query, normalizeEmail(email), string(role))
	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapWriteError(err)
	}
	return user, nil
}

func scanUserOrNotFound(row pgx.Row) (domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
		return domain.User{}, err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, err
	}
	user.Role = parsed
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
