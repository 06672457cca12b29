// Package users owns account persistence and the account lookups used by
// authentication.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blogging/internal/database"

	"github.com/jackc/pgx/v5"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email or username already exists")
)

const userColumns = `id, email, username, email_is_verified, first_name, last_name, created_at`

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	// FindByEmail includes the password hash in the result.
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id int64, changes Changes) (*User, error)
	Delete(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db database.DBTX
}

// NewRepository creates a PostgreSQL-backed account repository
func NewRepository(db database.DBTX) Repository {
	return &postgresRepository{db: db}
}

func scanUser(row pgx.Row, withHash bool) (*User, error) {
	u := &User{}
	fields := []any{
		&u.ID,
		&u.Email,
		&u.Username,
		&u.EmailIsVerified,
		&u.FirstName,
		&u.LastName,
		&u.CreatedAt,
	}
	if withHash {
		fields = append(fields, &u.PasswordHash)
	}

	if err := row.Scan(fields...); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *postgresRepository) Create(ctx context.Context, u *User) (*User, error) {
	query := `
		INSERT INTO users (email, username, password, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRow(ctx, query,
		u.Email, u.Username, u.PasswordHash, u.FirstName, u.LastName,
	), false)
	if database.IsUniqueViolation(err) {
		return nil, ErrUserAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, id), false)
	if database.IsNoRows(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + `, password FROM users WHERE email = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, email), true)
	if database.IsNoRows(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, changes Changes) (*User, error) {
	if changes.empty() {
		return r.FindByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.Email != nil {
		add("email", *changes.Email)
	}
	if changes.Username != nil {
		add("username", *changes.Username)
	}
	if changes.PasswordHash != nil {
		add("password", *changes.PasswordHash)
	}
	if changes.FirstName != nil {
		add("first_name", *changes.FirstName)
	}
	if changes.LastName != nil {
		add("last_name", *changes.LastName)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	u, err := scanUser(r.db.QueryRow(ctx, query, args...), false)
	switch {
	case database.IsNoRows(err):
		return nil, ErrUserNotFound
	case database.IsUniqueViolation(err):
		return nil, ErrUserAlreadyExists
	case err != nil:
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

// Delete removes the account. Its sessions go with it through the
// foreign key cascade.
func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
