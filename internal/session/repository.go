package session

import (
	"context"
	"fmt"

	"blogging/internal/database"

	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, user_id, data, is_revoked, created_at, expires_at`

// Repository defines session row persistence
type Repository interface {
	// FindByID returns nil, nil when no row has the id.
	FindByID(ctx context.Context, id string) (*Session, error)
	// FindByUserID returns the non-revoked sessions owned by the account.
	FindByUserID(ctx context.Context, userID int64) ([]Session, error)
	// Upsert inserts or updates by id. Nil IsRevoked and UserID keep the
	// stored values.
	Upsert(ctx context.Context, params UpsertParams) (*Session, error)
	// Revoke flags the row as revoked and returns the affected row count.
	Revoke(ctx context.Context, id string) (int64, error)
	// Delete removes the row and returns the affected row count.
	Delete(ctx context.Context, id string) (int64, error)
}

type postgresRepository struct {
	db database.DBTX
}

// NewRepository creates a PostgreSQL-backed session repository
func NewRepository(db database.DBTX) Repository {
	return &postgresRepository{db: db}
}

func scanSession(row pgx.Row) (*Session, error) {
	s := &Session{}
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Data,
		&s.IsRevoked,
		&s.CreatedAt,
		&s.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id string) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	s, err := scanSession(r.db.QueryRow(ctx, query, id))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

func (r *postgresRepository) FindByUserID(ctx context.Context, userID int64) ([]Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND NOT is_revoked
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

func (r *postgresRepository) Upsert(ctx context.Context, p UpsertParams) (*Session, error) {
	query := `
		INSERT INTO sessions (id, data, expires_at, is_revoked, user_id)
		VALUES ($1, $2, $3, COALESCE($4::boolean, FALSE), $5::bigint)
		ON CONFLICT (id) DO UPDATE SET
			data       = EXCLUDED.data,
			expires_at = EXCLUDED.expires_at,
			is_revoked = COALESCE($4::boolean, sessions.is_revoked),
			user_id    = COALESCE($5::bigint, sessions.user_id)
		RETURNING ` + sessionColumns

	s, err := scanSession(r.db.QueryRow(ctx, query, p.ID, p.Data, p.ExpiresAt, p.IsRevoked, p.UserID))
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return s, nil
}

func (r *postgresRepository) Revoke(ctx context.Context, id string) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE sessions SET is_revoked = TRUE WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke session: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete session: %w", err)
	}
	return tag.RowsAffected(), nil
}
