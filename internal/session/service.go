package session

import (
	"context"
	"encoding/json"
	"fmt"

	"blogging/internal/users"
)

// Verifier checks login credentials against the account store
type Verifier interface {
	Authenticate(ctx context.Context, email, password string) (*users.User, error)
}

// Service drives the session lifecycle: anonymous, authenticated, revoked.
type Service interface {
	Create(ctx context.Context, sid string, creds Credentials, payload *Payload) (*Session, error)
	FindAll(ctx context.Context, userID int64) ([]Session, error)
	FindOne(ctx context.Context, sid string) (*Session, error)
	Update(ctx context.Context, sid string, payload *Payload, changes Changes) (*Session, error)
	Patch(ctx context.Context, sid string, base *Payload, changes Changes) (*Session, error)
	Remove(ctx context.Context, sid string) (string, error)
	Purge(ctx context.Context, sid string) error
}

type service struct {
	repo     Repository
	verifier Verifier
}

// NewService creates a session lifecycle service
func NewService(repo Repository, verifier Verifier) Service {
	return &service{
		repo:     repo,
		verifier: verifier,
	}
}

// Create authenticates the credentials and binds the session to the account.
// Verifier errors are returned unchanged.
func (s *service) Create(ctx context.Context, sid string, creds Credentials, payload *Payload) (*Session, error) {
	if payload == nil {
		return nil, ErrNilPayload
	}

	user, err := s.verifier.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}

	payload.User = &UserRef{ID: user.ID}
	return s.Update(ctx, sid, payload, Changes{UserID: &user.ID})
}

// FindAll lists the account's sessions that have not been revoked
func (s *service) FindAll(ctx context.Context, userID int64) ([]Session, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// FindOne returns nil, nil when the session does not exist
func (s *service) FindOne(ctx context.Context, sid string) (*Session, error) {
	return s.repo.FindByID(ctx, sid)
}

// Update merges changes.Data into payload, serializes it and upserts the row.
// The row expiry is taken from the payload cookie.
func (s *service) Update(ctx context.Context, sid string, payload *Payload, changes Changes) (*Session, error) {
	if payload == nil {
		return nil, ErrNilPayload
	}

	if err := payload.Merge(changes.Data); err != nil {
		return nil, fmt.Errorf("failed to merge session data: %w", err)
	}

	if payload.Cookie.Expires == nil {
		return nil, ErrMissingExpiry
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.repo.Upsert(ctx, UpsertParams{
		ID:        sid,
		Data:      string(data),
		ExpiresAt: *payload.Cookie.Expires,
		IsRevoked: changes.IsRevoked,
		UserID:    changes.UserID,
	})
}

// Patch updates an existing session only. With a nil base the stored
// payload is decoded and used.
func (s *service) Patch(ctx context.Context, sid string, base *Payload, changes Changes) (*Session, error) {
	existing, err := s.repo.FindByID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrSessionNotFound
	}

	if base == nil {
		if base, err = Decode(existing.Data); err != nil {
			return nil, err
		}
	}

	return s.Update(ctx, sid, base, changes)
}

// Remove revokes the session. The row is kept.
func (s *service) Remove(ctx context.Context, sid string) (string, error) {
	n, err := s.repo.Revoke(ctx, sid)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrSessionNotFound
	}
	return sid, nil
}

// Purge hard-deletes the session row
func (s *service) Purge(ctx context.Context, sid string) error {
	n, err := s.repo.Delete(ctx, sid)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
