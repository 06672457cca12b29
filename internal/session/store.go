package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store is the persistence contract of the cookie-session transport
type Store interface {
	// Get returns nil, nil for unknown or expired sessions. Revoked
	// sessions are still returned.
	Get(ctx context.Context, sid string) (*Payload, error)
	Set(ctx context.Context, sid string, payload *Payload) error
	Touch(ctx context.Context, sid string, payload *Payload) error
	// Destroy revokes the session.
	Destroy(ctx context.Context, sid string) error
}

type serviceStore struct {
	sessions Service
	now      func() time.Time
}

// NewStore creates a Store that persists through the lifecycle service
func NewStore(sessions Service) Store {
	return &serviceStore{
		sessions: sessions,
		now:      time.Now,
	}
}

func (s *serviceStore) Get(ctx context.Context, sid string) (*Payload, error) {
	row, err := s.sessions.FindOne(ctx, sid)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	if !row.ExpiresAt.After(s.now()) {
		if err := s.sessions.Purge(ctx, sid); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to purge expired session: %w", err)
		}
		return nil, nil
	}

	return Decode(row.Data)
}

// Set persists the payload. The owning account comes from payload.User;
// without one the stored binding is left as is.
func (s *serviceStore) Set(ctx context.Context, sid string, payload *Payload) error {
	var changes Changes
	if payload != nil && payload.User != nil {
		id := payload.User.ID
		changes.UserID = &id
	}

	_, err := s.sessions.Update(ctx, sid, payload, changes)
	return err
}

func (s *serviceStore) Touch(ctx context.Context, sid string, payload *Payload) error {
	return s.Set(ctx, sid, payload)
}

func (s *serviceStore) Destroy(ctx context.Context, sid string) error {
	_, err := s.sessions.Remove(ctx, sid)
	return err
}
