// Package sessiontest provides an in-memory session repository for tests.
package sessiontest

import (
	"context"
	"sort"
	"sync"
	"time"

	"blogging/internal/session"
)

// MemoryRepository implements session.Repository on a map with the same
// upsert semantics as the PostgreSQL repository.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]session.Session
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]session.Session)}
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *MemoryRepository) FindByUserID(_ context.Context, userID int64) ([]session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []session.Session{}
	for _, row := range r.rows {
		if row.UserID != nil && *row.UserID == userID && !row.IsRevoked {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, p session.UpsertParams) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[p.ID]
	if !ok {
		row = session.Session{ID: p.ID, CreatedAt: time.Now().UTC()}
	}

	row.Data = p.Data
	row.ExpiresAt = p.ExpiresAt
	if p.IsRevoked != nil {
		row.IsRevoked = *p.IsRevoked
	}
	if p.UserID != nil {
		id := *p.UserID
		row.UserID = &id
	}

	r.rows[p.ID] = row
	return &row, nil
}

func (r *MemoryRepository) Revoke(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return 0, nil
	}
	row.IsRevoked = true
	r.rows[id] = row
	return 1, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

// DeleteByUser drops every row owned by the account, like the foreign key
// cascade does in PostgreSQL.
func (r *MemoryRepository) DeleteByUser(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, row := range r.rows {
		if row.UserID != nil && *row.UserID == userID {
			delete(r.rows, id)
		}
	}
}

// Len returns the number of stored rows
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
