// Package userstest provides an in-memory account repository for tests.
package userstest

import (
	"context"
	"sync"
	"time"

	"blogging/internal/users"
)

// MemoryRepository implements users.Repository on a map
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]users.User

	// OnDelete, when set, runs after an account is removed. Tests use it to
	// mirror the session foreign key cascade.
	OnDelete func(id int64)
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[int64]users.User)}
}

func (r *MemoryRepository) Create(_ context.Context, u *users.User) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts(0, u.Email, u.Username) {
		return nil, users.ErrUserAlreadyExists
	}

	r.nextID++
	row := *u
	row.ID = r.nextID
	row.CreatedAt = time.Now().UTC()
	r.rows[row.ID] = row

	row.PasswordHash = ""
	return &row, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	row.PasswordHash = ""
	return &row, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.rows {
		if row.Email == email {
			return &row, nil
		}
	}
	return nil, users.ErrUserNotFound
}

func (r *MemoryRepository) Update(_ context.Context, id int64, changes users.Changes) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}

	email, username := row.Email, row.Username
	if changes.Email != nil {
		email = *changes.Email
	}
	if changes.Username != nil {
		username = *changes.Username
	}
	if r.conflicts(id, email, username) {
		return nil, users.ErrUserAlreadyExists
	}

	row.Email, row.Username = email, username
	if changes.PasswordHash != nil {
		row.PasswordHash = *changes.PasswordHash
	}
	if changes.FirstName != nil {
		row.FirstName = changes.FirstName
	}
	if changes.LastName != nil {
		row.LastName = changes.LastName
	}
	r.rows[id] = row

	row.PasswordHash = ""
	return &row, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	if _, ok := r.rows[id]; !ok {
		r.mu.Unlock()
		return users.ErrUserNotFound
	}
	delete(r.rows, id)
	r.mu.Unlock()

	if r.OnDelete != nil {
		r.OnDelete(id)
	}
	return nil
}

func (r *MemoryRepository) conflicts(self int64, email, username string) bool {
	for id, row := range r.rows {
		if id != self && (row.Email == email || row.Username == username) {
			return true
		}
	}
	return false
}
