package session

import (
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when no session row has the given id
	ErrSessionNotFound = errors.New("session not found")
	// ErrMissingExpiry is returned when a payload carries no cookie expiry.
	// The transport always sets one, so this signals a programming error.
	ErrMissingExpiry = errors.New("session payload has no cookie expiry")
	// ErrNilPayload is returned when an update is attempted without a payload
	ErrNilPayload = errors.New("session payload is required")
)

// Session is the persisted record of one cookie session
type Session struct {
	ID        string    `json:"id"`
	Data      string    `json:"data"`
	IsRevoked bool      `json:"isRevoked"`
	UserID    *int64    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Credentials is the login request body
type Credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Changes are the partial updates applied alongside a payload write.
// Nil fields leave the stored column untouched.
type Changes struct {
	IsRevoked *bool
	UserID    *int64
	// Data is shallow-merged into the payload before it is serialized.
	Data map[string]any
}

// UpdateSessionRequest represents the request body for PUT /sessions/:id
type UpdateSessionRequest struct {
	Data      map[string]any `json:"data,omitempty"`
	IsRevoked *bool          `json:"isRevoked,omitempty"`
	UserID    *int64         `json:"userId,omitempty"`
}

// UpsertParams is the column set written by Repository.Upsert
type UpsertParams struct {
	ID        string
	Data      string
	ExpiresAt time.Time
	IsRevoked *bool
	UserID    *int64
}
