// Package auth verifies credentials, resolves the session user and guards
// routes that need one.
package auth

import (
	"context"
	"errors"
	"fmt"

	"blogging/internal/password"
	"blogging/internal/users"
)

var (
	// ErrEmailNotFound is returned when no account has the given email
	ErrEmailNotFound = errors.New("email not found")
	// ErrIncorrectPassword is returned when the password does not match
	ErrIncorrectPassword = errors.New("incorrect password")
)

// AccountLookup finds an account by email with its password hash included
type AccountLookup interface {
	FindByEmailWithHash(ctx context.Context, email string) (*users.User, error)
}

// Authenticator checks email and password credentials
type Authenticator struct {
	accounts AccountLookup
}

// NewAuthenticator creates a credential verifier over accounts
func NewAuthenticator(accounts AccountLookup) *Authenticator {
	return &Authenticator{accounts: accounts}
}

// Authenticate returns the account matching email and password, with the
// password hash cleared.
func (a *Authenticator) Authenticate(ctx context.Context, email, plaintext string) (*users.User, error) {
	user, err := a.accounts.FindByEmailWithHash(ctx, email)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEmailNotFound, email)
	}
	if err != nil {
		return nil, err
	}

	if err := password.Compare(user.PasswordHash, plaintext); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, ErrIncorrectPassword
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}
