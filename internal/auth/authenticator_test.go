package auth

import (
	"context"
	"errors"
	"testing"

	"blogging/internal/password"
	"blogging/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAccountLookup is a hand-written fake for AccountLookup
type mockAccountLookup struct {
	findByEmailFunc func(ctx context.Context, email string) (*users.User, error)
}

func (m *mockAccountLookup) FindByEmailWithHash(ctx context.Context, email string) (*users.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, users.ErrUserNotFound
}

func lookupWith(t *testing.T, email, plaintext string) *mockAccountLookup {
	t.Helper()
	hash, err := password.Hash(plaintext)
	require.NoError(t, err)

	return &mockAccountLookup{
		findByEmailFunc: func(ctx context.Context, e string) (*users.User, error) {
			if e != email {
				return nil, users.ErrUserNotFound
			}
			return &users.User{ID: 1, Email: email, Username: "alice", PasswordHash: hash}, nil
		},
	}
}

func TestAuthenticate_Success(t *testing.T) {
	a := NewAuthenticator(lookupWith(t, "a@x.io", "secret"))

	user, err := a.Authenticate(context.Background(), "a@x.io", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	a := NewAuthenticator(lookupWith(t, "a@x.io", "secret"))

	_, err := a.Authenticate(context.Background(), "b@x.io", "secret")
	assert.ErrorIs(t, err, ErrEmailNotFound)
	assert.NotErrorIs(t, err, ErrIncorrectPassword)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	a := NewAuthenticator(lookupWith(t, "a@x.io", "secret"))

	for _, pw := range []string{"wrong", ""} {
		_, err := a.Authenticate(context.Background(), "a@x.io", pw)
		assert.ErrorIs(t, err, ErrIncorrectPassword)
	}
}

func TestAuthenticate_LookupFailure(t *testing.T) {
	boom := errors.New("db down")
	a := NewAuthenticator(&mockAccountLookup{
		findByEmailFunc: func(ctx context.Context, email string) (*users.User, error) {
			return nil, boom
		},
	})

	_, err := a.Authenticate(context.Background(), "a@x.io", "secret")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrEmailNotFound)
}

func TestAuthenticate_MalformedHash(t *testing.T) {
	a := NewAuthenticator(&mockAccountLookup{
		findByEmailFunc: func(ctx context.Context, email string) (*users.User, error) {
			return &users.User{ID: 1, PasswordHash: "plaintext"}, nil
		},
	})

	_, err := a.Authenticate(context.Background(), "a@x.io", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIncorrectPassword)
}
