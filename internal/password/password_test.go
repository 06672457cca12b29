package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.NoError(t, Compare(hash, "secret"))
	assert.ErrorIs(t, Compare(hash, "wrong"), ErrMismatch)
	assert.ErrorIs(t, Compare(hash, ""), ErrMismatch)
}

func TestHash_Salted(t *testing.T) {
	a, err := Hash("secret")
	require.NoError(t, err)
	b, err := Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCompare_MalformedHash(t *testing.T) {
	err := Compare("not-a-bcrypt-hash", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}

func TestHash_TooLong(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	_, err := Hash(string(long))
	assert.Error(t, err)
}
