package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("password")
	require.NoError(t, err)
	require.NotEqual(t, "password", hashed)

	ok, err := CheckPassword(hashed, "password")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = CheckPassword(hashed, "wrong_password")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("password")
	require.NoError(t, err)
	second, err := HashPassword("password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	for _, bad := range []string{"", "not-a-bcrypt-hash"} {
		ok, err := CheckPassword(bad, "password")
		require.False(t, ok)
		require.ErrorIs(t, err, ErrMalformedHash)
	}
}
