package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := BcryptHasher{}

	t.Run("hash and compare ok", func(t *testing.T) {
		hash, err := hasher.Hash("P@ssw0rd1")
		require.NoError(t, err)
		require.NotEmpty(t, hash)

		assert.NoError(t, hasher.Compare(hash, "P@ssw0rd1"))
	})

	t.Run("compare fails on wrong password", func(t *testing.T) {
		hash, err := hasher.Hash("P@ssw0rd1")
		require.NoError(t, err)

		assert.Error(t, hasher.Compare(hash, "wrong"))
	})

	t.Run("hashes are salted", func(t *testing.T) {
		first, err := hasher.Hash("P@ssw0rd1")
		require.NoError(t, err)
		second, err := hasher.Hash("P@ssw0rd1")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("long passwords work", func(t *testing.T) {
		// sha256 pre-hash keeps input under the bcrypt 72 byte limit
		long := strings.Repeat("x", 200)

		hash, err := hasher.Hash(long)
		require.NoError(t, err)
		assert.NoError(t, hasher.Compare(hash, long))
		assert.Error(t, hasher.Compare(hash, long+"y"))
	})
}
