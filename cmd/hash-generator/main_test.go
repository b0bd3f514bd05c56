package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	t.Run("produces a verifiable hash", func(t *testing.T) {
		t.Parallel()

		hash, err := hashPassword("a-long-enough-password", bcrypt.MinCost)
		require.NoError(t, err)

		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("a-long-enough-password")))
		assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("some-other-password")))
	})

	t.Run("rejects short passwords like registration does", func(t *testing.T) {
		t.Parallel()

		_, err := hashPassword("tooshort", bcrypt.MinCost)
		assert.Error(t, err)
	})
}
