package pwhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndValidate(t *testing.T) {
	ph, err := New(16, 10000)
	require.NoError(t, err)

	hash, err := ph.HashPassword("s3cret")
	require.NoError(t, err)

	assert.NoError(t, ph.Validate("s3cret", hash))
	assert.Error(t, ph.Validate("wrong", hash))

	// same password hashes differently thanks to the random salt
	hash2, err := ph.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
	assert.NoError(t, ph.Validate("s3cret", hash2))
}

func TestNewRejectsWeakParams(t *testing.T) {
	_, err := New(4, 10000)
	assert.Error(t, err)

	_, err = New(16, 10)
	assert.Error(t, err)
}

func TestValidateMalformedHash(t *testing.T) {
	ph, err := New(16, 10000)
	require.NoError(t, err)

	assert.Error(t, ph.Validate("pw", "not-a-hash"))
	assert.Error(t, ph.Validate("pw", "abc$def$ghi"))
}
