package security

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptService_HashAndCompare(t *testing.T) {
	s := NewBcryptService(bcrypt.MinCost)

	hash, err := s.Hash("s3cret!")
	require.NoError(t, err)

	require.NoError(t, s.Compare(hash, "s3cret!"))
	require.ErrorIs(t, s.Compare(hash, "wrong"), bcrypt.ErrMismatchedHashAndPassword)
}

func TestBcryptService_RejectsEmpty(t *testing.T) {
	s := NewBcryptService(bcrypt.MinCost)

	_, err := s.Hash("")
	require.ErrorIs(t, err, errEmptyPassword)
	require.Error(t, s.Compare("", "anything"))
}

func TestNewBcryptService_ClampsCost(t *testing.T) {
	require.Equal(t, bcrypt.DefaultCost, NewBcryptService(0).cost)
	require.Equal(t, bcrypt.MaxCost, NewBcryptService(bcrypt.MaxCost+5).cost)
	require.Equal(t, 6, NewBcryptService(6).cost)
}

func TestBcryptService_Outdated(t *testing.T) {
	low := NewBcryptService(bcrypt.MinCost)
	hash, err := low.Hash("s3cret!")
	require.NoError(t, err)

	require.False(t, low.Outdated(hash))
	require.True(t, NewBcryptService(bcrypt.MinCost+1).Outdated(hash))
	require.True(t, low.Outdated("not-a-hash"))
}
