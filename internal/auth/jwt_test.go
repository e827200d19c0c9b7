package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Sign(User{ID: 42, TenantID: "acme", Role: RoleAdmin})
	require.NoError(t, err)

	id, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id.UserID)
	assert.Equal(t, "acme", id.TenantID)
	assert.Equal(t, RoleAdmin, id.Role)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := NewJWT("secret-a").Sign(User{ID: 1, TenantID: "acme", Role: RoleAgent})
	require.NoError(t, err)

	_, err = NewJWT("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	_, err := NewJWT("s").Verify("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22!")
	require.NoError(t, err)

	assert.True(t, ComparePassword(hash, "hunter22!"))
	assert.False(t, ComparePassword(hash, "hunter23!"))
}
