package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
	assert.False(t, CheckPassword("not a bcrypt hash", "anything"))
}

func TestTokenRoundTrip(t *testing.T) {
	tm, err := NewTokenManager(TokenConfig{TTL: time.Hour})
	require.NoError(t, err)

	token, expiresAt, err := tm.Generate(42, "alice", "sess-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "autocare-api", claims.Issuer)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm, err := NewTokenManager(TokenConfig{})
	require.NoError(t, err)

	_, err = tm.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	tm1, err := NewTokenManager(TokenConfig{})
	require.NoError(t, err)
	tm2, err := NewTokenManager(TokenConfig{})
	require.NoError(t, err)

	token, _, err := tm1.Generate(1, "bob", "sess-2")
	require.NoError(t, err)

	_, err = tm2.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(time.Hour)

	sess, err := store.Create(ctx, 7, "carol")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "carol", got.Username)

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(-time.Second)

	sess, err := store.Create(ctx, 1, "dave")
	require.NoError(t, err)

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
