package session

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"flashplan/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	sess := &models.Session{Token: "abc", UserID: "u1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, store.Create(ctx, sess))

	ttl := mr.TTL("session:abc")
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "ttl %s", ttl)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "abc"))
}

func TestRedisStore_KeyExpiresWithSession(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	now := time.Now().UTC()
	require.NoError(t, store.Create(ctx, &models.Session{Token: "t", UserID: "u1", ExpiresAt: now.Add(time.Minute), CreatedAt: now}))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "t")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStore_RejectsExpiredSession(t *testing.T) {
	store, mr := newRedisStore(t)

	past := time.Now().Add(-time.Minute)
	err := store.Create(context.Background(), &models.Session{Token: "old", UserID: "u1", ExpiresAt: past, CreatedAt: past})
	assert.Error(t, err)
	assert.False(t, mr.Exists("session:old"))
}

func TestRedisStore_Failures(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, mr.Set("session:garbled", "not json"))
	_, err := store.Get(ctx, "garbled")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	mr.SetError("LOADING")
	_, err = store.Get(ctx, "any")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestManager_OverRedisStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	m := NewManager(store, time.Hour, false)

	rec := httptest.NewRecorder()
	token, err := m.Create(ctx, rec, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:"+token))

	userID, ok, err := m.Resolve(ctx, requestWithCookie(token))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)

	require.NoError(t, m.Destroy(ctx, httptest.NewRecorder(), requestWithCookie(token)))
	assert.False(t, mr.Exists("session:"+token))

	_, ok, err = m.Resolve(ctx, requestWithCookie(token))
	require.NoError(t, err)
	assert.False(t, ok)

	mr.SetError("LOADING")
	_, ok, err = m.Resolve(ctx, requestWithCookie(token))
	assert.Error(t, err)
	assert.False(t, ok)
}
