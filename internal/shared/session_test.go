package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "taskdeck_session", "test-secret", time.Hour, false), mr
}

func TestSessionRoundTrip(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	require.True(t, sess.isNew)

	sess.SetUser("u1")
	sess.Set("theme", "dark")

	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "taskdeck_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := manager.Load(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, "u1", loaded.User())
	assert.Equal(t, "dark", loaded.Get("theme"))
	assert.False(t, loaded.isNew)
}

func TestSessionExpiry(t *testing.T) {
	manager, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("u1")
	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))

	mr.FastForward(2 * time.Hour)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(res.Result().Cookies()[0])
	loaded, err := manager.Load(ctx, next)
	require.NoError(t, err)
	assert.Empty(t, loaded.User())
	assert.True(t, loaded.isNew)
}

func TestSessionDestroy(t *testing.T) {
	manager, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("u1")
	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	manager.Destroy(sess)
	res = httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))

	assert.False(t, mr.Exists("session:"+sess.ID))
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestPrincipalFromContext(t *testing.T) {
	assert.Empty(t, PrincipalFromContext(context.Background()))

	sess := &Session{ID: "s1"}
	ctx := ContextWithSession(context.Background(), sess)
	assert.Empty(t, PrincipalFromContext(ctx))

	sess.SetUser("u1")
	assert.Equal(t, "u1", PrincipalFromContext(ctx))
}
