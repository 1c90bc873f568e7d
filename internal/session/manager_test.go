package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/wingwifi/internal/clock"
)

func newManager(mock *clock.MockClock) (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	return NewManager(store, Options{Timeout: time.Hour, CookieName: "sid", Clock: mock}), store
}

func requestWithCookie(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin/", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	return req
}

func TestManager_NewSession(t *testing.T) {
	m, _ := newManager(clock.NewMockClock(time.Now()))
	rec := httptest.NewRecorder()

	sess, err := m.Begin(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.NotEmpty(t, sess.CSRFToken)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, sess.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestManager_RoundTrip(t *testing.T) {
	mock := clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	m, _ := newManager(mock)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	sess, _ := m.Begin(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	sess.Set(KeyAction, "list_clients")
	require.NoError(t, m.Commit(ctx, sess))

	mock.Advance(30 * time.Minute)
	again, err := m.Begin(httptest.NewRecorder(), requestWithCookie(rec))
	require.NoError(t, err)
	assert.Equal(t, sess.ID, again.ID)
	assert.Equal(t, "list_clients", again.Action)
}

func TestManager_Timeout(t *testing.T) {
	mock := clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	m, _ := newManager(mock)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	sess, _ := m.Begin(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	sess.SelectSite("abc", "default")
	sess.Set(KeyAction, "list_clients")
	require.NoError(t, m.Commit(ctx, sess))

	mock.Advance(time.Hour + time.Minute)
	fresh, err := m.Begin(httptest.NewRecorder(), requestWithCookie(rec))
	require.NoError(t, err)
	assert.Empty(t, fresh.Action)
	assert.Empty(t, fresh.SiteID)
}

func TestManager_UnknownCookie(t *testing.T) {
	m, _ := newManager(clock.NewMockClock(time.Now()))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})

	sess, err := m.Begin(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "forged", sess.ID)
}

func TestManager_Reset(t *testing.T) {
	m, store := newManager(clock.NewMockClock(time.Now()))
	ctx := context.Background()

	sess, _ := m.Begin(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	sess.Set(KeyTheme, "darkly")
	require.NoError(t, m.Commit(ctx, sess))

	rec := httptest.NewRecorder()
	fresh, err := m.Reset(ctx, rec, sess)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, fresh.ID)
	assert.Empty(t, fresh.Theme)
	n, err := store.Sweep(ctx, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, fresh.ID, rec.Result().Cookies()[0].Value)
}
