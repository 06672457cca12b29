package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blogging/internal/logger"
	"blogging/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = session.CookieOptions{
	Name:    "sid",
	Secrets: []string{"test-secret"},
	MaxAge:  time.Hour,
}

// mockStore is a hand-written fake for session.Store
type mockStore struct {
	getFunc     func(ctx context.Context, sid string) (*session.Payload, error)
	setFunc     func(ctx context.Context, sid string, p *session.Payload) error
	touchFunc   func(ctx context.Context, sid string, p *session.Payload) error
	destroyFunc func(ctx context.Context, sid string) error
}

func (m *mockStore) Get(ctx context.Context, sid string) (*session.Payload, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, sid)
	}
	return nil, nil
}

func (m *mockStore) Set(ctx context.Context, sid string, p *session.Payload) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, sid, p)
	}
	return nil
}

func (m *mockStore) Touch(ctx context.Context, sid string, p *session.Payload) error {
	if m.touchFunc != nil {
		return m.touchFunc(ctx, sid, p)
	}
	return nil
}

func (m *mockStore) Destroy(ctx context.Context, sid string) error {
	if m.destroyFunc != nil {
		return m.destroyFunc(ctx, sid)
	}
	return nil
}

func newRouter(store session.Store, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(session.Sessions(store, testOpts, logger.Discard()))
	r.GET("/", handlers...)
	return r
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testOpts.Name {
			return c
		}
	}
	return nil
}

func TestSessions_UntouchedNewSessionIsNotSaved(t *testing.T) {
	var saved, touched bool
	store := &mockStore{
		setFunc:   func(ctx context.Context, sid string, p *session.Payload) error { saved = true; return nil },
		touchFunc: func(ctx context.Context, sid string, p *session.Payload) error { touched = true; return nil },
	}

	r := newRouter(store, func(c *gin.Context) {
		h, ok := session.FromContext(c)
		require.True(t, ok)
		assert.True(t, h.IsNew())
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, saved)
	assert.False(t, touched)
	assert.Nil(t, sessionCookie(t, w))
}

func TestSessions_ModifiedSessionIsSavedAndCookieIssued(t *testing.T) {
	var savedID string
	var savedPayload *session.Payload
	store := &mockStore{
		setFunc: func(ctx context.Context, sid string, p *session.Payload) error {
			savedID, savedPayload = sid, p
			return nil
		},
	}

	var handleID string
	r := newRouter(store, func(c *gin.Context) {
		h, _ := session.FromContext(c)
		handleID = h.ID
		h.Payload.User = &session.UserRef{ID: 7}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, handleID, savedID)
	require.NotNil(t, savedPayload)
	assert.Equal(t, int64(7), savedPayload.User.ID)

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)

	sid, ok := session.Unsign(cookie.Value, testOpts.Secrets)
	require.True(t, ok)
	assert.Equal(t, handleID, sid)
}

func TestSessions_CommitsOnBodylessResponse(t *testing.T) {
	var saved bool
	store := &mockStore{
		setFunc: func(ctx context.Context, sid string, p *session.Payload) error { saved = true; return nil },
	}

	r := newRouter(store, func(c *gin.Context) {
		h, _ := session.FromContext(c)
		h.Payload.Values = map[string]any{"seen": true}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, saved)
	assert.NotNil(t, sessionCookie(t, w))
}

func TestSessions_ExistingSessionIsLoadedAndTouched(t *testing.T) {
	stored := freshPayload()
	stored.User = &session.UserRef{ID: 7}

	var gotSID string
	var touched, saved bool
	store := &mockStore{
		getFunc: func(ctx context.Context, sid string) (*session.Payload, error) {
			gotSID = sid
			return stored, nil
		},
		touchFunc: func(ctx context.Context, sid string, p *session.Payload) error { touched = true; return nil },
		setFunc:   func(ctx context.Context, sid string, p *session.Payload) error { saved = true; return nil },
	}

	r := newRouter(store, func(c *gin.Context) {
		h, _ := session.FromContext(c)
		assert.False(t, h.IsNew())
		assert.Equal(t, "abc", h.ID)
		assert.Equal(t, int64(7), h.Payload.User.ID)
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: session.Sign("abc", "test-secret")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", gotSID)
	assert.True(t, touched)
	assert.False(t, saved)
	assert.Nil(t, sessionCookie(t, w))
}

func TestSessions_ForgedCookieStartsFreshSession(t *testing.T) {
	var lookedUp bool
	store := &mockStore{
		getFunc: func(ctx context.Context, sid string) (*session.Payload, error) {
			lookedUp = true
			return freshPayload(), nil
		},
	}

	r := newRouter(store, func(c *gin.Context) {
		h, _ := session.FromContext(c)
		assert.True(t, h.IsNew())
		assert.NotEqual(t, "abc", h.ID)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: session.Sign("abc", "other-secret")})
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, lookedUp)
}

func TestSessions_StoreErrorAborts(t *testing.T) {
	store := &mockStore{
		getFunc: func(ctx context.Context, sid string) (*session.Payload, error) {
			return nil, errors.New("db down")
		},
	}

	called := false
	r := newRouter(store, func(c *gin.Context) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: session.Sign("abc", "test-secret")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, called)
}

func TestSessions_DestroyClearsCookie(t *testing.T) {
	var destroyed string
	var saved bool
	store := &mockStore{
		getFunc: func(ctx context.Context, sid string) (*session.Payload, error) {
			return freshPayload(), nil
		},
		destroyFunc: func(ctx context.Context, sid string) error { destroyed = sid; return nil },
		setFunc:     func(ctx context.Context, sid string, p *session.Payload) error { saved = true; return nil },
	}

	r := newRouter(store, func(c *gin.Context) {
		h, _ := session.FromContext(c)
		h.Payload.Values = map[string]any{"x": 1}
		require.NoError(t, h.Destroy(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: session.Sign("abc", "test-secret")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc", destroyed)
	assert.False(t, saved)

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestSessions_ForgetClearsCookieWithoutStoreCalls(t *testing.T) {
	var calls []string
	store := &mockStore{
		getFunc: func(ctx context.Context, sid string) (*session.Payload, error) {
			return freshPayload(), nil
		},
		destroyFunc: func(ctx context.Context, sid string) error { calls = append(calls, "destroy"); return nil },
		setFunc:     func(ctx context.Context, sid string, p *session.Payload) error { calls = append(calls, "set"); return nil },
		touchFunc:   func(ctx context.Context, sid string, p *session.Payload) error { calls = append(calls, "touch"); return nil },
	}

	r := newRouter(store, func(c *gin.Context) {
		h, _ := session.FromContext(c)
		h.Forget()
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: session.Sign("abc", "test-secret")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, calls)

	cookie := sessionCookie(t, w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestSessions_SaveErrorDoesNotBreakResponse(t *testing.T) {
	store := &mockStore{
		setFunc: func(ctx context.Context, sid string, p *session.Payload) error {
			return errors.New("db down")
		},
	}

	r := newRouter(store, func(c *gin.Context) {
		h, _ := session.FromContext(c)
		h.Payload.Values = map[string]any{"x": 1}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, sessionCookie(t, w))
}
