package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const contextKey = "session"

// Handle is the request-scoped view of the current session
type Handle struct {
	ID      string
	Payload *Payload

	isNew     bool
	hadCookie bool
	destroyed bool
	original  string
	store     Store
}

// IsNew reports whether the session was created by this request
func (h *Handle) IsNew() bool {
	return h.isNew
}

// Destroy revokes the session and clears the cookie on the response
func (h *Handle) Destroy(ctx context.Context) error {
	if h.destroyed {
		return nil
	}

	// A fresh session only has a row if a handler already saved it.
	if err := h.store.Destroy(ctx, h.ID); err != nil && !(h.isNew && errors.Is(err, ErrSessionNotFound)) {
		return err
	}

	h.destroyed = true
	return nil
}

// Forget drops the session from this response without touching the store.
// It is for sessions whose row is already gone.
func (h *Handle) Forget() {
	h.destroyed = true
}

// FromContext returns the session attached by Sessions
func FromContext(c *gin.Context) (*Handle, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	h, ok := v.(*Handle)
	return h, ok && h != nil
}

// Sessions loads the cookie session before the handlers run and commits it
// once, right before the response header goes out.
func Sessions(store Store, opts CookieOptions, logger *slog.Logger) gin.HandlerFunc {
	opts = opts.normalize()
	if len(opts.Secrets) == 0 {
		panic("session: at least one secret is required")
	}

	return func(c *gin.Context) {
		h, err := load(c.Request, store, opts)
		if err != nil {
			logger.Error("Failed to load session",
				"error", err.Error(),
				"request_id", c.GetString("request_id"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to load session",
			})
			return
		}
		c.Set(contextKey, h)

		var once sync.Once
		commit := func() {
			once.Do(func() {
				if err := h.commit(c.Request.Context(), c.Writer, opts); err != nil {
					logger.Error("Failed to save session",
						"error", err.Error(),
						"request_id", c.GetString("request_id"),
					)
				}
			})
		}

		c.Writer = &sessionWriter{ResponseWriter: c.Writer, commit: commit}

		c.Next()

		commit()
	}
}

func load(r *http.Request, store Store, opts CookieOptions) (*Handle, error) {
	hadCookie := false

	if cookie, err := r.Cookie(opts.Name); err == nil {
		hadCookie = true
		if sid, ok := Unsign(cookie.Value, opts.Secrets); ok {
			payload, err := store.Get(r.Context(), sid)
			if err != nil {
				return nil, err
			}
			if payload != nil {
				return newHandle(sid, payload, false, hadCookie, store), nil
			}
		}
	}

	sid, err := GenerateID()
	if err != nil {
		return nil, err
	}
	return newHandle(sid, NewPayload(opts, time.Now()), true, hadCookie, store), nil
}

func newHandle(sid string, payload *Payload, isNew, hadCookie bool, store Store) *Handle {
	return &Handle{
		ID:        sid,
		Payload:   payload,
		isNew:     isNew,
		hadCookie: hadCookie,
		original:  payload.fingerprint(),
		store:     store,
	}
}

// commit rolls the expiry forward and persists the session. Unmodified new
// sessions are never saved; unmodified existing ones are touched.
func (h *Handle) commit(ctx context.Context, w http.ResponseWriter, opts CookieOptions) error {
	if h.destroyed {
		if h.hadCookie {
			clearCookie(w, opts)
		}
		return nil
	}

	h.Payload.Cookie.Touch(time.Now())
	modified := h.Payload.fingerprint() != h.original

	switch {
	case modified:
		if err := h.store.Set(ctx, h.ID, h.Payload); err != nil {
			return err
		}
		if h.Payload.Cookie.Expires != nil {
			setCookie(w, h.ID, *h.Payload.Cookie.Expires, opts)
		}
		return nil
	case h.isNew:
		return nil
	default:
		return h.store.Touch(ctx, h.ID, h.Payload)
	}
}

// sessionWriter runs the commit before anything reaches the client
type sessionWriter struct {
	gin.ResponseWriter
	commit func()
}

func (w *sessionWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}
