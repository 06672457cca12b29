package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"blogging/internal/session"
	"blogging/internal/users"

	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// AccountFinder loads an account by id
type AccountFinder interface {
	FindOne(ctx context.Context, id int64) (*users.User, error)
}

// ResolveUser attaches the account bound to the current session, if any.
// It never rejects a request; lookup failures leave it unauthenticated.
func ResolveUser(accounts AccountFinder, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := session.FromContext(c)
		if !ok || h.Payload == nil || h.Payload.User == nil {
			c.Next()
			return
		}

		user, err := accounts.FindOne(c.Request.Context(), h.Payload.User.ID)
		switch {
		case err == nil && user != nil:
			c.Set(userContextKey, user)
		case errors.Is(err, users.ErrUserNotFound):
		case err != nil:
			logger.Warn("Failed to resolve session user",
				"user_id", h.Payload.User.ID,
				"error", err.Error(),
				"request_id", c.GetString("request_id"),
			)
		}

		c.Next()
	}
}

// CurrentUser returns the account resolved for this request
func CurrentUser(c *gin.Context) (*users.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*users.User)
	return u, ok && u != nil
}

// Gate permits a request only when a user was resolved onto it
type Gate struct{}

// CanActivate reports whether the request carries a resolved user
func (Gate) CanActivate(c *gin.Context) bool {
	_, ok := CurrentUser(c)
	return ok
}

// RequireUser aborts with 403 unless the gate lets the request through
func RequireUser() gin.HandlerFunc {
	var gate Gate
	return func(c *gin.Context) {
		if !gate.CanActivate(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error: "Forbidden resource",
				Code:  "FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}
