package auth

import (
	"errors"
	"net/http"

	"blogging/internal/session"
	"blogging/internal/users"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors to an HTTP status and body. Anything
// unclassified is a 500 that echoes the error text.
func statusFor(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, ErrEmailNotFound), errors.Is(err, ErrIncorrectPassword):
		return http.StatusUnauthorized, ErrorResponse{
			Error: "Invalid email or password",
			Code:  "INVALID_CREDENTIALS",
		}
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Session not found",
			Code:  "SESSION_NOT_FOUND",
		}
	case errors.Is(err, users.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "User not found",
			Code:  "USER_NOT_FOUND",
		}
	case errors.Is(err, users.ErrUserAlreadyExists):
		return http.StatusConflict, ErrorResponse{
			Error: "User with this email or username already exists",
			Code:  "USER_EXISTS",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal server error",
			Code:    "INTERNAL",
			Details: err.Error(),
		}
	}
}

// respondError writes the mapped error unless the response already started
func (h *Handler) respondError(c *gin.Context, err error) {
	status, body := statusFor(err)

	attrs := []any{
		"error", err.Error(),
		"status", status,
		"path", c.Request.URL.Path,
		"request_id", c.GetString("request_id"),
	}

	if c.Writer.Written() {
		h.logger.Error("Error after response was written", attrs...)
		return
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", attrs...)
	}

	c.AbortWithStatusJSON(status, body)
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request body",
		Code:    "INVALID_REQUEST",
		Details: err.Error(),
	})
}
