package auth

import (
	"blogging/internal/session"
	"blogging/internal/users"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type createdSessionResponse struct {
	CreatedSession *session.Session `json:"createdSession"`
}

type sessionsResponse struct {
	Sessions []session.Session `json:"sessions"`
}

type sessionResponse struct {
	Session *session.Session `json:"session"`
}

type updatedSessionResponse struct {
	UpdatedSession *session.Session `json:"updatedSession"`
}

type createdUserResponse struct {
	CreatedUser *users.User `json:"createdUser"`
}

type userResponse struct {
	User *users.User `json:"user"`
}

type updatedUserResponse struct {
	UpdatedUser *users.User `json:"updatedUser"`
}
