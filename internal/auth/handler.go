package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"blogging/internal/session"
	"blogging/internal/users"

	"github.com/gin-gonic/gin"
)

// Accounts is the account service used by the user endpoints
type Accounts interface {
	Create(ctx context.Context, req users.CreateUserRequest) (*users.User, error)
	FindOne(ctx context.Context, id int64) (*users.User, error)
	Update(ctx context.Context, id int64, req users.UpdateUserRequest) (*users.User, error)
	Remove(ctx context.Context, id int64) error
}

// Handler handles session and account HTTP requests
type Handler struct {
	sessions session.Service
	accounts Accounts
	logger   *slog.Logger
}

// NewHandler creates a new authentication handler
func NewHandler(sessions session.Service, accounts Accounts, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		accounts: accounts,
		logger:   logger,
	}
}

var errNoSession = errors.New("no session on request")

// CreateSession handles POST /sessions
// @Summary Log in
// @Description Verifies credentials and binds the account to the current session
// @Accept json
// @Produce json
// @Param request body session.Credentials true "Email and password"
// @Success 201 {object} createdSessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req session.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	sess, ok := session.FromContext(c)
	if !ok {
		h.respondError(c, errNoSession)
		return
	}

	created, err := h.sessions.Create(c.Request.Context(), sess.ID, req, sess.Payload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("User logged in",
		"user_id", sess.Payload.User.ID,
		"request_id", c.GetString("request_id"),
	)

	c.JSON(http.StatusCreated, createdSessionResponse{CreatedSession: created})
}

// ListSessions handles GET /sessions
func (h *Handler) ListSessions(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		h.respondError(c, session.ErrSessionNotFound)
		return
	}

	all, err := h.sessions.FindAll(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if len(all) == 0 {
		h.respondError(c, session.ErrSessionNotFound)
		return
	}

	c.JSON(http.StatusOK, sessionsResponse{Sessions: all})
}

// GetSession handles GET /sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	found, err := h.ownedSession(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Session: found})
}

// UpdateSession handles PUT /sessions/:id
// @Summary Update a session
// @Description Merges data into the stored payload and updates revocation or owner.
// @Description userId defaults to the current user.
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body session.UpdateSessionRequest true "Update fields"
// @Success 200 {object} updatedSessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [put]
func (h *Handler) UpdateSession(c *gin.Context) {
	var req session.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if _, err := h.ownedSession(c); err != nil {
		h.respondError(c, err)
		return
	}

	// A session can only stay with the account that logged it in.
	user, _ := CurrentUser(c)
	if req.UserID != nil && *req.UserID != user.ID {
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Error: "Sessions cannot be moved to another account",
			Code:  "FORBIDDEN",
		})
		return
	}
	changes := session.Changes{
		IsRevoked: req.IsRevoked,
		UserID:    &user.ID,
		Data:      req.Data,
	}

	// The current session is committed again at the end of the request,
	// so its in-memory payload must carry the merge.
	var base *session.Payload
	id := c.Param("id")
	if sess, ok := session.FromContext(c); ok && sess.ID == id {
		base = sess.Payload
	}

	updated, err := h.sessions.Patch(c.Request.Context(), id, base, changes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updatedSessionResponse{UpdatedSession: updated})
}

// DeleteSession handles DELETE /sessions/:id
// Revokes the session; the row is kept.
func (h *Handler) DeleteSession(c *gin.Context) {
	if _, err := h.ownedSession(c); err != nil {
		h.respondError(c, err)
		return
	}

	if _, err := h.sessions.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Logout handles POST /sessions/logout
func (h *Handler) Logout(c *gin.Context) {
	sess, ok := session.FromContext(c)
	if !ok {
		h.respondError(c, errNoSession)
		return
	}

	if err := sess.Destroy(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ownedSession loads the :id session and hides sessions of other accounts
func (h *Handler) ownedSession(c *gin.Context) (*session.Session, error) {
	user, ok := CurrentUser(c)
	if !ok {
		return nil, session.ErrSessionNotFound
	}

	found, err := h.sessions.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if found == nil || found.UserID == nil || *found.UserID != user.ID {
		return nil, session.ErrSessionNotFound
	}
	return found, nil
}

// CreateUser handles POST /users
// @Summary Register an account
// @Accept json
// @Produce json
// @Param request body users.CreateUserRequest true "Account fields"
// @Success 201 {object} createdUserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var req users.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	created, err := h.accounts.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdUserResponse{CreatedUser: created})
}

// GetUser handles GET /users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := h.userIDParam(c)
	if !ok {
		return
	}

	user, err := h.accounts.FindOne(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponse{User: user})
}

// UpdateUser handles PUT /users/:id
// Only the account itself may update it.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := h.selfParam(c)
	if !ok {
		return
	}

	var req users.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	updated, err := h.accounts.Update(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updatedUserResponse{UpdatedUser: updated})
}

// DeleteUser handles DELETE /users/:id
// Removing the account cascades to its session rows; the current session is
// then dropped so the cookie is cleared. A failed removal keeps the login.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := h.selfParam(c)
	if !ok {
		return
	}

	if err := h.accounts.Remove(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	if sess, ok := session.FromContext(c); ok {
		sess.Forget()
	}

	h.logger.Info("User deleted", "user_id", id, "request_id", c.GetString("request_id"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid user ID",
			Code:  "INVALID_USER_ID",
		})
		return 0, false
	}
	return id, true
}

func (h *Handler) selfParam(c *gin.Context) (int64, bool) {
	id, ok := h.userIDParam(c)
	if !ok {
		return 0, false
	}

	user, ok := CurrentUser(c)
	if !ok || user.ID != id {
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Error: "You can only modify your own account",
			Code:  "FORBIDDEN",
		})
		return 0, false
	}
	return id, true
}
