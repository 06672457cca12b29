package server

import (
	"net/http"
	"time"

	"blogging/internal/auth"
	"blogging/internal/cache"
	"blogging/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(s.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type", "Origin", requestIDHeader},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthHandler)

	api := r.Group("/")
	api.Use(s.sessionMiddleware()...)

	h := s.handler
	guard := auth.RequireUser()

	api.POST("/users", h.CreateUser)
	userRoutes := api.Group("/users", guard)
	{
		userRoutes.GET("/:id", h.GetUser)
		userRoutes.PUT("/:id", h.UpdateUser)
		userRoutes.DELETE("/:id", h.DeleteUser)
	}

	api.POST("/sessions", h.CreateSession)
	sessionRoutes := api.Group("/sessions", guard)
	{
		sessionRoutes.GET("", h.ListSessions)
		sessionRoutes.POST("/logout", h.Logout)
		sessionRoutes.GET("/:id", h.GetSession)
		sessionRoutes.PUT("/:id", h.UpdateSession)
		sessionRoutes.DELETE("/:id", h.DeleteSession)
	}

	return r
}

// sessionMiddleware loads the cookie session and resolves its user
func (s *Server) sessionMiddleware() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		session.Sessions(s.store, s.cookieOptions(), s.logger),
		auth.ResolveUser(s.accounts, s.logger),
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx := c.Request.Context()
	response := make(map[string]any)

	status := http.StatusOK
	if s.db != nil {
		dbHealth := s.db.Health(ctx)
		response["database"] = dbHealth
		if dbHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
	}
	response["cache"] = cache.Health(ctx, s.cache)

	c.JSON(status, response)
}
