package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"blogging/internal/auth"
	"blogging/internal/config"
	"blogging/internal/database"
	"blogging/internal/session"
	"blogging/internal/users"

	"github.com/redis/go-redis/v9"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	db    database.Service
	cache *redis.Client

	accounts *users.Service
	sessions session.Service
	store    session.Store
	handler  *auth.Handler
}

// Deps are the storage handles the server is built on. DB may be nil in
// tests, in which case Sessions and Users repositories must be given.
type Deps struct {
	DB    database.Service
	Cache *redis.Client

	Users    users.Repository
	Sessions session.Repository
}

// New wires repositories, services and handlers into a Server
func New(cfg *config.Config, logger *slog.Logger, deps Deps) *Server {
	userRepo := deps.Users
	if userRepo == nil {
		userRepo = users.NewRepository(deps.DB)
	}
	sessionRepo := deps.Sessions
	if sessionRepo == nil {
		sessionRepo = session.NewRepository(deps.DB)
	}

	accounts := users.NewService(userRepo, deps.Cache, logger)
	sessions := session.NewService(sessionRepo, auth.NewAuthenticator(accounts))

	return &Server{
		cfg:      cfg,
		logger:   logger,
		db:       deps.DB,
		cache:    deps.Cache,
		accounts: accounts,
		sessions: sessions,
		store:    session.NewStore(sessions),
		handler:  auth.NewHandler(sessions, accounts, logger),
	}
}

// HTTPServer configures the http.Server around the route tree
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.RegisterRoutes(),
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

func (s *Server) cookieOptions() session.CookieOptions {
	return session.CookieOptions{
		Name:     s.cfg.SessionCookieName,
		Secrets:  s.cfg.SessionSecrets,
		MaxAge:   s.cfg.SessionMaxAge,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}
