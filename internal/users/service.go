package users

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"blogging/internal/password"

	"github.com/redis/go-redis/v9"
)

const userCacheTTL = 5 * time.Minute

// Service handles account business logic with an optional read cache
type Service struct {
	repo   Repository
	cache  *redis.Client
	logger *slog.Logger
}

// NewService creates an account service. A nil cache disables caching.
func NewService(repo Repository, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Create registers a new account, storing only the bcrypt hash of its password
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
}

// FindOne retrieves an account by id, without its password hash
func (s *Service) FindOne(ctx context.Context, id int64) (*User, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey(id)).Result()
		if err == nil {
			var u User
			if err := json.Unmarshal([]byte(cached), &u); err == nil {
				return &u, nil
			}
		}
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		data, _ := json.Marshal(u)
		if err := s.cache.Set(ctx, cacheKey(id), data, userCacheTTL).Err(); err != nil {
			s.logger.Warn("Failed to cache user", "user_id", id, "error", err.Error())
		}
	}

	return u, nil
}

// FindByEmailWithHash retrieves an account by email including its password
// hash. It always reads through to the database.
func (s *Service) FindByEmailWithHash(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// Update applies a partial update, re-hashing the password when one is given
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	changes := Changes{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Password != nil {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = &hash
	}

	u, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return u, nil
}

// Remove deletes an account and, by cascade, every session bound to it
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(id)).Err(); err != nil {
		s.logger.Warn("Failed to invalidate cached user", "user_id", id, "error", err.Error())
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}
