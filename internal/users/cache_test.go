package users_test

import (
	"context"
	"testing"

	"blogging/internal/logger"
	"blogging/internal/users"
	"blogging/internal/users/userstest"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	endpoint, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	return rdb
}

func TestService_FindOneCacheAside(t *testing.T) {
	rdb := startRedis(t)
	repo := userstest.NewMemoryRepository()
	svc := users.NewService(repo, rdb, logger.Discard())
	ctx := context.Background()

	created, err := svc.Create(ctx, users.CreateUserRequest{Email: "a@x.io", Username: "alice", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.FindOne(ctx, created.ID)
	require.NoError(t, err)

	cached, err := rdb.Get(ctx, "user:1").Result()
	require.NoError(t, err)
	assert.Contains(t, cached, `"username":"alice"`)
	assert.NotContains(t, cached, "$2a$")

	_, err = svc.Update(ctx, created.ID, users.UpdateUserRequest{Username: strPtr("alicia")})
	require.NoError(t, err)

	_, err = rdb.Get(ctx, "user:1").Result()
	assert.ErrorIs(t, err, redis.Nil)

	got, err := svc.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Username)

	require.NoError(t, svc.Remove(ctx, created.ID))
	_, err = svc.FindOne(ctx, created.ID)
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}
