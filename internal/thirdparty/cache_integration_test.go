//go:build integration

package thirdparty

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emilythestrangee/reddit-companion/backend/internal/config"
	"github.com/emilythestrangee/reddit-companion/backend/internal/logging"
	"github.com/emilythestrangee/reddit-companion/backend/internal/models"
)

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	cache, err := NewCache(ctx, config.MediaCache{
		RedisURL: fmt.Sprintf("redis://%s:%s/0", host, port.Port()),
		TTL:      time.Minute,
	}, logging.Discard())
	require.NoError(t, err)
	require.IsType(t, &RedisCache{}, cache)

	_, ok := cache.Get(ctx, "gfycat:missing")
	assert.False(t, ok)

	media := &models.Media{Kind: models.MediaVideo, Provider: "gfycat", URL: "https://giant.gfycat.com/Clip.mp4"}
	cache.Set(ctx, "gfycat:clip", media)

	got, ok := cache.Get(ctx, "gfycat:clip")
	require.True(t, ok)
	assert.Equal(t, media, got)
}
