//go:build integration

package flickr

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/five82/skylight/internal/logging"
)

// setupRedisContainer starts a throwaway Redis for the cache round trip.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() {
		client.Close()
		_ = container.Terminate(ctx)
	})
	return client
}

func TestCachingCaller_Integration(t *testing.T) {
	rdb := setupRedisContainer(t)
	stub := &stubCaller{body: []byte(searchOK)}
	client := NewClient(NewCachingCaller(stub, rdb, 2*time.Second, logging.Discard()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		page, err := client.FetchPage(ctx, "cat", 2, 10)
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
	}
	assert.Equal(t, 1, stub.calls)

	params := url.Values{}
	params.Set("text", "cat")
	key := CacheKey(SearchMethod, params)
	assert.Contains(t, key, "text=cat")

	time.Sleep(3 * time.Second)
	_, err := client.FetchPage(ctx, "cat", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls, "entry should expire after ttl")
}
