package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisProcessedCache(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	c := NewRedisProcessedCache(client, time.Hour, zap.NewNop())

	key := "bukukas:xendit:processed:123:evt_1"

	mock.ExpectExists(key).SetVal(0)
	assert.False(t, c.Seen(ctx, "xendit", 123, "evt_1"))

	mock.ExpectSetNX(key, "1", time.Hour).SetVal(true)
	c.MarkProcessed(ctx, "Xendit", 123, " evt_1 ")

	mock.ExpectExists(key).SetVal(1)
	assert.True(t, c.Seen(ctx, "xendit", 123, "evt_1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisProcessedCacheErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	c := NewRedisProcessedCache(client, 0, nil)

	key := "bukukas:xendit:processed:9:ref"
	mock.ExpectExists(key).SetErr(errors.New("connection refused"))
	assert.False(t, c.Seen(ctx, "xendit", 9, "ref"))

	mock.ExpectSetNX(key, "1", defaultProcessedTTL).SetErr(errors.New("connection refused"))
	c.MarkProcessed(ctx, "xendit", 9, "ref")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessedCacheSkipsIncompleteKeys(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	c := NewRedisProcessedCache(client, time.Hour, zap.NewNop())

	assert.False(t, c.Seen(ctx, "xendit", 0, "ref"))
	assert.False(t, c.Seen(ctx, "xendit", 1, "  "))
	c.MarkProcessed(ctx, "", 1, "ref")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNilClientFallsBackToNoop(t *testing.T) {
	c := NewRedisProcessedCache(nil, time.Hour, zap.NewNop())
	_, ok := c.(NoopProcessedCache)
	assert.True(t, ok)
	assert.False(t, c.Seen(context.Background(), "xendit", 1, "ref"))
}
