package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/gtd-inbox/internal/model"
	"github.com/d60-Lab/gtd-inbox/internal/repository"
)

func setup(t *testing.T) (*InboxCache, *miniredis.Miniredis, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.InitSchema(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewInboxCache(repository.NewInboxRepository(db), client, time.Minute), mr, db
}

func TestInboxCache_GetByID_ReadThrough(t *testing.T) {
	c, mr, db := setup(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&model.Inbox{ID: 1, Item: "a"}).Error)

	got, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Item)
	assert.True(t, mr.Exists("inbox:item:1"))

	got, err = c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Item)
	assert.Equal(t, Counters{Hits: 1, Misses: 1}, c.Counters())
}

func TestInboxCache_NotFoundNotCached(t *testing.T) {
	c, mr, _ := setup(t)

	_, err := c.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, repository.ErrInboxNotFound)
	assert.False(t, mr.Exists("inbox:item:9"))
}

func TestInboxCache_WritesInvalidate(t *testing.T) {
	c, mr, _ := setup(t)
	ctx := context.Background()

	in := &model.Inbox{Item: "first"}
	require.NoError(t, c.Create(ctx, in))

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = c.GetByID(ctx, in.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(listKey))

	updated, err := c.UpdateItem(ctx, in.ID, "second", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Item)
	assert.False(t, mr.Exists(listKey))
	assert.False(t, mr.Exists(itemKey(in.ID)))

	got, err := c.GetByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Item)

	require.NoError(t, c.Create(ctx, &model.Inbox{Item: "third"}))
	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, c.Delete(ctx, in.ID))
	_, err = c.GetByID(ctx, in.ID)
	assert.ErrorIs(t, err, repository.ErrInboxNotFound)

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestInboxCache_RedisDownFallsBack(t *testing.T) {
	c, mr, db := setup(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&model.Inbox{ID: 1, Item: "a"}).Error)

	mr.Close()

	got, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Item)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, c.Delete(ctx, 1))
}

func TestInboxCache_EmptyListRoundTrip(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		list, err := c.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	}
	assert.Equal(t, int64(1), c.Counters().Hits)
}
