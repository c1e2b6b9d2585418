package resource

import (
	"context"
	stdErrors "errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbmap/cache"
	"dbmap/config"
	"dbmap/errors"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"sql/GetAlbums.sql":           {Data: []byte("SELECT * FROM Album")},
		"sql/queries/GetAlbums.sql":   {Data: []byte("SELECT AlbumId FROM Album")},
		"sql/queries/GetInvoices.sql": {Data: []byte("SELECT * FROM Invoice")},
		"sql/MyGetAlbums.sql":         {Data: []byte("SELECT 1")},
	}
}

func TestFSLoader(t *testing.T) {
	ctx := context.Background()
	l := NewFSLoader(testFS())

	text, err := l.Load(ctx, "GetInvoices.sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM Invoice", text)

	// 字典序遍历，sql/GetAlbums.sql 在 sql/queries/ 之前
	path, err := l.Find("GetAlbums.sql")
	require.NoError(t, err)
	assert.Equal(t, "sql/GetAlbums.sql", path)

	for _, name := range []string{"queries.GetAlbums.sql", "queries/GetAlbums.sql", "sql.queries.GetAlbums.sql"} {
		text, err := l.Load(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, "SELECT AlbumId FROM Album", text, name)
	}
}

func TestFSLoader_NoPartialSegmentMatch(t *testing.T) {
	l := NewFSLoader(testFS())

	_, err := l.Load(context.Background(), "Albums.sql")
	assert.True(t, errors.IsNotFound(err))
	resource, _ := errors.DetailOf(err, errors.DetailResource)
	assert.Equal(t, "Albums.sql", resource)

	_, err = l.Load(context.Background(), "Get.Albums.sql")
	assert.True(t, errors.IsNotFound(err))
}

func TestLoaders_EmptyName(t *testing.T) {
	loaders := map[string]ILoader{
		"fs":     NewFSLoader(testFS()),
		"redis":  NewRedisLoader(fakeRedis{}, ""),
		"nats":   &NATSLoader{kv: fakeKV{}},
		"cached": NewCachedLoader(NewFSLoader(testFS()), time.Minute),
	}
	for name, l := range loaders {
		_, err := l.Load(context.Background(), " ")
		assert.True(t, stdErrors.Is(err, errors.ErrArgumentNull), name)
	}
}

type fakeRedis map[string]string

func (f fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if key == "sql:broken" {
		return redis.NewStringResult("", stdErrors.New("connection refused"))
	}
	v, ok := f[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func TestRedisLoader(t *testing.T) {
	ctx := context.Background()
	l := NewRedisLoader(fakeRedis{"sql:GetAlbums.sql": "SELECT * FROM Album"}, "sql:")

	text, err := l.Load(ctx, "GetAlbums.sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM Album", text)

	_, err = l.Load(ctx, "Missing.sql")
	assert.True(t, errors.IsNotFound(err))

	_, err = l.Load(ctx, "broken")
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInternal))
	assert.ErrorContains(t, err, "connection refused")

	assert.NoError(t, l.Close())
}

type fakeEntry struct {
	nats.KeyValueEntry
	value []byte
}

func (e fakeEntry) Value() []byte { return e.value }

type fakeKV map[string]string

func (f fakeKV) Get(key string) (nats.KeyValueEntry, error) {
	v, ok := f[key]
	if !ok {
		return nil, nats.ErrKeyNotFound
	}
	return fakeEntry{value: []byte(v)}, nil
}

func TestNATSLoader(t *testing.T) {
	ctx := context.Background()
	l := &NATSLoader{kv: fakeKV{"queries.GetAlbums.sql": "SELECT * FROM Album"}, bucket: "sql"}

	text, err := l.Load(ctx, "queries/GetAlbums.sql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM Album", text)

	_, err = l.Load(ctx, "GetAlbums.sql")
	assert.True(t, errors.IsNotFound(err))
	assert.ErrorContains(t, err, "nats bucket sql")

	assert.Equal(t, "a.b.c", KeyName("/a/b/c"))
	assert.NoError(t, l.Close())
}

type countingLoader struct {
	calls int
	next  ILoader
}

func (c *countingLoader) Load(ctx context.Context, name string) (string, error) {
	c.calls++
	return c.next.Load(ctx, name)
}

func TestCachedLoader(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inner := &countingLoader{next: NewFSLoader(testFS())}
	l := NewCachedLoaderWith(inner, cache.New[string, string](cache.Config{
		TTL: time.Minute,
		Now: func() time.Time { return now },
	}))

	for i := 0; i < 3; i++ {
		text, err := l.Load(ctx, "GetInvoices.sql")
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM Invoice", text)
	}
	assert.Equal(t, 1, inner.calls)

	now = now.Add(2 * time.Minute)
	_, err := l.Load(ctx, "GetInvoices.sql")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	// 失败结果不缓存
	_, err = l.Load(ctx, "Missing.sql")
	assert.True(t, errors.IsNotFound(err))
	_, _ = l.Load(ctx, "Missing.sql")
	assert.Equal(t, 4, inner.calls)

	stats := l.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, 1, stats.Size)
}

func TestOpen(t *testing.T) {
	loader, closeFn, err := Open(config.ResourcesConfig{Source: "embed", CacheTTL: time.Minute}, testFS())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &CachedLoader{}, loader)

	loader, _, err = Open(config.ResourcesConfig{Source: "embed"}, testFS())
	require.NoError(t, err)
	assert.IsType(t, &FSLoader{}, loader)

	redisLoader, closeFn, err := Open(config.ResourcesConfig{Source: "redis", Redis: config.RedisConfig{Address: "127.0.0.1:0", Prefix: "sql:"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "sql:", redisLoader.(*RedisLoader).prefix)
	assert.NoError(t, closeFn())

	_, _, err = Open(config.ResourcesConfig{Source: "embed"}, nil)
	assert.True(t, stdErrors.Is(err, errors.ErrArgumentNull))

	_, _, err = Open(config.ResourcesConfig{Source: "ftp"}, nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeConfiguration))
}
