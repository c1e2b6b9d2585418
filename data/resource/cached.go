package resource

import (
	"context"
	"time"

	"dbmap/cache"
)

// CachedLoader 缓存已加载的 SQL 文本；只缓存成功结果
type CachedLoader struct {
	next  ILoader
	cache *cache.Cache[string, string]
}

// NewCachedLoader ttl 为滑动过期时间，0 表示不过期
func NewCachedLoader(next ILoader, ttl time.Duration) *CachedLoader {
	return NewCachedLoaderWith(next, cache.New[string, string](cache.Config{
		Name: "sql_resources",
		TTL:  ttl,
	}))
}

// NewCachedLoaderWith 使用调用方提供的缓存
func NewCachedLoaderWith(next ILoader, c *cache.Cache[string, string]) *CachedLoader {
	return &CachedLoader{next: next, cache: c}
}

func (l *CachedLoader) Load(ctx context.Context, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if text, ok := l.cache.Get(name); ok {
		return text, nil
	}
	text, err := l.next.Load(ctx, name)
	if err != nil {
		return "", err
	}
	l.cache.Set(name, text)
	return text, nil
}

// Name 缓存名称，与 Stats 一起满足 cache.StatsSource
func (l *CachedLoader) Name() string { return l.cache.Name() }

// Stats 缓存统计
func (l *CachedLoader) Stats() cache.Stats { return l.cache.Stats() }
