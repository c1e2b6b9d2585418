// Package cache 提供元数据与资源文本使用的内存缓存。
//
// ICache 是调用方依赖的最小能力（Get/Set）；Cache 是默认实现：
// 滑动过期（按最后访问时间计算 TTL）、可选的 LRU 容量上限、命中统计。
package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// ICache 缓存能力接口
//
// 缓存只影响性能，不影响语义：Get 未命中时调用方自行重建并 Set。
type ICache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
}

// Config 缓存配置
type Config struct {
	// Name 缓存名称（用于日志和统计）
	Name string

	// MaxSize 最大条目数，0 表示不限制
	MaxSize int

	// TTL 滑动过期时间：条目自最后一次 Get/Set 起空闲超过 TTL 即失效。
	// Get 命中过期条目时立即移除；其余过期条目由 Set 清扫，
	// 距上次清扫超过一个 TTL 的 Set 会移除全部过期条目。0 表示永不过期
	TTL time.Duration

	// Now 时钟，测试中注入；默认 time.Now
	Now func() time.Time

	// OnEvict 条目被移除时的回调（可选）
	OnEvict func(key, value any)
}

// Stats 缓存统计信息
type Stats struct {
	Hits      int64 // 命中次数
	Misses    int64 // 未命中次数
	Evictions int64 // 容量驱逐次数
	Expires   int64 // 过期移除次数
	Size      int   // 当前条目数
}

// Cache 带滑动过期与 LRU 上限的并发安全缓存
//
//	metadata := cache.New[string, *TypeMetadata](cache.Config{
//	    Name:    "type_metadata",
//	    MaxSize: 1024,
//	    TTL:     4 * time.Hour,
//	})
//	metadata.Set(key, meta)
//	if m, ok := metadata.Get(key); ok {
//	    // ...
//	}
type Cache[K comparable, V any] struct {
	config Config

	mu    sync.Mutex
	items map[K]*entry[K, V]
	lru   *list.List // 最近访问的在前
	stats Stats

	sweptAt time.Time
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	accessedAt time.Time
	element    *list.Element
}

var _ ICache[string, int] = (*Cache[string, int])(nil)

// New 创建缓存
func New[K comparable, V any](config Config) *Cache[K, V] {
	if config.Name == "" {
		config.Name = "unnamed"
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Cache[K, V]{
		config:  config,
		items:   make(map[K]*entry[K, V]),
		lru:     list.New(),
		sweptAt: config.Now(),
	}
}

// Name 缓存名称
func (c *Cache[K, V]) Name() string { return c.config.Name }

// Get 读取并刷新访问时间；过期条目在此处被移除
func (c *Cache[K, V]) Get(key K) (value V, found bool) {
	// Get 会移动 LRU 位置并更新统计，因此使用独占锁
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return value, false
	}

	now := c.config.Now()
	if c.expired(e, now) {
		c.remove(e)
		c.stats.Misses++
		c.stats.Expires++
		return value, false
	}

	e.accessedAt = now
	c.lru.MoveToFront(e.element)
	c.stats.Hits++
	return e.value, true
}

// Set 写入或覆盖条目并刷新访问时间；超过 MaxSize 时驱逐最久未使用的条目
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.config.Now()
	if c.config.TTL > 0 && now.Sub(c.sweptAt) >= c.config.TTL {
		c.sweep(now)
	}
	if e, ok := c.items[key]; ok {
		e.value = value
		e.accessedAt = now
		c.lru.MoveToFront(e.element)
		return
	}

	if c.config.MaxSize > 0 && len(c.items) >= c.config.MaxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.remove(oldest.Value.(*entry[K, V]))
			c.stats.Evictions++
		}
	}

	e := &entry[K, V]{key: key, value: value, accessedAt: now}
	e.element = c.lru.PushFront(e)
	c.items[key] = e
}

// Delete 删除条目，返回是否存在
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.remove(e)
	return true
}

// Clear 清空缓存
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.OnEvict != nil {
		for _, e := range c.items {
			c.config.OnEvict(e.key, e.value)
		}
	}
	c.items = make(map[K]*entry[K, V])
	c.lru = list.New()
}

// CleanExpired 主动移除所有过期条目，返回移除数量
func (c *Cache[K, V]) CleanExpired() int {
	if c.config.TTL <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sweep(c.config.Now())
}

// sweep 需持锁调用
func (c *Cache[K, V]) sweep(now time.Time) int {
	cleaned := 0
	for _, e := range c.items {
		if c.expired(e, now) {
			c.remove(e)
			cleaned++
		}
	}
	c.stats.Expires += int64(cleaned)
	c.sweptAt = now
	return cleaned
}

// Stats 统计信息副本
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = len(c.items)
	return stats
}

// Size 当前条目数（含尚未被清理的过期条目）
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// HitRate 命中率
func (c *Cache[K, V]) HitRate() float64 {
	s := c.Stats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (c *Cache[K, V]) expired(e *entry[K, V], now time.Time) bool {
	return c.config.TTL > 0 && now.Sub(e.accessedAt) >= c.config.TTL
}

// remove 需持锁调用
func (c *Cache[K, V]) remove(e *entry[K, V]) {
	if c.config.OnEvict != nil {
		c.config.OnEvict(e.key, e.value)
	}
	c.lru.Remove(e.element)
	delete(c.items, e.key)
}

// String 返回缓存概况
func (c *Cache[K, V]) String() string {
	s := c.Stats()
	return fmt.Sprintf("Cache[%s]: size=%d/%d, hits=%d, misses=%d, hit_rate=%.2f%%, evictions=%d, expires=%d",
		c.config.Name, s.Size, c.config.MaxSize, s.Hits, s.Misses, c.HitRate()*100, s.Evictions, s.Expires)
}
