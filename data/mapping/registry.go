package mapping

import (
	"context"
	"reflect"
	"sync/atomic"
	"time"

	"dbmap/cache"
	"dbmap/logging"
)

const (
	// DefaultMetadataTTL 元数据滑动过期时间
	DefaultMetadataTTL = 4 * time.Hour
	// DefaultMetadataMaxSize 元数据缓存条目上限
	DefaultMetadataMaxSize = 1024
)

// Registry 字段元数据注册表
//
// Resolve 命中缓存时直接返回；未命中时扫描类型并写入缓存。
// 并发未命中可能重复扫描同一类型，结果相同，后写者覆盖。
type Registry struct {
	cache  cache.ICache[string, *TypeMetadata]
	logger logging.Logger
	scans  atomic.Int64
}

// RegistryOption 注册表选项
type RegistryOption func(*Registry)

// WithCache 使用自定义缓存
func WithCache(c cache.ICache[string, *TypeMetadata]) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithRegistryLogger 设置注册表日志
func WithRegistryLogger(l logging.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewMetadataCache 创建元数据缓存；ttl/maxSize 为 0 时使用默认值
func NewMetadataCache(ttl time.Duration, maxSize int) *cache.Cache[string, *TypeMetadata] {
	if ttl <= 0 {
		ttl = DefaultMetadataTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMetadataMaxSize
	}
	return cache.New[string, *TypeMetadata](cache.Config{
		Name:    "type_metadata",
		MaxSize: maxSize,
		TTL:     ttl,
	})
}

// NewRegistry 创建注册表，默认使用 4 小时滑动过期的内存缓存
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NewMetadataCache(DefaultMetadataTTL, DefaultMetadataMaxSize)
	}
	if r.logger == nil {
		r.logger = logging.GetLogger().WithFields(logging.Component("mapping.registry"))
	}
	return r
}

// Resolve 返回类型的元数据；指针类型取其元素类型，非结构体返回空元数据
func (r *Registry) Resolve(t reflect.Type) *TypeMetadata {
	if t == nil {
		return &TypeMetadata{}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	key := typeKey(t)
	// 不同作用域内同名的局部类型 key 相同，以 Type 校验命中
	if meta, ok := r.cache.Get(key); ok && meta.Type == t {
		return meta
	}

	meta := buildMetadata(t)
	r.scans.Add(1)
	r.cache.Set(key, meta)

	r.logger.Debug(context.Background(), "type metadata resolved",
		logging.String("type", meta.Key),
		logging.Int("fields", len(meta.Fields)),
		logging.Bool("hydration_override", meta.HydrationOverride),
		logging.Bool("serialization_override", meta.SerializationOverride),
	)
	return meta
}

// Scans 已执行的类型扫描次数
func (r *Registry) Scans() int64 {
	return r.scans.Load()
}

// Resolve 泛型便捷形式
func Resolve[T any](r *Registry) *TypeMetadata {
	return r.Resolve(reflect.TypeOf((*T)(nil)).Elem())
}
