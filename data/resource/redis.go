package resource

import (
	"context"
	stdErrors "errors"

	"github.com/redis/go-redis/v9"

	"dbmap/errors"
)

// redisGetter go-redis 中用到的命令子集，便于测试替换
type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisOptions Redis 连接参数
type RedisOptions struct {
	Address  string
	Username string
	Password string
	DB       int
	Prefix   string
}

// RedisLoader 从 Redis 字符串键读取资源，键为 Prefix + name
type RedisLoader struct {
	client redisGetter
	prefix string
	closer func() error
}

// NewRedisLoader 使用已有客户端（*redis.Client、*redis.ClusterClient 等）
func NewRedisLoader(client redisGetter, prefix string) *RedisLoader {
	return &RedisLoader{client: client, prefix: prefix}
}

// DialRedis 按参数创建客户端，Close 时一并关闭
func DialRedis(opts RedisOptions) *RedisLoader {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
	l := NewRedisLoader(client, opts.Prefix)
	l.closer = client.Close
	return l
}

// Load GET prefix+name
func (l *RedisLoader) Load(ctx context.Context, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	key := l.prefix + name
	text, err := l.client.Get(ctx, key).Result()
	if stdErrors.Is(err, redis.Nil) {
		return "", notFound(name, "redis")
	}
	if err != nil {
		return "", errors.WrapError(err, errors.ErrCodeInternal, "redis get "+key).
			WithContext(errors.DetailResource, name)
	}
	return text, nil
}

// Close 关闭 DialRedis 创建的客户端
func (l *RedisLoader) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}
