package resource

import (
	"io/fs"

	"dbmap/config"
	"dbmap/errors"
)

// Open 按配置创建加载器，cache_ttl > 0 时包一层 CachedLoader。
//
// 返回的 closer 释放 Redis/NATS 连接，embed 来源为空操作。
func Open(cfg config.ResourcesConfig, fsys fs.FS) (loader ILoader, closer func() error, err error) {
	closer = func() error { return nil }

	switch cfg.Source {
	case "", "embed":
		if fsys == nil {
			return nil, closer, errors.ArgumentNull("fsys")
		}
		loader = NewFSLoader(fsys)
	case "redis":
		l := DialRedis(RedisOptions{
			Address:  cfg.Redis.Address,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		loader, closer = l, l.Close
	case "nats":
		l, err := DialNATS(cfg.NATS.URL, cfg.NATS.Bucket)
		if err != nil {
			return nil, closer, err
		}
		loader, closer = l, l.Close
	default:
		return nil, closer, errors.NewError(errors.ErrCodeConfiguration, "unknown resource source: "+cfg.Source)
	}

	if cfg.CacheTTL > 0 {
		loader = NewCachedLoader(loader, cfg.CacheTTL)
	}
	return loader, closer, nil
}
