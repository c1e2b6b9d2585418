// Package resource 按名称加载 SQL 文本。
//
// 名称可以来自嵌入文件系统（FSLoader）、Redis（RedisLoader）或
// NATS JetStream KV（NATSLoader），CachedLoader 为任意来源加一层滑动过期缓存。
package resource

import (
	"context"
	"fmt"
	"strings"

	"dbmap/errors"
)

// ILoader 按名称返回 SQL 文本；名称为空返回 ARGUMENT_NULL，不存在返回 NOT_FOUND
type ILoader interface {
	Load(ctx context.Context, name string) (string, error)
}

// LoaderFunc 函数适配器
type LoaderFunc func(ctx context.Context, name string) (string, error)

func (f LoaderFunc) Load(ctx context.Context, name string) (string, error) { return f(ctx, name) }

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.ArgumentNull("name")
	}
	return nil
}

func notFound(name, source string) error {
	return errors.NewError(errors.ErrCodeNotFound,
		fmt.Sprintf("sql resource '%s' not found in %s", name, source)).
		WithContext(errors.DetailResource, name)
}
