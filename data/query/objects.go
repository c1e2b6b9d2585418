package query

import (
	"context"
	"database/sql"
	"reflect"

	core "dbmap/data/db"
	"dbmap/data/mapping"
	"dbmap/errors"
)

// GetObjects 执行查询并把所有行映射为 []T
func GetObjects[T any](ctx context.Context, e *Executor, conn core.IConnection, text string, commandFn CommandFunc) ([]T, error) {
	var result []T
	err := e.ExecuteQuery(ctx, conn, text, commandFn, func(r core.IReader) error {
		objects, err := mapping.MapToObjects[T](e.mapper, r, -1)
		result = objects
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetObjectsFromResource 同 GetObjects，SQL 来自资源
func GetObjectsFromResource[T any](ctx context.Context, e *Executor, conn core.IConnection, name string, commandFn CommandFunc) ([]T, error) {
	text, err := e.LoadResource(ctx, name)
	if err != nil {
		return nil, err
	}
	return GetObjects[T](ctx, e, conn, text, commandFn)
}

// GetSingleObject 映射第一行；没有结果行时返回包装 sql.ErrNoRows 的 NOT_FOUND
func GetSingleObject[T any](ctx context.Context, e *Executor, conn core.IConnection, text string, commandFn CommandFunc) (T, error) {
	var zero T
	var objects []T
	err := e.ExecuteQuery(ctx, conn, text, commandFn, func(r core.IReader) error {
		var err error
		objects, err = mapping.MapToObjects[T](e.mapper, r, 1)
		return err
	})
	if err != nil {
		return zero, err
	}
	if len(objects) == 0 {
		return zero, errors.WrapError(sql.ErrNoRows, errors.ErrCodeNotFound, "query returned no rows")
	}
	return objects[0], nil
}

// GetSingleObjectFromResource 同 GetSingleObject，SQL 来自资源
func GetSingleObjectFromResource[T any](ctx context.Context, e *Executor, conn core.IConnection, name string, commandFn CommandFunc) (T, error) {
	text, err := e.LoadResource(ctx, name)
	if err != nil {
		var zero T
		return zero, err
	}
	return GetSingleObject[T](ctx, e, conn, text, commandFn)
}

// Scalar 执行标量查询并按 mapping.GetValue 的规则转换为 T。
//
// 无结果行与 NULL 同样处理：T 不可空时返回 NON_NULLABLE_NULL_ASSIGNMENT。
func Scalar[T any](ctx context.Context, e *Executor, conn core.IConnection, text string, commandFn CommandFunc) (T, error) {
	value, err := e.ExecuteScalar(ctx, conn, text, commandFn)
	if err != nil {
		var zero T
		return zero, err
	}
	return mapping.ConvertValue[T]("scalar", value)
}

// ExecuteNonQueryForObjects 对每个 model 绑定参数并执行一次，返回受影响行数之和。
//
// 遇到第一个错误即停止，之前的执行不回滚；需要原子性时传入事务连接。
func ExecuteNonQueryForObjects[T any](ctx context.Context, e *Executor, conn core.IConnection, text string, models []T) (int64, error) {
	var total int64
	for _, model := range models {
		n, err := e.ExecuteNonQueryForObject(ctx, conn, text, model)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// ExecuteNonQueryResourceForObjects 同 ExecuteNonQueryForObjects，资源只加载一次
func ExecuteNonQueryResourceForObjects[T any](ctx context.Context, e *Executor, conn core.IConnection, name string, models []T) (int64, error) {
	text, err := e.LoadResource(ctx, name)
	if err != nil {
		return 0, err
	}
	return ExecuteNonQueryForObjects(ctx, e, conn, text, models)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
