package mapping

import (
	"fmt"
	"reflect"

	core "dbmap/data/db"
	"dbmap/errors"
)

// Hydrate 将 reader 当前行写入 dst（指向结构体的非 nil 指针）。
//
// 对每个映射字段依次：
//  1. 按数据库字段名（大小写不敏感）取列序号，缺列返回 MAPPING_FIELD_NOT_FOUND
//  2. NULL 视为 nil
//  3. 日期时间目标统一转换为 UTC
//  4. 模型请求时由 OverrideHydration 替换值
//  5. nil 赋给不可空字段返回 NON_NULLABLE_NULL_ASSIGNMENT
//  6. 转换并赋值，失败返回 FIELD_TYPE_MISMATCH
//
// 出错时停在失败字段，之前的字段已被写入。
func (m *Mapper) Hydrate(r core.IReader, dst any) error {
	if r == nil {
		return errors.ArgumentNull("reader")
	}
	if dst == nil {
		return errors.ArgumentNull("dst")
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.NewError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("hydrate target must be a non-nil pointer, got %T", dst))
	}
	// **T 等多级指针逐级分配到结构体指针
	for rv.Elem().Kind() == reflect.Pointer {
		if rv.Elem().IsNil() {
			rv.Elem().Set(reflect.New(rv.Elem().Type().Elem()))
		}
		rv = rv.Elem()
	}

	meta := m.registry.Resolve(rv.Type())
	return hydrate(r, rv.Elem(), meta, rv.Interface())
}

func hydrate(r core.IReader, target reflect.Value, meta *TypeMetadata, instance any) error {
	var hook IHydrationOverridable
	if meta.HydrationOverride {
		hook, _ = instance.(IHydrationOverridable)
	}

	for _, f := range meta.Fields {
		ordinal, ok := r.Ordinal(f.DatabaseField)
		if !ok {
			return errors.NewError(errors.ErrCodeMappingFieldNotFound,
				fmt.Sprintf("database field '%s' mapped by %s.%s is not in the result set", f.DatabaseField, meta.Type.Name(), f.FieldName)).
				WithDetails(map[string]any{
					errors.DetailDatabaseField: f.DatabaseField,
					errors.DetailField:         f.FieldName,
				})
		}

		var value any
		if !r.IsNull(ordinal) {
			value = r.Value(ordinal)
		}

		if value != nil && isTimeTarget(f.Type) {
			t, err := coerceTime(value)
			if err != nil {
				return fieldTypeMismatch(f, value, err)
			}
			value = t
		}

		if hook != nil && hook.ShouldOverrideHydration(f.FieldName) {
			value = hook.OverrideHydration(f.FieldName, value)
		}

		if value == nil && !f.Nullable {
			return errors.NewError(errors.ErrCodeNullAssignment,
				fmt.Sprintf("null value for non-nullable field %s.%s (database field '%s')", meta.Type.Name(), f.FieldName, f.DatabaseField)).
				WithDetails(map[string]any{
					errors.DetailDatabaseField: f.DatabaseField,
					errors.DetailField:         f.FieldName,
				})
		}

		converted, err := convert(value, f.Type)
		if err != nil {
			return fieldTypeMismatch(f, value, err)
		}
		fieldForSet(target, f.Index).Set(converted)
	}
	return nil
}

func fieldTypeMismatch(f FieldMapping, value any, cause error) error {
	return errors.NewErrorWithCause(errors.ErrCodeFieldTypeMismatch,
		fmt.Sprintf("database field '%s' (%T) cannot be assigned to field %s (%s)", f.DatabaseField, value, f.FieldName, f.Type),
		cause).
		WithDetails(map[string]any{
			errors.DetailDatabaseField: f.DatabaseField,
			errors.DetailField:         f.FieldName,
			errors.DetailSourceType:    fmt.Sprintf("%T", value),
			errors.DetailTargetType:    f.Type.String(),
		})
}

// MapRow 将 reader 当前行映射为新的 T；出错时返回零值
func MapRow[T any](m *Mapper, r core.IReader) (T, error) {
	var zero T
	dst := new(T)
	if err := m.Hydrate(r, dst); err != nil {
		return zero, err
	}
	return *dst, nil
}

// MapToObjects 从 reader 读取至多 take 行（take < 0 表示全部）并映射为 []T。
//
// 会推进 reader；出错时返回 nil 切片，已映射的对象不会返回给调用方。
func MapToObjects[T any](m *Mapper, r core.IReader, take int) ([]T, error) {
	if r == nil {
		return nil, errors.ArgumentNull("reader")
	}

	objects := make([]T, 0)
	for take < 0 || len(objects) < take {
		if !r.Next() {
			break
		}
		obj, err := MapRow[T](m, r)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return objects, nil
}
