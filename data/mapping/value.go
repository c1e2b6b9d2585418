package mapping

import (
	"fmt"
	"reflect"
	"strings"

	core "dbmap/data/db"
	"dbmap/errors"
)

// GetValue 读取 reader 当前行的单个字段并转换为 T。
//
//   - fieldName 为空：ARGUMENT_NULL
//   - 结果集中无此列：FIELD_NOT_FOUND
//   - NULL 且 T 不可空：NON_NULLABLE_NULL_ASSIGNMENT；T 可空时返回零值
//   - 无法转换：INVALID_CAST，详情包含字段名、源类型与目标类型
func GetValue[T any](r core.IReader, fieldName string) (T, error) {
	var zero T
	if r == nil {
		return zero, errors.ArgumentNull("reader")
	}
	if fieldName == "" {
		return zero, errors.ArgumentNull("fieldName")
	}

	ordinal, ok := r.Ordinal(fieldName)
	if !ok {
		return zero, errors.NewError(errors.ErrCodeFieldNotFound,
			fmt.Sprintf("field '%s' is not in the result set", fieldName)).
			WithContext(errors.DetailField, fieldName)
	}

	var value any
	if !r.IsNull(ordinal) {
		value = r.Value(ordinal)
	}
	return ConvertValue[T](fieldName, value)
}

// ConvertValue 按 GetValue 的规则将单个值转换为 T，nil 视为 NULL；
// name 用于错误详情（如标量查询的列名）
func ConvertValue[T any](name string, value any) (T, error) {
	var zero T
	target := reflect.TypeOf((*T)(nil)).Elem()
	if value == nil {
		if !isNullable(target) {
			return zero, errors.NewError(errors.ErrCodeNullAssignment,
				fmt.Sprintf("null value for field '%s' cannot be assigned to non-nullable %s", name, target)).
				WithDetails(map[string]any{
					errors.DetailField:      name,
					errors.DetailTargetType: target.String(),
				})
		}
		v, err := nullValue(target)
		if err != nil {
			return zero, invalidCast(name, nil, target, err)
		}
		out, _ := v.Interface().(T)
		return out, nil
	}

	if isTimeTarget(target) {
		t, err := coerceTime(value)
		if err != nil {
			return zero, invalidCast(name, value, target, err)
		}
		value = t
	}

	converted, err := convert(value, target)
	if err != nil {
		return zero, invalidCast(name, value, target, err)
	}
	out, _ := converted.Interface().(T)
	return out, nil
}

func invalidCast(fieldName string, value any, target reflect.Type, cause error) error {
	source := fmt.Sprintf("%T", value)
	return errors.NewErrorWithCause(errors.ErrCodeInvalidCast,
		fmt.Sprintf("field '%s': cannot cast %s to %s", fieldName, source, target),
		cause).
		WithDetails(map[string]any{
			errors.DetailField:      fieldName,
			errors.DetailSourceType: source,
			errors.DetailTargetType: target.String(),
		})
}

// ColumnOrdinals 列名（小写）到序号的映射；重名列保留第一个
func ColumnOrdinals(r core.IReader) map[string]int {
	out := make(map[string]int, r.FieldCount())
	for i := 0; i < r.FieldCount(); i++ {
		key := strings.ToLower(r.FieldName(i))
		if _, exists := out[key]; !exists {
			out[key] = i
		}
	}
	return out
}
