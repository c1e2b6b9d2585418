package mapping

import (
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// convert 将驱动值转换为 target 类型的值。
//
// 规则：
//   - 可直接赋值的值原样使用（命名类型之间做类型转换）
//   - *target 实现 sql.Scanner 时调用 Scan
//   - 指针目标分配元素后递归转换
//   - bool、整数、浮点目标接受数值、bool 与数字文本，检查溢出与小数截断；
//     整数目标的文本只按十进制解析，不识别 0、0x 等进制前缀
//   - string 目标只接受 string 与 []byte，数值不会格式化为文本；
//     []byte 目标接受 []byte 与 string（复制）
//   - time.Time 目标见 coerceTime
func convert(value any, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		return nullValue(target)
	}

	if target == bytesType {
		switch v := value.(type) {
		case []byte:
			return reflect.ValueOf(append([]byte(nil), v...)), nil
		case string:
			return reflect.ValueOf([]byte(v)), nil
		}
		return reflect.Value{}, mismatch(value, target)
	}

	src := reflect.ValueOf(value)
	if src.Type() == target {
		return src, nil
	}
	if src.Type().AssignableTo(target) {
		if target.Kind() == reflect.Interface {
			return src, nil
		}
		return src.Convert(target), nil
	}

	if reflect.PointerTo(target).Implements(scannerType) {
		ptr := reflect.New(target)
		if err := ptr.Interface().(sql.Scanner).Scan(value); err != nil {
			return reflect.Value{}, err
		}
		return ptr.Elem(), nil
	}

	if target.Kind() == reflect.Pointer {
		elem, err := convert(value, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(target.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}

	if target == timeType {
		t, err := coerceTime(value)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(t), nil
	}

	return convertKind(value, target)
}

// nullValue NULL 对应的目标值：Scanner 类型调用 Scan(nil)，其余为零值
func nullValue(target reflect.Type) (reflect.Value, error) {
	if target.Kind() != reflect.Pointer && reflect.PointerTo(target).Implements(scannerType) {
		ptr := reflect.New(target)
		if err := ptr.Interface().(sql.Scanner).Scan(nil); err != nil {
			return reflect.Value{}, err
		}
		return ptr.Elem(), nil
	}
	return reflect.Zero(target), nil
}

// convertKind 按目标的底层种类转换，命名类型（type Genre string）同样适用
func convertKind(value any, target reflect.Type) (reflect.Value, error) {
	value = builtin(value)
	out := reflect.New(target).Elem()

	switch target.Kind() {
	case reflect.String:
		s, ok := value.(string)
		if !ok {
			return reflect.Value{}, mismatch(value, target)
		}
		out.SetString(s)

	case reflect.Bool:
		if n, ok := numeric(value); ok {
			out.SetBool(n != 0)
			break
		}
		b, err := cast.ToBoolE(value)
		if err != nil {
			return reflect.Value{}, wrapMismatch(value, target, err)
		}
		out.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if err := checkIntegral(value); err != nil {
			return reflect.Value{}, wrapMismatch(value, target, err)
		}
		i, err := toInt64(value)
		if err != nil {
			return reflect.Value{}, wrapMismatch(value, target, err)
		}
		if out.OverflowInt(i) {
			return reflect.Value{}, overflow(value, target)
		}
		out.SetInt(i)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if err := checkIntegral(value); err != nil {
			return reflect.Value{}, wrapMismatch(value, target, err)
		}
		u, err := toUint64(value)
		if err != nil {
			return reflect.Value{}, wrapMismatch(value, target, err)
		}
		if out.OverflowUint(u) {
			return reflect.Value{}, overflow(value, target)
		}
		out.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return reflect.Value{}, wrapMismatch(value, target, err)
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, overflow(value, target)
		}
		out.SetFloat(f)

	default:
		return reflect.Value{}, mismatch(value, target)
	}
	return out, nil
}

// toInt64 文本一律按十进制解析，"010" 为 10，"0x1F" 为错误
func toInt64(value any) (int64, error) {
	if s, ok := value.(string); ok {
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}
	return cast.ToInt64E(value)
}

func toUint64(value any) (uint64, error) {
	if s, ok := value.(string); ok {
		return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	}
	return cast.ToUint64E(value)
}

// coerceTime 日期时间统一为 UTC：
// time.Time 调用 UTC()；文本按 UTC 解析（自带时区的保留偏移后转换）；整数视为 Unix 秒。
func coerceTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("nil *time.Time")
		}
		return v.UTC(), nil
	case []byte:
		value = string(v)
	case bool:
		return time.Time{}, mismatch(value, timeType)
	}

	t, err := cast.ToTimeInDefaultLocationE(value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// builtin 将命名的基础类型还原为内建类型，[]byte 视为文本
func builtin(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	}
	return value
}

// numeric 内建数值类型转为 float64
func numeric(value any) (float64, bool) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

// checkIntegral 浮点值必须是整数才能放入整数字段
func checkIntegral(value any) error {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Float32 && v.Kind() != reflect.Float64 {
		return nil
	}
	if f := v.Float(); f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("%v has a fractional part", f)
	}
	return nil
}

func mismatch(value any, target reflect.Type) error {
	return fmt.Errorf("cannot convert %T to %s", value, target)
}

func wrapMismatch(value any, target reflect.Type, err error) error {
	return fmt.Errorf("cannot convert %T to %s: %w", value, target, err)
}

func overflow(value any, target reflect.Type) error {
	return fmt.Errorf("value %v overflows %s", value, target)
}
