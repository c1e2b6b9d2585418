package mapping

import "reflect"

// IHydrationOverridable 模型可在字段赋值前替换数据库值
//
// field 为 Go 字段名；返回值按普通规则赋给该字段，返回 nil 时仍受可空性检查。
type IHydrationOverridable interface {
	ShouldOverrideHydration(field string) bool
	OverrideHydration(field string, value any) any
}

// ISerializationOverridable 模型可在绑定参数前替换字段值
type ISerializationOverridable interface {
	ShouldOverrideSerialization(field string) bool
	OverrideSerialization(field string, value any) any
}

var (
	hydrationOverridableType     = reflect.TypeOf((*IHydrationOverridable)(nil)).Elem()
	serializationOverridableType = reflect.TypeOf((*ISerializationOverridable)(nil)).Elem()
)
