package mapping

import (
	"database/sql"
	"reflect"
	"strings"
	"time"
)

// FieldMapping 一个结构体字段与数据库字段、SQL 参数之间的对应关系
type FieldMapping struct {
	DatabaseField    string       // 结果集列名，匹配时大小写不敏感
	SQLParameterName string       // 绑定参数名，默认等于 DatabaseField
	FieldName        string       // Go 字段名，传给 override 钩子
	Index            []int        // reflect 字段路径，嵌入结构体展开后为多段
	Type             reflect.Type // 字段类型
	Nullable         bool         // 是否可以接收 NULL
}

// TypeMetadata 一个类型的全部字段映射，构建后不可修改
type TypeMetadata struct {
	Type   reflect.Type
	Key    string
	Fields []FieldMapping

	// *T 是否实现 IHydrationOverridable / ISerializationOverridable
	HydrationOverride     bool
	SerializationOverride bool
}

// Field 按数据库字段名查找映射（大小写不敏感）
func (m *TypeMetadata) Field(databaseField string) (FieldMapping, bool) {
	for _, f := range m.Fields {
		if strings.EqualFold(f.DatabaseField, databaseField) {
			return f, true
		}
	}
	return FieldMapping{}, false
}

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
	bytesType   = reflect.TypeOf([]byte(nil))
)

// typeKey 类型的稳定标识：包路径 + 类型名；匿名类型使用 String()
func typeKey(t reflect.Type) string {
	if t.PkgPath() != "" && t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// isNullable 可空包装类型（实现 sql.Scanner）或引用类型
func isNullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return reflect.PointerTo(t).Implements(scannerType)
}

func isTimeTarget(t reflect.Type) bool {
	return t == timeType || (t.Kind() == reflect.Pointer && t.Elem() == timeType)
}

func buildMetadata(t reflect.Type) *TypeMetadata {
	meta := &TypeMetadata{Type: t, Key: typeKey(t)}
	if t.Kind() != reflect.Struct {
		return meta
	}

	meta.Fields = collectFields(t, nil, map[reflect.Type]bool{t: true})
	ptr := reflect.PointerTo(t)
	meta.HydrationOverride = ptr.Implements(hydrationOverridableType)
	meta.SerializationOverride = ptr.Implements(serializationOverridableType)
	return meta
}

// collectFields 按声明顺序收集字段；匿名嵌入的结构体递归展开
func collectFields(t reflect.Type, base []int, path map[reflect.Type]bool) []FieldMapping {
	var out []FieldMapping
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := make([]int, len(base)+1)
		copy(index, base)
		index[len(base)] = i

		if embedded, ok := flattenable(sf); ok {
			// 未导出的嵌入指针无法分配，跳过
			if sf.Type.Kind() == reflect.Pointer && !sf.IsExported() {
				continue
			}
			if !path[embedded] {
				path[embedded] = true
				out = append(out, collectFields(embedded, index, path)...)
				delete(path, embedded)
			}
			continue
		}

		if !sf.IsExported() {
			continue
		}
		databaseField, parameter, ok := parseTag(sf)
		if !ok {
			continue
		}
		out = append(out, FieldMapping{
			DatabaseField:    databaseField,
			SQLParameterName: parameter,
			FieldName:        sf.Name,
			Index:            index,
			Type:             sf.Type,
			Nullable:         isNullable(sf.Type),
		})
	}
	return out
}

// flattenable 匿名嵌入的普通结构体（不含 time.Time 与 Scanner 类型）
func flattenable(sf reflect.StructField) (reflect.Type, bool) {
	if !sf.Anonymous || sf.Tag.Get(TagName) == "-" {
		return nil, false
	}
	t := sf.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType || reflect.PointerTo(t).Implements(scannerType) {
		return nil, false
	}
	return t, true
}

// fieldForSet 按路径定位可写字段，途经的 nil 嵌入指针被分配
func fieldForSet(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

// fieldForRead 按路径读取字段；途经 nil 嵌入指针时返回 false
func fieldForRead(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}
