package mapping

import (
	"reflect"
	"strings"
)

// TagName 字段映射使用的结构体标签名
const TagName = "dbfield"

// parseTag 解析 dbfield 标签；未标注或标注为 "-" 时 ok 为 false
func parseTag(sf reflect.StructField) (databaseField, parameter string, ok bool) {
	raw, tagged := sf.Tag.Lookup(TagName)
	if !tagged || raw == "-" {
		return "", "", false
	}

	name, opts, _ := strings.Cut(raw, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		name = sf.Name
	}

	parameter = name
	for _, opt := range strings.Split(opts, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(opt), "=")
		if found && key == "param" && strings.TrimSpace(value) != "" {
			parameter = strings.TrimSpace(value)
		}
	}
	return name, parameter, true
}
