// Package mapping 在 data/db 的连接/命令/读取器之上完成结果行与 Go 结构体、
// 结构体与命名参数之间的双向映射。
//
// 字段通过 dbfield 标签声明：
//
//	type Album struct {
//	    AlbumId  int64  `dbfield:"AlbumId"`
//	    Title    string `dbfield:"Title"`
//	    ArtistId int64  `dbfield:"ArtistId,param=Artist"`
//	}
//
// 标签规则：
//   - dbfield:"Name"            数据库字段名为 Name，参数名同名
//   - dbfield:"Name,param=P"    参数名为 P
//   - dbfield:""                使用 Go 字段名
//   - dbfield:"-" 或不写标签     忽略该字段
//   - 匿名嵌入的结构体被展开，其字段按声明顺序收集
//
// 可空性：实现 sql.Scanner 的类型（sql.NullInt64、sql.Null[T] 等）以及指针、切片、
// map、接口类型可以接收 NULL；string、数值、bool、time.Time 不可以。
//
// 值转换（水合、GetValue 与 ConvertValue 共用）：
//   - 整数、浮点与 bool 目标接受数值、bool 与文本；整数文本只按十进制解析，
//     "010" 得到 10，"0x1F" 这类带进制前缀的文本是转换失败
//   - 浮点值放入整数字段时必须没有小数部分，超出目标范围即失败
//   - string 目标只接受文本（string、[]byte）；INTEGER 等数值列不会被格式化为文本，
//     读取为 string 时返回 FIELD_TYPE_MISMATCH 或 INVALID_CAST，需要文本时在 SQL 中 CAST
//   - 转换失败从不静默截断或回退为零值
//
// 每个类型的元数据只扫描一次并缓存（滑动过期），之后的水合与绑定不再做反射扫描。
// 所有日期时间值统一转换为 UTC；需要本地时间的模型通过 IHydrationOverridable 自行转换。
package mapping
