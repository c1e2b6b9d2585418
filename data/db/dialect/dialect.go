package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"dbmap/errors"
)

// Name 标准化的数据库方言名称
type Name string

const (
	NameMySQL     Name = "mysql"
	NameSQLite    Name = "sqlite"
	NamePostgres  Name = "postgres"
	NameSQLServer Name = "sqlserver"
	NameOracle    Name = "oracle"
	NameUnknown   Name = ""
)

// Placeholder 位置参数占位符风格
type Placeholder int

const (
	PlaceholderQuestion Placeholder = iota // ?
	PlaceholderDollar                      // $1, $2 ...
	PlaceholderAtP                         // @p1, @p2 ...
	PlaceholderColonNum                    // :1, :2 ...
)

// Dialect 表示当前数据库的方言能力
//
// 只抽象映射层实际用到的能力：
//   - 占位符风格与命名参数改写（BindNamed）
//   - 存储过程调用语句（ProcedureCall）
//   - 唯一键冲突错误识别（IsUniqueViolation）
type Dialect struct {
	name Name
}

// New 根据驱动名或方言名构造方言（大小写不敏感）
func New(name string) Dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return Dialect{name: NameMySQL}
	case "sqlite", "sqlite3":
		return Dialect{name: NameSQLite}
	case "postgres", "postgresql", "pgx", "pg":
		return Dialect{name: NamePostgres}
	case "sqlserver", "mssql":
		return Dialect{name: NameSQLServer}
	case "oracle", "godror", "goracle":
		return Dialect{name: NameOracle}
	default:
		return Dialect{name: NameUnknown}
	}
}

// Name 返回标准化方言名
func (d Dialect) Name() Name {
	return d.name
}

// Placeholder 返回方言的占位符风格；未知方言使用 ?
func (d Dialect) Placeholder() Placeholder {
	switch d.name {
	case NamePostgres:
		return PlaceholderDollar
	case NameSQLServer:
		return PlaceholderAtP
	case NameOracle:
		return PlaceholderColonNum
	default:
		return PlaceholderQuestion
	}
}

// placeholder 第 n 个（从 1 开始）位置参数的文本
func (d Dialect) placeholder(n int) string {
	switch d.Placeholder() {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(n)
	case PlaceholderAtP:
		return "@p" + strconv.Itoa(n)
	case PlaceholderColonNum:
		return ":" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// ProcedureCall 生成调用存储过程的语句，参数按位置传入。
//
//	mysql/postgres  CALL name(?, ?)
//	sqlserver       EXEC name @p1, @p2
//	oracle          BEGIN name(:1, :2); END;
//
// SQLite 没有存储过程，返回 INVALID_OPERATION。
func (d Dialect) ProcedureCall(name string, argc int) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.ArgumentNull("procedure")
	}

	args := make([]string, argc)
	for i := range args {
		args[i] = d.placeholder(i + 1)
	}

	switch d.name {
	case NameSQLite:
		return "", errors.NewError(errors.ErrCodeInvalidOperation,
			fmt.Sprintf("stored procedure %q: sqlite does not support stored procedures", name))
	case NameSQLServer:
		if argc == 0 {
			return "EXEC " + name, nil
		}
		return "EXEC " + name + " " + strings.Join(args, ", "), nil
	case NameOracle:
		return "BEGIN " + name + "(" + strings.Join(args, ", ") + "); END;", nil
	default:
		return "CALL " + name + "(" + strings.Join(args, ", ") + ")", nil
	}
}

// IsUniqueViolation 判断错误是否为唯一键/主键冲突
//
// 使用错误消息关键字匹配，覆盖常见数据库的典型格式：
//   - MySQL: "Duplicate entry" (1062)
//   - SQLite: "UNIQUE constraint failed"
//   - Postgres: "duplicate key value violates unique constraint" (23505)
//   - SQL Server: "Violation of UNIQUE KEY constraint" / "Cannot insert duplicate key" (2627, 2601)
//   - Oracle: "ORA-00001"
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch d.name {
	case NameMySQL:
		return strings.Contains(msg, "duplicate entry") ||
			strings.Contains(msg, "duplicate key")
	case NameSQLite:
		return strings.Contains(msg, "unique constraint failed")
	case NamePostgres:
		return strings.Contains(msg, "duplicate key") ||
			strings.Contains(msg, "unique constraint")
	case NameSQLServer:
		return strings.Contains(msg, "violation of unique key constraint") ||
			strings.Contains(msg, "violation of primary key constraint") ||
			strings.Contains(msg, "cannot insert duplicate key")
	case NameOracle:
		return strings.Contains(msg, "ora-00001")
	default:
		return strings.Contains(msg, "duplicate key") ||
			strings.Contains(msg, "unique constraint")
	}
}
