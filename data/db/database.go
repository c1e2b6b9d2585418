// Package db 定义映射层依赖的数据访问能力接口：连接、命令、读取器与参数。
//
// 映射层只依赖这些接口，不依赖具体驱动；data/db/basic 提供基于
// database/sql 的实现，测试中也可以使用内存实现。
package db

import (
	"context"
	"strings"
)

// ConnectionState 连接状态
type ConnectionState int

const (
	StateClosed ConnectionState = iota
	StateOpen
)

func (s ConnectionState) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// CommandType 命令类型
type CommandType int

const (
	// CommandText 普通 SQL 文本，命名参数写作 :name 或 @name
	CommandText CommandType = iota
	// CommandStoredProcedure 文本为存储过程名
	CommandStoredProcedure
)

func (t CommandType) String() string {
	if t == CommandStoredProcedure {
		return "stored_procedure"
	}
	return "text"
}

// ParameterDirection 参数方向
type ParameterDirection int

const (
	Input ParameterDirection = iota
	Output
	InputOutput
)

// Parameter 命名参数
//
// Name 不含前缀标记（":"、"@"）时与含标记时等价，比较大小写不敏感。
// Output/InputOutput 参数执行后 Value 被回写。
type Parameter struct {
	Name      string
	Value     any
	Direction ParameterDirection
}

// IReader 只进的结果集读取器
//
// Value/IsNull 仅在 Next 返回 true 之后有效。
type IReader interface {
	Next() bool
	Err() error
	Close() error

	FieldCount() int
	FieldName(i int) string
	// Ordinal 按列名查找序号，大小写不敏感
	Ordinal(name string) (int, bool)
	Value(i int) any
	IsNull(i int) bool
}

// ICommand 可执行命令
type ICommand interface {
	Text() string
	SetText(text string)
	Type() CommandType
	SetType(t CommandType)

	// CreateParameter 创建未加入命令的参数
	CreateParameter() *Parameter
	// AddParameter 加入参数；同名参数（大小写不敏感）被替换
	AddParameter(p *Parameter)
	Parameters() []*Parameter
	Parameter(name string) (*Parameter, bool)
	RemoveParameter(name string) bool

	ExecuteReader(ctx context.Context) (IReader, error)
	ExecuteNonQuery(ctx context.Context) (int64, error)
	// ExecuteScalar 返回首行首列；无行时返回 nil, nil
	ExecuteScalar(ctx context.Context) (any, error)

	Close() error
}

// IConnection 数据库连接
type IConnection interface {
	State() ConnectionState
	Open(ctx context.Context) error
	Close() error
	CreateCommand() ICommand

	// DialectName 返回底层方言名（mysql、sqlite、postgres...）
	DialectName() string
}

// ParameterKey 参数名的比较键：去掉前缀标记并转为小写
func ParameterKey(name string) string {
	for len(name) > 0 && (name[0] == ':' || name[0] == '@') {
		name = name[1:]
	}
	return strings.ToLower(name)
}
