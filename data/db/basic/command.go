package basic

import (
	"context"
	"database/sql"
	"strings"

	core "dbmap/data/db"
	"dbmap/data/db/dialect"
	"dbmap/errors"
)

// Command 基于 database/sql 的命令
//
// 文本命令中的 :name/@name 在执行前按方言改写为位置占位符；
// 存储过程按参数加入顺序传参。
type Command struct {
	text    string
	typ     core.CommandType
	params  []*core.Parameter
	dialect dialect.Dialect
	target  func() (execer, error)
	closed  bool
}

var _ core.ICommand = (*Command)(nil)

func newCommand(d dialect.Dialect, target func() (execer, error)) *Command {
	return &Command{dialect: d, target: target}
}

func (c *Command) Text() string               { return c.text }
func (c *Command) SetText(text string)        { c.text = text }
func (c *Command) Type() core.CommandType     { return c.typ }
func (c *Command) SetType(t core.CommandType) { c.typ = t }

// CreateParameter 创建输入参数，需再通过 AddParameter 加入命令
func (c *Command) CreateParameter() *core.Parameter {
	return &core.Parameter{Direction: core.Input}
}

// AddParameter 同名参数（去掉标记后大小写不敏感）原位替换，否则追加
func (c *Command) AddParameter(p *core.Parameter) {
	if p == nil {
		return
	}
	key := core.ParameterKey(p.Name)
	for i, existing := range c.params {
		if core.ParameterKey(existing.Name) == key {
			c.params[i] = p
			return
		}
	}
	c.params = append(c.params, p)
}

// Parameters 返回参数列表副本
func (c *Command) Parameters() []*core.Parameter {
	out := make([]*core.Parameter, len(c.params))
	copy(out, c.params)
	return out
}

func (c *Command) Parameter(name string) (*core.Parameter, bool) {
	key := core.ParameterKey(name)
	for _, p := range c.params {
		if core.ParameterKey(p.Name) == key {
			return p, true
		}
	}
	return nil, false
}

func (c *Command) RemoveParameter(name string) bool {
	key := core.ParameterKey(name)
	for i, p := range c.params {
		if core.ParameterKey(p.Name) == key {
			c.params = append(c.params[:i], c.params[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Command) Close() error {
	c.closed = true
	c.params = nil
	return nil
}

func (c *Command) ExecuteReader(ctx context.Context) (core.IReader, error) {
	ex, query, args, err := c.prepare()
	if err != nil {
		return nil, err
	}
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, c.wrap(ctx, err, "execute reader")
	}
	reader, err := newReader(rows)
	if err != nil {
		_ = rows.Close()
		return nil, c.wrap(ctx, err, "read columns")
	}
	return reader, nil
}

func (c *Command) ExecuteNonQuery(ctx context.Context) (int64, error) {
	ex, query, args, err := c.prepare()
	if err != nil {
		return 0, err
	}
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, c.wrap(ctx, err, "execute non-query")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, c.wrap(ctx, err, "rows affected")
	}
	return affected, nil
}

func (c *Command) ExecuteScalar(ctx context.Context) (any, error) {
	reader, err := c.ExecuteReader(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	if !reader.Next() {
		if err := reader.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if reader.FieldCount() == 0 {
		return nil, nil
	}
	return reader.Value(0), nil
}

// prepare 解析执行目标并渲染最终 SQL 与参数
func (c *Command) prepare() (execer, string, []any, error) {
	if c.closed {
		return nil, "", nil, errors.NewError(errors.ErrCodeInvalidOperation, "command is closed")
	}
	if strings.TrimSpace(c.text) == "" {
		return nil, "", nil, errors.ArgumentNull("command text")
	}
	ex, err := c.target()
	if err != nil {
		return nil, "", nil, err
	}

	if c.typ == core.CommandStoredProcedure {
		query, err := c.dialect.ProcedureCall(c.text, len(c.params))
		if err != nil {
			return nil, "", nil, err
		}
		args := make([]any, len(c.params))
		for i, p := range c.params {
			args[i] = argument(p)
		}
		return ex, query, args, nil
	}

	query, args, err := c.dialect.BindNamed(c.text, func(name string) (any, bool) {
		p, ok := c.Parameter(name)
		if !ok {
			return nil, false
		}
		return argument(p), true
	})
	if err != nil {
		return nil, "", nil, err
	}
	return ex, query, args, nil
}

// argument 输出参数通过 sql.Out 回写到 Parameter.Value
func argument(p *core.Parameter) any {
	switch p.Direction {
	case core.Output:
		return sql.Out{Dest: &p.Value}
	case core.InputOutput:
		return sql.Out{Dest: &p.Value, In: true}
	default:
		return p.Value
	}
}

func (c *Command) wrap(ctx context.Context, err error, operation string) error {
	if c.dialect.IsUniqueViolation(err) {
		return errors.WrapWithLog(ctx, err, errors.ErrCodeDuplicate, "unique constraint violated")
	}
	return errors.WrapDatabaseError(ctx, err, operation)
}
