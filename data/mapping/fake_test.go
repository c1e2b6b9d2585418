package mapping

import (
	"context"
	"strings"

	core "dbmap/data/db"
)

// fakeReader 内存结果集
type fakeReader struct {
	columns []string
	rows    [][]any
	pos     int
	err     error
}

func newFakeReader(columns []string, rows ...[]any) *fakeReader {
	return &fakeReader{columns: columns, rows: rows, pos: -1}
}

// row 构造只有一行且已定位到该行的 reader
func row(columns []string, values ...any) *fakeReader {
	r := newFakeReader(columns, values)
	r.Next()
	return r
}

func (r *fakeReader) Next() bool {
	if r.pos+1 >= len(r.rows) {
		r.pos = len(r.rows)
		return false
	}
	r.pos++
	return true
}

func (r *fakeReader) Err() error             { return r.err }
func (r *fakeReader) Close() error           { return nil }
func (r *fakeReader) FieldCount() int        { return len(r.columns) }
func (r *fakeReader) FieldName(i int) string { return r.columns[i] }

func (r *fakeReader) Ordinal(name string) (int, bool) {
	for i, c := range r.columns {
		if strings.EqualFold(c, name) {
			return i, true
		}
	}
	return 0, false
}

func (r *fakeReader) Value(i int) any  { return r.rows[r.pos][i] }
func (r *fakeReader) IsNull(i int) bool { return r.Value(i) == nil }

// fakeCommand 只记录文本与参数的命令
type fakeCommand struct {
	text   string
	typ    core.CommandType
	params []*core.Parameter
}

func newFakeCommand(text string) *fakeCommand { return &fakeCommand{text: text} }

func (c *fakeCommand) Text() string               { return c.text }
func (c *fakeCommand) SetText(text string)        { c.text = text }
func (c *fakeCommand) Type() core.CommandType     { return c.typ }
func (c *fakeCommand) SetType(t core.CommandType) { c.typ = t }

func (c *fakeCommand) CreateParameter() *core.Parameter { return &core.Parameter{} }

func (c *fakeCommand) AddParameter(p *core.Parameter) {
	for i, existing := range c.params {
		if core.ParameterKey(existing.Name) == core.ParameterKey(p.Name) {
			c.params[i] = p
			return
		}
	}
	c.params = append(c.params, p)
}

func (c *fakeCommand) Parameters() []*core.Parameter { return c.params }

func (c *fakeCommand) Parameter(name string) (*core.Parameter, bool) {
	for _, p := range c.params {
		if core.ParameterKey(p.Name) == core.ParameterKey(name) {
			return p, true
		}
	}
	return nil, false
}

func (c *fakeCommand) RemoveParameter(name string) bool {
	for i, p := range c.params {
		if core.ParameterKey(p.Name) == core.ParameterKey(name) {
			c.params = append(c.params[:i], c.params[i+1:]...)
			return true
		}
	}
	return false
}

func (c *fakeCommand) ExecuteReader(context.Context) (core.IReader, error) { return nil, nil }
func (c *fakeCommand) ExecuteNonQuery(context.Context) (int64, error)      { return 0, nil }
func (c *fakeCommand) ExecuteScalar(context.Context) (any, error)          { return nil, nil }
func (c *fakeCommand) Close() error                                        { return nil }

func (c *fakeCommand) value(name string) any {
	p, ok := c.Parameter(name)
	if !ok {
		return nil
	}
	return p.Value
}
