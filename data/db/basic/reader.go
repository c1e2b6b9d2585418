package basic

import (
	"database/sql"
	"strings"

	core "dbmap/data/db"
	"dbmap/errors"
)

// Reader 包装 *sql.Rows，每次 Next 把整行读入 []any
type Reader struct {
	rows     *sql.Rows
	columns  []string
	ordinals map[string]int // 小写列名 -> 序号，重名时取第一个
	values   []any
	err      error
}

var _ core.IReader = (*Reader)(nil)

func newReader(rows *sql.Rows) (*Reader, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	ordinals := make(map[string]int, len(columns))
	for i, name := range columns {
		key := strings.ToLower(name)
		if _, exists := ordinals[key]; !exists {
			ordinals[key] = i
		}
	}
	return &Reader{rows: rows, columns: columns, ordinals: ordinals}, nil
}

func (r *Reader) Next() bool {
	if r.err != nil || !r.rows.Next() {
		r.values = nil
		return false
	}

	values := make([]any, len(r.columns))
	dest := make([]any, len(r.columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := r.rows.Scan(dest...); err != nil {
		r.err = err
		r.values = nil
		return false
	}
	r.values = values
	return true
}

func (r *Reader) Err() error {
	err := r.err
	if err == nil {
		err = r.rows.Err()
	}
	if err == nil {
		return nil
	}
	if normalized := errors.Normalize(err); normalized != err {
		return normalized
	}
	return errors.WrapError(err, errors.ErrCodeDatabase, "read rows")
}

func (r *Reader) Close() error { return r.rows.Close() }

func (r *Reader) FieldCount() int { return len(r.columns) }

func (r *Reader) FieldName(i int) string {
	if i < 0 || i >= len(r.columns) {
		return ""
	}
	return r.columns[i]
}

func (r *Reader) Ordinal(name string) (int, bool) {
	i, ok := r.ordinals[strings.ToLower(name)]
	return i, ok
}

// Value 当前行第 i 列的驱动值；NULL 为 nil
func (r *Reader) Value(i int) any {
	if i < 0 || i >= len(r.values) {
		return nil
	}
	return r.values[i]
}

func (r *Reader) IsNull(i int) bool {
	return r.Value(i) == nil
}
