package basic

import (
	"context"
	"database/sql"
	stdErrors "errors"

	core "dbmap/data/db"
	"dbmap/data/db/dialect"
	"dbmap/errors"
)

// Tx 事务，委托给 *sql.Tx
//
// 只做透传：提交、回滚由调用方决定。Commit/Rollback 之后 State 变为关闭，
// 再创建的命令执行时返回 INVALID_OPERATION。
type Tx struct {
	tx      *sql.Tx
	dialect dialect.Dialect
	done    bool
}

var _ core.IConnection = (*Tx)(nil)

func (t *Tx) State() core.ConnectionState {
	if t.done {
		return core.StateClosed
	}
	return core.StateOpen
}

// Open 事务在 Begin 时已经打开；结束后不能重新打开
func (t *Tx) Open(ctx context.Context) error {
	if t.done {
		return errors.NewError(errors.ErrCodeInvalidOperation, "transaction already finished")
	}
	return nil
}

// Close 回滚尚未结束的事务
func (t *Tx) Close() error {
	if t.done {
		return nil
	}
	return t.Rollback()
}

func (t *Tx) CreateCommand() core.ICommand {
	return newCommand(t.dialect, func() (execer, error) {
		if t.done {
			return nil, errors.NewError(errors.ErrCodeInvalidOperation, "transaction already finished")
		}
		return t.tx, nil
	})
}

func (t *Tx) DialectName() string { return string(t.dialect.Name()) }

func (t *Tx) Commit() error {
	t.done = true
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	t.done = true
	if err := t.tx.Rollback(); err != nil && !stdErrors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
