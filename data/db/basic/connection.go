// Package basic 基于 database/sql 实现 data/db 的连接、命令与读取器接口。
//
// 调用方必须确保驱动已通过空导入注册（例如 `_ "modernc.org/sqlite"`）。
package basic

import (
	"context"
	"database/sql"
	"time"

	core "dbmap/data/db"
	"dbmap/data/db/dialect"
	"dbmap/errors"
)

// execer 命令执行目标：*sql.Conn 或 *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// OpenDB 打开数据库并做一次可用性检查
func OpenDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = "sqlite"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeDatabase, "open database")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.ErrCodeDatabase, "ping database")
	}
	return db, nil
}

// Connection 在 Open 与 Close 之间独占连接池中的一个 *sql.Conn
type Connection struct {
	db      *sql.DB
	driver  string
	dialect dialect.Dialect
	conn    *sql.Conn
}

var _ core.IConnection = (*Connection)(nil)

// NewConnection 创建处于关闭状态的连接；driver 用于推断方言
func NewConnection(db *sql.DB, driver string) *Connection {
	return &Connection{
		db:      db,
		driver:  driver,
		dialect: dialect.New(driver),
	}
}

func (c *Connection) State() core.ConnectionState {
	if c.conn == nil {
		return core.StateClosed
	}
	return core.StateOpen
}

// Open 从连接池取出一个连接；已打开时不做任何事
func (c *Connection) Open(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return errors.WrapDatabaseError(ctx, err, "open connection")
	}
	c.conn = conn
	return nil
}

// Close 将连接归还连接池；重复调用无副作用
func (c *Connection) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Connection) CreateCommand() core.ICommand {
	return newCommand(c.dialect, func() (execer, error) {
		if c.conn == nil {
			return nil, errors.NewError(errors.ErrCodeInvalidOperation, "connection is not open")
		}
		return c.conn, nil
	})
}

// DialectName 实现 core.IConnection
func (c *Connection) DialectName() string {
	return string(c.dialect.Name())
}

// DB 返回底层连接池
func (c *Connection) DB() *sql.DB { return c.db }

// Begin 在当前连接上开启事务；返回的 Tx 同样满足 core.IConnection，
// 通过它创建的命令都在事务内执行。
func (c *Connection) Begin(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	if c.conn == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidOperation, "connection is not open")
	}
	tx, err := c.conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, errors.WrapDatabaseError(ctx, err, "begin transaction")
	}
	return &Tx{tx: tx, dialect: c.dialect}, nil
}
