// Package query 在 data/db 连接之上组合命令创建、参数绑定、执行与结果映射。
//
// 执行流程：检查连接已打开 → 创建文本命令 → commandFn 配置命令（绑定参数等）
// → 可选的参数校验 → 执行 → 映射结果。每次执行分配一个命令 ID，
// 以 Debug 级别记录耗时。
package query

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	core "dbmap/data/db"
	"dbmap/data/mapping"
	"dbmap/data/resource"
	"dbmap/errors"
	"dbmap/logging"
)

// CommandFunc 在执行前配置命令
type CommandFunc func(cmd core.ICommand) error

// ReaderFunc 消费结果集；返回后 reader 被关闭
type ReaderFunc func(r core.IReader) error

// Executor 执行 SQL 文本与 SQL 资源
type Executor struct {
	mapper   *mapping.Mapper
	loader   resource.ILoader
	logger   logging.Logger
	metrics  *Metrics
	validate bool
}

// Option Executor 选项
type Option func(*Executor)

// WithMapper 设置映射器
func WithMapper(m *mapping.Mapper) Option {
	return func(e *Executor) {
		if m != nil {
			e.mapper = m
		}
	}
}

// WithLoader 设置 SQL 资源加载器
func WithLoader(l resource.ILoader) Option {
	return func(e *Executor) { e.loader = l }
}

// WithLogger 设置日志
func WithLogger(l logging.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics 记录执行次数与耗时
func WithMetrics(m *Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithParameterValidation 执行前调用 mapping.ValidateParameters，用于开发期发现参数遗漏
func WithParameterValidation(enabled bool) Option {
	return func(e *Executor) { e.validate = enabled }
}

// NewExecutor 创建执行器
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.GetLogger().WithFields(logging.Component("query"))
	}
	if e.mapper == nil {
		e.mapper = mapping.NewMapper(mapping.WithLogger(e.logger))
	}
	return e
}

// Mapper 返回使用中的映射器
func (e *Executor) Mapper() *mapping.Mapper { return e.mapper }

// CommandWithSQL 创建文本命令
func (e *Executor) CommandWithSQL(conn core.IConnection, sql string) (core.ICommand, error) {
	if conn == nil {
		return nil, errors.ArgumentNull("connection")
	}
	if strings.TrimSpace(sql) == "" {
		return nil, errors.ArgumentNull("sql")
	}
	cmd := conn.CreateCommand()
	cmd.SetType(core.CommandText)
	cmd.SetText(sql)
	return cmd, nil
}

// CommandWithStoredProcedure 创建存储过程命令
func (e *Executor) CommandWithStoredProcedure(conn core.IConnection, name string) (core.ICommand, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.ArgumentNull("storedProcedure")
	}
	cmd, err := e.CommandWithSQL(conn, name)
	if err != nil {
		return nil, err
	}
	cmd.SetType(core.CommandStoredProcedure)
	return cmd, nil
}

// CommandWithResource 以资源中的 SQL 创建文本命令
func (e *Executor) CommandWithResource(ctx context.Context, conn core.IConnection, name string) (core.ICommand, error) {
	sql, err := e.LoadResource(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.CommandWithSQL(conn, sql)
}

// LoadResource 通过加载器读取 SQL 资源
func (e *Executor) LoadResource(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.ArgumentNull("resource")
	}
	if e.loader == nil {
		return "", errors.NewError(errors.ErrCodeInvalidOperation, "no sql resource loader configured").
			WithContext(errors.DetailResource, name)
	}
	return e.loader.Load(ctx, name)
}

// ExecuteQuery 执行查询并把结果集交给 readerFn
func (e *Executor) ExecuteQuery(ctx context.Context, conn core.IConnection, sql string, commandFn CommandFunc, readerFn ReaderFunc) error {
	if readerFn == nil {
		return errors.ArgumentNull("readerCallback")
	}
	return e.run(ctx, conn, sql, commandFn, "execute reader", func(cmd core.ICommand) error {
		r, err := cmd.ExecuteReader(ctx)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "execute reader")
		}
		defer r.Close()

		if err := readerFn(r); err != nil {
			return err
		}
		return r.Err()
	})
}

// ExecuteQueryResource 同 ExecuteQuery，SQL 来自资源
func (e *Executor) ExecuteQueryResource(ctx context.Context, conn core.IConnection, name string, commandFn CommandFunc, readerFn ReaderFunc) error {
	sql, err := e.LoadResource(ctx, name)
	if err != nil {
		return err
	}
	return e.ExecuteQuery(ctx, conn, sql, commandFn, readerFn)
}

// ExecuteNonQuery 执行语句，返回受影响行数
func (e *Executor) ExecuteNonQuery(ctx context.Context, conn core.IConnection, sql string, commandFn CommandFunc) (int64, error) {
	var affected int64
	err := e.run(ctx, conn, sql, commandFn, "execute non-query", func(cmd core.ICommand) error {
		n, err := cmd.ExecuteNonQuery(ctx)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "execute non-query")
		}
		affected = n
		return nil
	})
	return affected, err
}

// ExecuteNonQueryResource 同 ExecuteNonQuery，SQL 来自资源
func (e *Executor) ExecuteNonQueryResource(ctx context.Context, conn core.IConnection, name string, commandFn CommandFunc) (int64, error) {
	sql, err := e.LoadResource(ctx, name)
	if err != nil {
		return 0, err
	}
	return e.ExecuteNonQuery(ctx, conn, sql, commandFn)
}

// ExecuteScalar 返回第一行第一列；无结果行时返回 nil
func (e *Executor) ExecuteScalar(ctx context.Context, conn core.IConnection, sql string, commandFn CommandFunc) (any, error) {
	var value any
	err := e.run(ctx, conn, sql, commandFn, "execute scalar", func(cmd core.ICommand) error {
		v, err := cmd.ExecuteScalar(ctx)
		if err != nil {
			return errors.WrapDatabaseError(ctx, err, "execute scalar")
		}
		value = v
		return nil
	})
	return value, err
}

// ExecuteScalarResource 同 ExecuteScalar，SQL 来自资源
func (e *Executor) ExecuteScalarResource(ctx context.Context, conn core.IConnection, name string, commandFn CommandFunc) (any, error) {
	sql, err := e.LoadResource(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.ExecuteScalar(ctx, conn, sql, commandFn)
}

// ExecuteNonQueryForObject 以 model 的映射字段绑定参数后执行语句
func (e *Executor) ExecuteNonQueryForObject(ctx context.Context, conn core.IConnection, sql string, model any) (int64, error) {
	if isNil(model) {
		return 0, errors.ArgumentNull("model")
	}
	return e.ExecuteNonQuery(ctx, conn, sql, e.bind(model))
}

// ExecuteNonQueryResourceForObject 同 ExecuteNonQueryForObject，SQL 来自资源
func (e *Executor) ExecuteNonQueryResourceForObject(ctx context.Context, conn core.IConnection, name string, model any) (int64, error) {
	if isNil(model) {
		return 0, errors.ArgumentNull("model")
	}
	sql, err := e.LoadResource(ctx, name)
	if err != nil {
		return 0, err
	}
	return e.ExecuteNonQueryForObject(ctx, conn, sql, model)
}

// Bind 返回绑定 model 参数的 CommandFunc，可作为其他执行方法的 commandFn
func (e *Executor) Bind(model any) CommandFunc {
	return e.bind(model)
}

func (e *Executor) bind(model any) CommandFunc {
	return func(cmd core.ICommand) error {
		return e.mapper.BindParameters(cmd, model)
	}
}

// run 创建命令、配置、校验并执行；命令在返回前关闭
func (e *Executor) run(ctx context.Context, conn core.IConnection, sql string, commandFn CommandFunc, operation string, exec func(core.ICommand) error) error {
	if conn == nil {
		return errors.ArgumentNull("connection")
	}
	if conn.State() != core.StateOpen {
		return errors.NewError(errors.ErrCodeInvalidOperation, "connection must be open to "+operation)
	}

	cmd, err := e.CommandWithSQL(conn, sql)
	if err != nil {
		return err
	}
	defer cmd.Close()

	if commandFn != nil {
		if err := commandFn(cmd); err != nil {
			return err
		}
	}
	if e.validate {
		if err := mapping.ValidateParameters(cmd); err != nil {
			return err
		}
	}

	id := uuid.NewString()
	start := time.Now()
	err = exec(cmd)
	elapsed := time.Since(start)

	if e.metrics != nil {
		e.metrics.observe(operation, elapsed, err)
	}
	fields := []logging.Field{
		logging.String("command_id", id),
		logging.String("operation", operation),
		logging.Int("parameters", len(cmd.Parameters())),
		logging.Duration("duration", elapsed),
	}
	if err != nil {
		fields = append(fields, logging.Error(err))
	}
	e.logger.Debug(ctx, "command executed", fields...)
	return err
}
