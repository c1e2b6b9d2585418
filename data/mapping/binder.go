package mapping

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/multierr"

	core "dbmap/data/db"
	"dbmap/data/db/dialect"
	"dbmap/errors"
	"dbmap/logging"
)

// BindParameters 将 model 的映射字段绑定为 cmd 的命名参数。
//
// 文本命令只绑定 SQL 中引用到的参数（去掉 :/@ 标记后大小写不敏感比较），
// 未引用的字段静默跳过。
//
// 存储过程命令例外：命令文本只是过程名，扫描不到任何参数引用，
// 因此按声明顺序绑定 model 的全部映射字段，而不是一个也不绑定。
// 过程签名只接受部分字段时，调用方在绑定后用 RemoveParameter 去掉多余参数。
//
// 同名参数被替换。模型请求时先经 OverrideSerialization 转换字段值。
func (m *Mapper) BindParameters(cmd core.ICommand, model any) error {
	if cmd == nil {
		return errors.ArgumentNull("command")
	}
	rv := reflect.ValueOf(model)
	if model == nil || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return errors.ArgumentNull("model")
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errors.ArgumentNull("model")
		}
		rv = rv.Elem()
	}
	if !rv.CanAddr() {
		// 按值传入的模型复制一份，使指针接收者的钩子可用
		copied := reflect.New(rv.Type())
		copied.Elem().Set(rv)
		rv = copied.Elem()
	}

	meta := m.registry.Resolve(rv.Type())

	var hook ISerializationOverridable
	if meta.SerializationOverride {
		hook, _ = rv.Addr().Interface().(ISerializationOverridable)
	}

	referenced := referencedKeys(cmd)
	ctx := context.Background()
	for _, f := range meta.Fields {
		if referenced != nil && !referenced[core.ParameterKey(f.SQLParameterName)] {
			continue
		}

		var value any
		if fv, ok := fieldForRead(rv, f.Index); ok {
			value = fv.Interface()
		}
		if hook != nil && hook.ShouldOverrideSerialization(f.FieldName) {
			value = hook.OverrideSerialization(f.FieldName, value)
		}

		m.logger.Debug(ctx, "bind parameter",
			logging.String("field", f.FieldName),
			logging.String("type", f.Type.String()),
			logging.String("parameter", f.SQLParameterName),
			logging.String("database_field", f.DatabaseField),
		)
		cmd.AddParameter(&core.Parameter{Name: f.SQLParameterName, Value: value, Direction: core.Input})
	}
	return nil
}

// referencedKeys SQL 文本中引用的参数键；存储过程返回 nil 表示不过滤
func referencedKeys(cmd core.ICommand) map[string]bool {
	if cmd.Type() == core.CommandStoredProcedure {
		return nil
	}
	keys := make(map[string]bool)
	for _, ref := range dialect.ScanNamed(cmd.Text()) {
		keys[core.ParameterKey(ref.Name)] = true
	}
	return keys
}

// ParameterNamesFromCommandText SQL 文本中的参数引用（带标记，按出现顺序，可重复）
func ParameterNamesFromCommandText(cmd core.ICommand) []string {
	refs := dialect.ScanNamed(cmd.Text())
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Token())
	}
	return names
}

// ParameterNames 命令参数集合中的参数名
func ParameterNames(cmd core.ICommand) []string {
	params := cmd.Parameters()
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	return names
}

// ParameterOption 参数选项
type ParameterOption func(*core.Parameter)

// WithDirection 设置参数方向
func WithDirection(d core.ParameterDirection) ParameterOption {
	return func(p *core.Parameter) { p.Direction = d }
}

// AddParameter 创建并加入参数，同名参数被替换
func AddParameter(cmd core.ICommand, name string, value any, opts ...ParameterOption) (*core.Parameter, error) {
	if cmd == nil {
		return nil, errors.ArgumentNull("command")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.ArgumentNull("name")
	}
	p := cmd.CreateParameter()
	p.Name = name
	p.Value = value
	for _, opt := range opts {
		opt(p)
	}
	cmd.AddParameter(p)
	return p, nil
}

// AddOutputParameter 加入输出参数，执行后从返回的 Parameter.Value 读取结果
func AddOutputParameter(cmd core.ICommand, name string, opts ...ParameterOption) (*core.Parameter, error) {
	return AddParameter(cmd, name, nil, append([]ParameterOption{WithDirection(core.Output)}, opts...)...)
}

// RemoveParameter 移除参数，返回是否存在
func RemoveParameter(cmd core.ICommand, name string) (bool, error) {
	if cmd == nil {
		return false, errors.ArgumentNull("command")
	}
	if strings.TrimSpace(name) == "" {
		return false, errors.ArgumentNull("name")
	}
	return cmd.RemoveParameter(name), nil
}

// ValidateParameters 检查 SQL 引用的参数与已绑定参数是否一致。
//
// 只检查文本命令；名称去掉标记后大小写不敏感比较并去重。
// 不一致时返回 PARAMETER_MISMATCH，详情 missing_in_command 为 SQL 引用但未绑定的参数，
// missing_in_sql 为已绑定但 SQL 未引用的参数。
func ValidateParameters(cmd core.ICommand) error {
	if cmd == nil {
		return errors.ArgumentNull("command")
	}
	if cmd.Type() != core.CommandText {
		return nil
	}

	sqlNames := distinctNames(ParameterNamesFromCommandText(cmd))
	boundNames := distinctNames(ParameterNames(cmd))

	missingInCommand := difference(sqlNames, boundNames)
	missingInSQL := difference(boundNames, sqlNames)
	if len(missingInCommand) == 0 && len(missingInSQL) == 0 {
		return nil
	}

	var cause error
	if len(missingInCommand) > 0 {
		cause = multierr.Append(cause, fmt.Errorf("parameters missing in command: %s", strings.Join(missingInCommand, ", ")))
	}
	if len(missingInSQL) > 0 {
		cause = multierr.Append(cause, fmt.Errorf("parameters missing in sql: %s", strings.Join(missingInSQL, ", ")))
	}

	return errors.NewErrorWithCause(errors.ErrCodeParameterMismatch,
		"sql parameters do not match bound parameters", cause).
		WithDetails(map[string]any{
			errors.DetailMissingInCommand: missingInCommand,
			errors.DetailMissingInSQL:     missingInSQL,
		})
}

// distinctNames 去掉标记并按比较键去重，保留首次出现的写法
func distinctNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := core.ParameterKey(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimLeft(name, ":@"))
	}
	return out
}

func difference(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, name := range b {
		in[core.ParameterKey(name)] = true
	}
	out := make([]string, 0)
	for _, name := range a {
		if !in[core.ParameterKey(name)] {
			out = append(out, name)
		}
	}
	return out
}
