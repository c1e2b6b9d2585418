// Package errors 提供带错误码的应用错误，以及映射层使用的错误分类。
//
// 映射层的错误分为两类：
//   - 配置错误：模型标注与 SQL 结果/参数不一致（ArgumentNull、FieldNotFound、
//     MappingFieldNotFound、ParameterMismatch），属于调用方代码问题；
//   - 数据错误：数据库返回的值无法放入目标字段（NonNullableNullAssignment、
//     FieldTypeMismatch、InvalidCast）。
//
// 调用方通过 IsConfigurationError / IsDataError 或 errors.Is(err, ErrXxx)
// 区分，而不是匹配错误字符串。
package errors

import (
	stdErrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCode 错误代码类型
type ErrorCode string

const (
	// 通用错误代码
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeTimeout          ErrorCode = "TIMEOUT"
	ErrCodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	// 映射错误代码
	ErrCodeArgumentNull         ErrorCode = "ARGUMENT_NULL"
	ErrCodeFieldNotFound        ErrorCode = "FIELD_NOT_FOUND"
	ErrCodeMappingFieldNotFound ErrorCode = "MAPPING_FIELD_NOT_FOUND"
	ErrCodeNullAssignment       ErrorCode = "NON_NULLABLE_NULL_ASSIGNMENT"
	ErrCodeFieldTypeMismatch    ErrorCode = "FIELD_TYPE_MISMATCH"
	ErrCodeInvalidCast          ErrorCode = "INVALID_CAST"
	ErrCodeParameterMismatch    ErrorCode = "PARAMETER_MISMATCH"

	// 基础设施错误代码
	ErrCodeDuplicate     ErrorCode = "DUPLICATE_ERROR"
	ErrCodeDatabase      ErrorCode = "DATABASE_ERROR"
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
)

// 详情字段键
const (
	DetailDatabaseField    = "database_field"
	DetailField            = "field"
	DetailArgument         = "argument"
	DetailSourceType       = "source_type"
	DetailTargetType       = "target_type"
	DetailMissingInCommand = "missing_in_command"
	DetailMissingInSQL     = "missing_in_sql"
	DetailResource         = "resource"
)

// IError 错误接口
type IError interface {
	error

	Code() ErrorCode
	Message() string
	Cause() error
	Details() map[string]any
	Stack() string
	Is(target error) bool

	Wrap(msg string) IError
	WithDetails(details map[string]any) IError
	WithContext(key string, value any) IError
}

// AppError 应用错误实现
type AppError struct {
	code    ErrorCode
	message string
	cause   error
	details map[string]any
	stack   string
}

// NewError 创建新错误
func NewError(code ErrorCode, message string) IError {
	return &AppError{
		code:    code,
		message: message,
		details: make(map[string]any),
		stack:   captureStack(),
	}
}

// NewErrorWithCause 创建带原因的错误
func NewErrorWithCause(code ErrorCode, message string, cause error) IError {
	return &AppError{
		code:    code,
		message: message,
		cause:   cause,
		details: make(map[string]any),
		stack:   captureStack(),
	}
}

// WrapError 包装错误；err 为 nil 时返回 nil
func WrapError(err error, code ErrorCode, message string) IError {
	if err == nil {
		return nil
	}
	return NewErrorWithCause(code, message, err)
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *AppError) Code() ErrorCode { return e.code }
func (e *AppError) Message() string { return e.message }
func (e *AppError) Cause() error    { return e.cause }
func (e *AppError) Stack() string   { return e.stack }

// Details 获取错误详情
func (e *AppError) Details() map[string]any {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	return e.details
}

// Detail 读取单个详情字段
func (e *AppError) Detail(key string) (any, bool) {
	v, ok := e.details[key]
	return v, ok
}

// Is 同错误码即视为同一类错误；否则继续比较原因链
func (e *AppError) Is(target error) bool {
	if target == nil {
		return false
	}

	if appErr, ok := target.(*AppError); ok {
		return e.code == appErr.code
	}

	if e.cause != nil {
		return stdErrors.Is(e.cause, target)
	}

	return false
}

// Unwrap 支持 errors.Unwrap / errors.As
func (e *AppError) Unwrap() error {
	return e.cause
}

// Wrap 在消息前追加上下文，保留错误码
func (e *AppError) Wrap(msg string) IError {
	return &AppError{
		code:    e.code,
		message: fmt.Sprintf("%s: %s", msg, e.message),
		cause:   e,
		details: copyMap(e.details),
		stack:   captureStack(),
	}
}

// WithDetails 返回追加了详情的副本
func (e *AppError) WithDetails(details map[string]any) IError {
	newDetails := copyMap(e.details)
	for k, v := range details {
		newDetails[k] = v
	}

	return &AppError{
		code:    e.code,
		message: e.message,
		cause:   e.cause,
		details: newDetails,
		stack:   e.stack,
	}
}

// WithContext 返回追加了单个详情的副本
func (e *AppError) WithContext(key string, value any) IError {
	return e.WithDetails(map[string]any{key: value})
}

// 预定义错误变量，用于 errors.Is 按错误码比较
var (
	ErrInternal             = NewError(ErrCodeInternal, "internal error")
	ErrInvalidInput         = NewError(ErrCodeInvalidInput, "invalid input")
	ErrNotFound             = NewError(ErrCodeNotFound, "not found")
	ErrTimeout              = NewError(ErrCodeTimeout, "operation timed out")
	ErrInvalidOperation     = NewError(ErrCodeInvalidOperation, "invalid operation")
	ErrArgumentNull         = NewError(ErrCodeArgumentNull, "required argument is missing")
	ErrFieldNotFound        = NewError(ErrCodeFieldNotFound, "field does not exist in query result")
	ErrMappingFieldNotFound = NewError(ErrCodeMappingFieldNotFound, "mapped database field does not exist in query result")
	ErrNullAssignment       = NewError(ErrCodeNullAssignment, "null assigned to a non-nullable field")
	ErrFieldTypeMismatch    = NewError(ErrCodeFieldTypeMismatch, "database value does not fit field type")
	ErrInvalidCast          = NewError(ErrCodeInvalidCast, "invalid cast")
	ErrParameterMismatch    = NewError(ErrCodeParameterMismatch, "sql parameters do not match bound parameters")
	ErrDuplicate            = NewError(ErrCodeDuplicate, "duplicate key")
	ErrDatabase             = NewError(ErrCodeDatabase, "database error")
	ErrConfiguration        = NewError(ErrCodeConfiguration, "invalid configuration")
)

// ArgumentNull 构造缺少必需参数的错误
func ArgumentNull(argument string) IError {
	return NewError(ErrCodeArgumentNull, fmt.Sprintf("argument '%s' is required", argument)).
		WithContext(DetailArgument, argument)
}

// IsNotFound 检查是否为未找到错误
func IsNotFound(err error) bool {
	return IsErrorCode(err, ErrCodeNotFound)
}

// IsConfigurationError 模型标注/SQL/参数配置不一致导致的错误
func IsConfigurationError(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeArgumentNull, ErrCodeFieldNotFound, ErrCodeMappingFieldNotFound, ErrCodeParameterMismatch:
		return true
	}
	return false
}

// IsDataError 数据库返回值无法放入目标类型导致的错误
func IsDataError(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeNullAssignment, ErrCodeFieldTypeMismatch, ErrCodeInvalidCast:
		return true
	}
	return false
}

// IsErrorCode 检查最外层 AppError 是否为指定错误代码
func IsErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code == code
	}

	return false
}

// GetErrorCode 获取错误代码；非 AppError 视为内部错误
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code
	}

	return ErrCodeInternal
}

// DetailOf 从错误链中第一个 AppError 读取详情
func DetailOf(err error, key string) (any, bool) {
	var appErr *AppError
	if !stdErrors.As(err, &appErr) {
		return nil, false
	}
	return appErr.Detail(key)
}

func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var builder strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))

		if !more {
			break
		}
	}

	return builder.String()
}

func copyMap(original map[string]any) map[string]any {
	copied := make(map[string]any, len(original))
	for k, v := range original {
		copied[k] = v
	}
	return copied
}
