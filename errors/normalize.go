package errors

import (
	"context"
	"database/sql"
	stdErrors "errors"
)

// Normalize 将 database/sql 与 context 的常见错误规范化为 AppError。
//
// 注意：
//   - 已经是 IError 的错误原样返回；
//   - 未识别的错误原样返回，由调用方决定是否 Wrap。
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(IError); ok {
		return err
	}

	switch {
	case stdErrors.Is(err, sql.ErrNoRows):
		return WrapError(err, ErrCodeNotFound, "no rows in result set")
	case stdErrors.Is(err, context.DeadlineExceeded):
		return WrapError(err, ErrCodeTimeout, "database call exceeded its deadline")
	case stdErrors.Is(err, sql.ErrConnDone), stdErrors.Is(err, sql.ErrTxDone):
		return WrapError(err, ErrCodeInvalidOperation, "connection or transaction already closed")
	}

	return err
}
