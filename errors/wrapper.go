package errors

import (
	"context"
	"fmt"
	"runtime"

	"dbmap/logging"
)

// WrapWithLog 包装错误并立即记录警告日志
func WrapWithLog(ctx context.Context, err error, code ErrorCode, msg string, fields ...logging.Field) error {
	if err == nil {
		return nil
	}

	_, file, line, _ := runtime.Caller(1)
	wrapped := WrapError(err, code, msg)

	allFields := append([]logging.Field{
		logging.Error(err),
		logging.String("error_code", string(code)),
		logging.String("location", fmt.Sprintf("%s:%d", file, line)),
	}, fields...)
	logging.GetLogger().Warn(ctx, msg, allFields...)

	return wrapped
}

// WrapDatabaseError 包装驱动返回的错误
//
// 已是 IError 的错误（映射层自身的错误）原样返回；
// 可识别的错误先经 Normalize 归类，其余统一归为 DATABASE_ERROR 并记录警告。
func WrapDatabaseError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(IError); ok {
		return err
	}
	if normalized := Normalize(err); normalized != err {
		return normalized
	}

	return WrapWithLog(ctx, err, ErrCodeDatabase,
		fmt.Sprintf("database operation failed: %s", operation),
		logging.String("operation", operation),
	)
}
