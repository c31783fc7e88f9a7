// Package apperror 定义全项目唯一的业务错误类型，handler层的sendErrorResponse负责把它翻译成统一响应
package apperror

import (
	"errors"
	"net/http"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL的 "Duplicate entry" 错误号
const mysqlDuplicateEntry = 1062

// Error 携带HTTP状态码、给用户看的信息，以及可选的细节列表
type Error struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *Error) Error() string {
	return e.Message
}

func New(code int, message string, details ...string) *Error {
	if details == nil {
		details = []string{}
	}
	return &Error{StatusCode: code, Message: message, Errors: details}
}

func BadRequest(message string, details ...string) *Error {
	return New(http.StatusBadRequest, message, details...)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// IsDuplicateKey 用errors.As来检查错误的“根”是不是一个MySQL 1062
func IsDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// From 把任意错误归一成*Error：1、已经是*Error原样返回 2、记录不存在→404 3、唯一键冲突→409 4、其余一律500
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("资源不存在")
	case IsDuplicateKey(err):
		return Conflict("资源已存在")
	default:
		return Internal("服务器内部错误")
	}
}
