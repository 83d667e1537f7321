package errors

import "errors"

// Kind 业务错误分类，Handler 层据此映射 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvalidState
	KindForbidden
)

// Error 带分类与业务码的错误
type Error struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *Error) Error() string { return e.Message }

// New 创建业务错误（通常作为包级哨兵变量）
func New(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// KindOf 返回错误链中第一个业务错误的分类，非业务错误视为 KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As 提取错误链中的业务错误
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = New(KindConflict, 10009, "Record was modified by another request, please reload and retry")
