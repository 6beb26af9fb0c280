package errors

import "errors"

// ── 错误分类 ──
//
// 所有业务错误都归属于以下某一类，Handler 层据此决定 HTTP 状态码，
// 调用方据此判断是否可以重试（仅 ErrStorage 可重试）。

var (
	ErrValidation      = errors.New("参数校验失败")
	ErrNotFound        = errors.New("资源不存在")
	ErrUnauthenticated = errors.New("未认证")
	ErrLogic           = errors.New("操作违反业务约束")
	ErrStorage         = errors.New("存储服务不可用")
)

// Kind 机器可读的错误类别
const (
	KindValidation      = "validation"
	KindNotFound        = "not_found"
	KindUnauthenticated = "unauthenticated"
	KindLogic           = "logic"
	KindStorage         = "storage"
	KindInternal        = "internal"
)

// Error 带类别的业务错误
type Error struct {
	kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is 使 errors.Is(err, ErrNotFound) 等类别判断成立
func (e *Error) Is(target error) bool {
	return target == e.kind
}

func (e *Error) Unwrap() error { return e.Err }

// Validation 创建 ValidationError
func Validation(msg string) *Error { return &Error{kind: ErrValidation, Message: msg} }

// NotFound 创建 NotFoundError
func NotFound(msg string) *Error { return &Error{kind: ErrNotFound, Message: msg} }

// Logic 创建 LogicError
func Logic(msg string) *Error { return &Error{kind: ErrLogic, Message: msg} }

// Storage 包装存储层错误
func Storage(err error) *Error {
	return &Error{kind: ErrStorage, Message: ErrStorage.Error(), Err: err}
}

// KindOf 返回错误的机器可读类别
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrLogic):
		return KindLogic
	case errors.Is(err, ErrStorage):
		return KindStorage
	default:
		return KindInternal
	}
}

// Retryable 仅存储层错误允许调用方重试
func Retryable(err error) bool {
	return errors.Is(err, ErrStorage)
}
