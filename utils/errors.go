package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/carehome_end/pipeline"
)

// ApiError 自定义API错误
type ApiError struct {
	StatusCode int
	Message    string
	ErrorCode  string
	Field      string // 参数校验错误对应的字段
}

// Error 实现error接口
func (e *ApiError) Error() string {
	return e.Message
}

// NewApiError 创建API错误
func NewApiError(message string, statusCode int, errorCode string) *ApiError {
	return &ApiError{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
	}
}

// CreateNotFoundError 创建资源不存在错误
func CreateNotFoundError(resource string) *ApiError {
	return NewApiError(resource+"不存在", http.StatusNotFound, "RESOURCE_NOT_FOUND")
}

// CreateUnauthorizedError 创建未授权错误
func CreateUnauthorizedError() *ApiError {
	return NewApiError("未授权访问", http.StatusUnauthorized, "UNAUTHORIZED")
}

// CreateForbiddenError 创建权限不足错误
func CreateForbiddenError() *ApiError {
	return NewApiError("权限不足", http.StatusForbidden, "FORBIDDEN")
}

// CreateBadRequestError 创建错误请求错误
func CreateBadRequestError(message string) *ApiError {
	return NewApiError(message, http.StatusBadRequest, "BAD_REQUEST")
}

// CreateConflictError 创建状态冲突错误
func CreateConflictError(message, errorCode string) *ApiError {
	return NewApiError(message, http.StatusConflict, errorCode)
}

// CreateValidationError 创建参数校验错误
func CreateValidationError(field, message string) *ApiError {
	e := NewApiError(message, http.StatusBadRequest, "VALIDATION_ERROR")
	e.Field = field
	return e
}

// HandleError 处理错误并返回适当的响应
func HandleError(c *gin.Context, err error) {
	if c == nil || err == nil {
		return
	}

	var vErr *pipeline.ValidationError
	if errors.As(err, &vErr) {
		err = CreateValidationError(vErr.Field, vErr.Message)
	}

	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= http.StatusInternalServerError {
			LogError(err, map[string]interface{}{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}, "API错误")
		} else {
			Logger.Warn().
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("code", apiErr.ErrorCode).
				Msg(apiErr.Message)
		}

		response := gin.H{"success": false, "error": apiErr.Message}
		if apiErr.ErrorCode != "" {
			response["code"] = apiErr.ErrorCode
		}
		if apiErr.Field != "" {
			response["field"] = apiErr.Field
		}
		c.AbortWithStatusJSON(apiErr.StatusCode, response)
		return
	}

	// 其他未预期的错误
	LogError(err, map[string]interface{}{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}, "API错误")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, data interface{}, message string, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := gin.H{"success": true}
	if data != nil {
		response["data"] = data
	}
	if message != "" {
		response["message"] = message
	}

	c.JSON(code, response)
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, message string, statusCode int) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}
