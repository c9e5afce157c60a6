package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/repository"
	"github.com/BerniceZTT/carehome_end/utils"
)

// saveTimeout 写审计日志的超时
const saveTimeout = 5 * time.Second

// 需要记录的HTTP方法
var loggedMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// 不需要记录的路径
var excludedPaths = map[string]bool{
	"/api/health":    true,
	"/api/db-status": true,
}

// OperationLoggerMiddleware 写操作审计，记录到 sink
func OperationLoggerMiddleware(sink repository.OperationLogSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !shouldLogOperation(c) {
			c.Next()
			return
		}

		startTime := time.Now()

		blw := &bodyLogWriter{
			body:           bytes.NewBufferString(""),
			ResponseWriter: c.Writer,
		}
		c.Writer = blw

		var requestBody interface{}
		if c.Request.Body != nil {
			raw, err := io.ReadAll(c.Request.Body)
			if err != nil {
				utils.Logger.Error().Err(err).Msg("读取请求体失败")
			} else {
				c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
				requestBody = decodeBody(raw, c.Request.Header.Get("Content-Type"))
			}
		}

		c.Next()

		var errorMessage string
		if len(c.Errors) > 0 {
			errorMessage = c.Errors.String()
		}

		operatorID, operatorName, operatorRole := extractUserInfo(c)
		operationLog := models.OperationLog{
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			InquiryID:     c.Param("id"),
			OperatorID:    operatorID,
			OperatorName:  operatorName,
			OperatorRole:  operatorRole,
			RequestBody:   sanitizeData(requestBody),
			ResponseData:  sanitizeData(decodeBody(blw.body.Bytes(), c.Writer.Header().Get("Content-Type"))),
			StatusCode:    c.Writer.Status(),
			Success:       c.Writer.Status() < http.StatusBadRequest,
			ErrorMessage:  errorMessage,
			OperationTime: startTime,
			ResponseTime:  time.Since(startTime).Milliseconds(),
			IPAddress:     getClientIP(c),
			UserAgent:     c.Request.UserAgent(),
		}

		if err := saveOperationLog(sink, &operationLog); err != nil {
			utils.Logger.Error().Err(err).Msg("保存操作日志失败")
			// 降级为不含请求响应体的最小日志
			minimalLog := operationLog
			minimalLog.RequestBody = nil
			minimalLog.ResponseData = nil
			minimalLog.ErrorMessage = fmt.Sprintf("保存详细日志失败: %v", err)
			if saveErr := saveOperationLog(sink, &minimalLog); saveErr != nil {
				utils.Logger.Error().Err(saveErr).Msg("保存最小日志失败")
			}
		}
	}
}

// shouldLogOperation 检查是否需要记录此操作
func shouldLogOperation(c *gin.Context) bool {
	if excludedPaths[c.Request.URL.Path] {
		return false
	}
	return loggedMethods[c.Request.Method]
}

// extractUserInfo 从上下文中提取用户信息
func extractUserInfo(c *gin.Context) (string, string, string) {
	user, err := utils.GetUser(c)
	if err != nil {
		return "anonymous", "匿名用户", "UNKNOWN"
	}
	return user.ID, user.Username, string(user.Role)
}

func decodeBody(raw []byte, contentType string) interface{} {
	if len(raw) == 0 {
		return nil
	}
	if strings.Contains(contentType, "application/json") {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}

// sanitizeData 清理数据中的敏感信息
func sanitizeData(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		sanitized := make(map[string]interface{}, len(v))
		for k, val := range v {
			switch strings.ToLower(k) {
			case "password", "token", "authorization", "secret", "key", "phone", "email":
				sanitized[k] = "******"
			default:
				sanitized[k] = sanitizeData(val)
			}
		}
		return sanitized
	case []interface{}:
		sanitized := make([]interface{}, len(v))
		for i, val := range v {
			sanitized[i] = sanitizeData(val)
		}
		return sanitized
	default:
		return data
	}
}

// getClientIP 获取客户端IP地址
func getClientIP(c *gin.Context) string {
	if ip := c.Request.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := c.Request.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func saveOperationLog(sink repository.OperationLogSink, log *models.OperationLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return sink.SaveOperationLog(ctx, log)
}
