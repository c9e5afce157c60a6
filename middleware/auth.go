package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/carehome_end/utils"
)

// AuthMiddleware 认证中间件，解析 Bearer token 并把 *utils.LoginUser 放入上下文
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		utils.Logger.Debug().
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Str("authorization", getShortAuthHeader(authHeader)).
			Msg("验证请求")

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if !strings.HasPrefix(authHeader, "Bearer ") || token == "" {
			// EventSource 无法设置请求头，事件流允许通过查询参数传递 token
			token = c.Query("access_token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "未授权访问",
				"code":    "MISSING_TOKEN",
			})
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.Logger.Warn().Err(err).Msg("Token验证失败")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "无效的token: " + err.Error(),
				"code":    "INVALID_TOKEN",
			})
			return
		}

		c.Set(utils.ContextUserKey, claims)
		user, err := utils.GetUser(c)
		if err != nil {
			utils.Logger.Warn().Err(err).Msg("Token负载无效")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Token缺少必要字段",
				"code":    "INVALID_TOKEN",
			})
			return
		}
		c.Set(utils.ContextUserKey, user)

		utils.Logger.Debug().
			Str("username", user.Username).
			Str("role", string(user.Role)).
			Msg("验证成功")

		c.Next()
	}
}

// PermissionMiddleware 按角色检查资源操作权限
func PermissionMiddleware(resource string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := utils.GetUser(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "用户未认证",
				"code":    "UNAUTHENTICATED",
			})
			return
		}

		if !utils.HasPermission(user.Role, resource, action) {
			utils.Logger.Info().
				Str("username", user.Username).
				Str("role", string(user.Role)).
				Str("resource", resource).
				Str("action", action).
				Msg("权限不足")

			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "权限不足",
				"code":    "INSUFFICIENT_PERMISSION",
			})
			return
		}

		c.Next()
	}
}

// getShortAuthHeader 获取截断的授权头
func getShortAuthHeader(header string) string {
	if len(header) > 15 {
		return header[:15] + "..."
	}
	return header
}
