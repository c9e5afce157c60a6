package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/carehome_end/utils"
)

// ErrorHandler 处理通过 c.Error 挂上但未写响应的错误
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		utils.HandleError(c, c.Errors.Last().Err)
	}
}
