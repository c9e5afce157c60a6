package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Last-Event-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Skipped-Records"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	})
}
