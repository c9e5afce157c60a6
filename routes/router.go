package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BerniceZTT/carehome_end/controllers"
	"github.com/BerniceZTT/carehome_end/repository"
	"github.com/BerniceZTT/carehome_end/utils"
)

// Deps 路由依赖
type Deps struct {
	Inquiries *controllers.InquiryController
	Events    *controllers.EventsController
	// DBStatus 为空时不注册 /api/db-status
	DBStatus func() (map[string]interface{}, error)
	// Metrics 为空时不注册 /metrics
	Metrics http.Handler
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps Deps) {
	RegisterInquiryRoutes(router, deps.Inquiries)
	RegisterEventRoutes(router, deps.Events)

	// 健康检查路由
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.DBStatus != nil {
		router.GET("/api/db-status", func(c *gin.Context) {
			status, err := deps.DBStatus()
			if err != nil {
				utils.ErrorResponse(c, "获取数据库状态失败: "+err.Error(), http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, status)
		})
	}

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}
}

// DefaultDeps 生产环境使用 MongoDB 状态和默认 Prometheus 注册表
func DefaultDeps(inquiries *controllers.InquiryController, events *controllers.EventsController) Deps {
	return Deps{
		Inquiries: inquiries,
		Events:    events,
		DBStatus:  repository.GetDatabaseStatus,
		Metrics:   promhttp.Handler(),
	}
}
