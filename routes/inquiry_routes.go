package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/carehome_end/controllers"
	"github.com/BerniceZTT/carehome_end/middleware"
	"github.com/BerniceZTT/carehome_end/utils"
)

// RegisterInquiryRoutes 注册咨询管道相关路由
func RegisterInquiryRoutes(router *gin.Engine, ctl *controllers.InquiryController) {
	inquiryRoutes := router.Group("/api/inquiries")
	inquiryRoutes.Use(middleware.AuthMiddleware())

	read := middleware.PermissionMiddleware(utils.ResourceInquiries, utils.ActionRead)

	// 列表、看板统计和导出共用同一套筛选参数
	inquiryRoutes.GET("", read, ctl.List)
	inquiryRoutes.GET("/analytics", middleware.PermissionMiddleware(utils.ResourceAnalytics, utils.ActionRead), ctl.Analytics)
	inquiryRoutes.GET("/export", middleware.PermissionMiddleware(utils.ResourceInquiries, utils.ActionExport), ctl.Export)

	inquiryRoutes.POST("", middleware.PermissionMiddleware(utils.ResourceInquiries, utils.ActionCreate), ctl.Create)
	inquiryRoutes.GET("/:id", read, ctl.Detail)
	inquiryRoutes.PATCH("/:id/status", middleware.PermissionMiddleware(utils.ResourceInquiries, utils.ActionUpdate), ctl.UpdateStatus)
	inquiryRoutes.PUT("/:id/assign", middleware.PermissionMiddleware(utils.ResourceInquiries, utils.ActionAssign), ctl.Assign)
	inquiryRoutes.GET("/:id/history", read, ctl.History)

	inquiryRoutes.GET("/:id/notes", middleware.PermissionMiddleware(utils.ResourceNotes, utils.ActionRead), ctl.Notes)
	inquiryRoutes.POST("/:id/notes", middleware.PermissionMiddleware(utils.ResourceNotes, utils.ActionCreate), ctl.AddNote)
}

// RegisterEventRoutes 注册事件推送路由
func RegisterEventRoutes(router *gin.Engine, ctl *controllers.EventsController) {
	router.GET("/api/events",
		middleware.AuthMiddleware(),
		middleware.PermissionMiddleware(utils.ResourceEvents, utils.ActionRead),
		ctl.Stream,
	)
}
