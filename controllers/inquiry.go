package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/carehome_end/metrics"
	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/pipeline"
	"github.com/BerniceZTT/carehome_end/repository"
	"github.com/BerniceZTT/carehome_end/service"
	"github.com/BerniceZTT/carehome_end/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InquiryController 咨询管道接口
type InquiryController struct {
	service      *service.InquiryService
	engine       *pipeline.Engine
	metrics      *metrics.Metrics
	exportPrefix string
}

// NewInquiryController 创建控制器
func NewInquiryController(svc *service.InquiryService, engine *pipeline.Engine, m *metrics.Metrics, exportPrefix string) *InquiryController {
	return &InquiryController{
		service:      svc,
		engine:       engine,
		metrics:      m,
		exportPrefix: exportPrefix,
	}
}

// List 获取咨询列表
func (ctl *InquiryController) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	spec, err := pipeline.ParseFilterQuery(c.Request.URL.Query())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	inquiries, err := ctl.service.Snapshot(c.Request.Context(), user)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	now := ctl.service.Now()
	result, err := ctl.engine.Query(inquiries, spec, now)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	ctl.recordSkipped(c, "query", result.Skipped)

	utils.LogInfo(map[string]interface{}{
		"username": user.Username,
		"total":    result.Pagination.Total,
		"page":     result.Pagination.Page,
	}, "获取咨询列表")

	utils.PaginatedResponse(c, "inquiries", ctl.engine.Views(result.Items, now), result.Pagination)
}

// Analytics 获取咨询看板统计，统计范围为筛选后未分页的集合
func (ctl *InquiryController) Analytics(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	spec, err := pipeline.ParseFilterQuery(c.Request.URL.Query())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	inquiries, err := ctl.service.Snapshot(c.Request.Context(), user)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	now := ctl.service.Now()
	filtered, err := ctl.engine.Filter(inquiries, spec, now)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	analytics := ctl.engine.Analyze(filtered.Items, now)
	analytics.SkippedRecords += filtered.Skipped
	ctl.recordSkipped(c, "analytics", analytics.SkippedRecords)

	utils.SuccessResponse(c, analytics, "")
}

// Export 导出筛选后的咨询，format=csv（默认）或 xlsx
func (ctl *InquiryController) Export(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		utils.HandleError(c, utils.CreateValidationError("format", "导出格式只能是 csv 或 xlsx"))
		return
	}
	spec, err := pipeline.ParseFilterQuery(c.Request.URL.Query())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	inquiries, err := ctl.service.Snapshot(c.Request.Context(), user)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	now := ctl.service.Now()
	filtered, err := ctl.engine.Filter(inquiries, spec, now)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	ctl.recordSkipped(c, "export", filtered.Skipped)
	rows := ctl.engine.ExportRows(filtered.Items, now)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "xlsx":
		data, err = pipeline.BuildXLSX(rows)
		contentType = xlsxContentType
	default:
		var buf bytes.Buffer
		err = pipeline.WriteCSV(&buf, rows)
		data = buf.Bytes()
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	filename := pipeline.ExportFilename(ctl.exportPrefix, now, format)
	utils.LogInfo(map[string]interface{}{
		"username": user.Username,
		"rows":     len(rows),
		"filename": filename,
	}, "导出咨询")

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}

// Create 创建咨询
func (ctl *InquiryController) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.InquiryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据: "+err.Error()))
		return
	}

	inq, err := ctl.service.Create(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, ctl.engine.View(*inq, ctl.service.Now()), "咨询创建成功", http.StatusCreated)
}

// Detail 获取咨询详情
func (ctl *InquiryController) Detail(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	inq, err := ctl.service.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, ctl.engine.View(*inq, ctl.service.Now()), "")
}

// UpdateStatus 变更咨询状态
func (ctl *InquiryController) UpdateStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.InquiryStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据: "+err.Error()))
		return
	}

	inq, err := ctl.service.Transition(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, ctl.engine.View(*inq, ctl.service.Now()), "状态更新成功")
}

// Assign 分配负责员工
func (ctl *InquiryController) Assign(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.InquiryAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据: "+err.Error()))
		return
	}

	inq, err := ctl.service.Assign(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, ctl.engine.View(*inq, ctl.service.Now()), "分配成功")
}

// Notes 获取咨询备注
func (ctl *InquiryController) Notes(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	notes, err := ctl.service.Notes(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, notes, "")
}

// AddNote 添加咨询备注
func (ctl *InquiryController) AddNote(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var input models.CreateInquiryNoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求数据: "+err.Error()))
		return
	}

	note, err := ctl.service.AddNote(c.Request.Context(), user, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, note, "备注添加成功", http.StatusCreated)
}

// History 获取咨询状态历史
func (ctl *InquiryController) History(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	history, err := ctl.service.History(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, history, "")
}

func (ctl *InquiryController) recordSkipped(c *gin.Context, operation string, skipped int) {
	if skipped == 0 {
		return
	}
	ctl.metrics.ObserveSkipped(operation, skipped)
	c.Header("X-Skipped-Records", strconv.Itoa(skipped))
}

// currentUser 取当前用户，失败时已写入响应
func currentUser(c *gin.Context) (*utils.LoginUser, bool) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, utils.CreateUnauthorizedError())
		return nil, false
	}
	return user, true
}

// respondError 将业务错误映射为 API 错误
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInquiryNotFound):
		err = utils.CreateNotFoundError("咨询")
	case errors.Is(err, service.ErrInvalidTransition):
		err = utils.CreateConflictError(err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, service.ErrInquiryClosed):
		err = utils.CreateConflictError(err.Error(), "INQUIRY_CLOSED")
	case errors.Is(err, repository.ErrStaleWrite):
		err = utils.CreateConflictError("咨询已被其他人修改，请刷新后重试", "STALE_WRITE")
	case errors.Is(err, service.ErrInquiryIntegrity):
		err = utils.NewApiError("咨询数据不完整，请联系管理员", http.StatusInternalServerError, "DATA_INTEGRITY")
	}
	utils.HandleError(c, err)
}
