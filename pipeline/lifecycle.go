// Package pipeline 咨询管道的核心逻辑：状态生命周期、筛选排序分页、看板统计与导出。
// 所有函数都是纯函数，不修改输入，当前时间由调用方显式传入。
package pipeline

import (
	"fmt"
	"time"

	"github.com/BerniceZTT/carehome_end/models"
)

const day = 24 * time.Hour

// StatusDisplayText 状态显示名称
func StatusDisplayText(status models.InquiryStatus) string {
	switch status {
	case models.InquiryStatusNEW:
		return "New"
	case models.InquiryStatusCONTACTED:
		return "Contacted"
	case models.InquiryStatusTOUR_SCHEDULED:
		return "Tour Scheduled"
	case models.InquiryStatusTOUR_COMPLETED:
		return "Tour Completed"
	case models.InquiryStatusQUALIFIED:
		return "Qualified"
	case models.InquiryStatusPLACEMENT_OFFERED:
		return "Placement Offered"
	case models.InquiryStatusPLACEMENT_ACCEPTED:
		return "Placement Accepted"
	case models.InquiryStatusCONVERTING:
		return "Converting"
	case models.InquiryStatusCONVERTED:
		return "Converted"
	case models.InquiryStatusCLOSED_LOST:
		return "Closed Lost"
	}
	panic(unhandledStatus(status))
}

// StatusColor 状态颜色标记，仅供前端展示
// 成功类（CONVERTED、PLACEMENT_ACCEPTED）为绿色系，CLOSED_LOST 为红色系，其余状态不使用这两个色系
func StatusColor(status models.InquiryStatus) string {
	switch status {
	case models.InquiryStatusNEW:
		return "blue"
	case models.InquiryStatusCONTACTED:
		return "sky"
	case models.InquiryStatusTOUR_SCHEDULED:
		return "indigo"
	case models.InquiryStatusTOUR_COMPLETED:
		return "violet"
	case models.InquiryStatusQUALIFIED:
		return "amber"
	case models.InquiryStatusPLACEMENT_OFFERED:
		return "orange"
	case models.InquiryStatusPLACEMENT_ACCEPTED:
		return "green-light"
	case models.InquiryStatusCONVERTING:
		return "teal"
	case models.InquiryStatusCONVERTED:
		return "green"
	case models.InquiryStatusCLOSED_LOST:
		return "red"
	}
	panic(unhandledStatus(status))
}

// NextActionText 当前状态下建议的下一步操作
func NextActionText(status models.InquiryStatus) string {
	switch status {
	case models.InquiryStatusNEW:
		return "Contact family"
	case models.InquiryStatusCONTACTED:
		return "Schedule a tour"
	case models.InquiryStatusTOUR_SCHEDULED:
		return "Confirm tour attendance"
	case models.InquiryStatusTOUR_COMPLETED:
		return "Follow up after tour"
	case models.InquiryStatusQUALIFIED:
		return "Prepare placement offer"
	case models.InquiryStatusPLACEMENT_OFFERED:
		return "Await family decision"
	case models.InquiryStatusPLACEMENT_ACCEPTED:
		return "Start move-in paperwork"
	case models.InquiryStatusCONVERTING:
		return "Complete admission"
	case models.InquiryStatusCONVERTED, models.InquiryStatusCLOSED_LOST:
		return "No action needed"
	}
	panic(unhandledStatus(status))
}

// PipelineRank 状态在管道中的序号，NEW 为 0，CLOSED_LOST 排在最后
func PipelineRank(status models.InquiryStatus) int {
	switch status {
	case models.InquiryStatusNEW:
		return 0
	case models.InquiryStatusCONTACTED:
		return 1
	case models.InquiryStatusTOUR_SCHEDULED:
		return 2
	case models.InquiryStatusTOUR_COMPLETED:
		return 3
	case models.InquiryStatusQUALIFIED:
		return 4
	case models.InquiryStatusPLACEMENT_OFFERED:
		return 5
	case models.InquiryStatusPLACEMENT_ACCEPTED:
		return 6
	case models.InquiryStatusCONVERTING:
		return 7
	case models.InquiryStatusCONVERTED:
		return 8
	case models.InquiryStatusCLOSED_LOST:
		return 9
	}
	panic(unhandledStatus(status))
}

// IsTerminal 是否为终态
func IsTerminal(status models.InquiryStatus) bool {
	return status == models.InquiryStatusCONVERTED || status == models.InquiryStatusCLOSED_LOST
}

// ReachedStage 当前状态是否已到达（或越过）指定阶段；CLOSED_LOST 不在主线上，视为未到达
func ReachedStage(status, stage models.InquiryStatus) bool {
	if status == models.InquiryStatusCLOSED_LOST {
		return false
	}
	return PipelineRank(status) >= PipelineRank(stage)
}

// CanTransition 判断状态流转是否合法
// 终态不可再流转；任意非终态可流转到 CLOSED_LOST；其余只能向前（允许跳过阶段）
func CanTransition(from, to models.InquiryStatus) bool {
	if IsTerminal(from) || from == to {
		return false
	}
	if to == models.InquiryStatusCLOSED_LOST {
		return true
	}
	return PipelineRank(to) > PipelineRank(from)
}

// FurthestStage 曾经到达的最远主线阶段
func FurthestStage(inq *models.Inquiry) models.InquiryStatus {
	furthest := models.InquiryStatusNEW
	if inq.Status != models.InquiryStatusCLOSED_LOST {
		furthest = inq.Status
	}
	if inq.FurthestStatus != "" && inq.FurthestStatus != models.InquiryStatusCLOSED_LOST &&
		models.IsValidInquiryStatus(string(inq.FurthestStatus)) &&
		PipelineRank(inq.FurthestStatus) > PipelineRank(furthest) {
		furthest = inq.FurthestStatus
	}
	return furthest
}

// AgeInDays 咨询创建至今的天数
func AgeInDays(inq *models.Inquiry, now time.Time) int {
	return elapsedDays(inq.CreatedAt, now)
}

// DaysInCurrentStage 最后一次变更至今的天数
func DaysInCurrentStage(inq *models.Inquiry, now time.Time) int {
	return elapsedDays(inq.UpdatedAt, now)
}

func elapsedDays(from, now time.Time) int {
	d := now.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / day)
}

// CheckIntegrity 检查记录是否完整，缺少养老院或家庭、状态未知都视为数据问题
func CheckIntegrity(inq *models.Inquiry) error {
	if inq.Home == nil {
		return fmt.Errorf("咨询 %s 缺少养老院信息", inq.ID.Hex())
	}
	if inq.Family == nil {
		return fmt.Errorf("咨询 %s 缺少家庭信息", inq.ID.Hex())
	}
	if !models.IsValidInquiryStatus(string(inq.Status)) {
		return fmt.Errorf("咨询 %s 状态无效: %q", inq.ID.Hex(), inq.Status)
	}
	return nil
}

func unhandledStatus(status models.InquiryStatus) string {
	return fmt.Sprintf("pipeline: unhandled inquiry status %q", status)
}
