package repository

import (
	"context"
	"errors"
	"time"

	"github.com/BerniceZTT/carehome_end/models"
	"github.com/BerniceZTT/carehome_end/utils"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrStaleWrite 写入时记录状态已被其他请求修改
	ErrStaleWrite = errors.New("记录已被修改")
)

// Version 乐观锁比较的字段，读取后任何一项变化都视为已被修改
type Version struct {
	Status    models.InquiryStatus
	UpdatedAt time.Time
}

// VersionOf 修改前记下的版本
func VersionOf(inq *models.Inquiry) Version {
	return Version{Status: inq.Status, UpdatedAt: inq.UpdatedAt}
}

// Matches 记录是否仍是该版本
func (v Version) Matches(inq *models.Inquiry) bool {
	return inq.Status == v.Status && inq.UpdatedAt.Equal(v.UpdatedAt)
}

// InquiryStore 咨询及其历史、备注的持久化
type InquiryStore interface {
	// ListInquiries 返回用户可见的全部咨询，排序与分页由引擎完成
	ListInquiries(ctx context.Context, user *utils.LoginUser) ([]models.Inquiry, error)
	GetInquiry(ctx context.Context, id string) (*models.Inquiry, error)
	InsertInquiry(ctx context.Context, inq *models.Inquiry) error
	// UpdateInquiry 仅当库中记录仍是 expected 版本时写入，否则返回 ErrStaleWrite
	UpdateInquiry(ctx context.Context, inq *models.Inquiry, expected Version) error
	// ListStale 非终态且 updatedAt 早于 before 的咨询
	ListStale(ctx context.Context, before time.Time) ([]models.Inquiry, error)

	AppendStatusHistory(ctx context.Context, h *models.InquiryStatusHistory) error
	ListStatusHistory(ctx context.Context, inquiryID string) ([]models.InquiryStatusHistory, error)

	InsertNote(ctx context.Context, note *models.InquiryNote) error
	ListNotes(ctx context.Context, inquiryID string) ([]models.InquiryNote, error)
}

// OperationLogSink 写操作审计日志的去向
type OperationLogSink interface {
	SaveOperationLog(ctx context.Context, log *models.OperationLog) error
}

var terminalStatuses = []models.InquiryStatus{
	models.InquiryStatusCONVERTED,
	models.InquiryStatusCLOSED_LOST,
}
