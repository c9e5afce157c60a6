package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/BerniceZTT/carehome_end/models"
)

// MaxLimit 单页最大条数
const MaxLimit = 500

// ValidationError 筛选、排序或分页参数错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AgeBucket 咨询年龄分段
type AgeBucket string

const (
	AgeAll    AgeBucket = "all"
	AgeNew    AgeBucket = "new"    // 0-3 天
	AgeRecent AgeBucket = "recent" // 4-7 天
	AgeAging  AgeBucket = "aging"  // 8-14 天
	AgeOld    AgeBucket = "old"    // 15 天以上
)

func (b AgeBucket) valid() bool {
	switch b {
	case "", AgeAll, AgeNew, AgeRecent, AgeAging, AgeOld:
		return true
	}
	return false
}

func (b AgeBucket) contains(days int) bool {
	switch b {
	case AgeNew:
		return days <= 3
	case AgeRecent:
		return days >= 4 && days <= 7
	case AgeAging:
		return days >= 8 && days <= 14
	case AgeOld:
		return days >= 15
	}
	return true
}

// TourBucket 参观状态
type TourBucket string

const (
	TourAll       TourBucket = "all"
	TourScheduled TourBucket = "scheduled"
	TourCompleted TourBucket = "completed"
	TourNone      TourBucket = "none"
)

func (b TourBucket) valid() bool {
	switch b {
	case "", TourAll, TourScheduled, TourCompleted, TourNone:
		return true
	}
	return false
}

// FollowUpBucket 跟进状态
type FollowUpBucket string

const (
	FollowUpAll     FollowUpBucket = "all"
	FollowUpOverdue FollowUpBucket = "overdue"
	FollowUpToday   FollowUpBucket = "today"
	FollowUpWeek    FollowUpBucket = "week"
	FollowUpNone    FollowUpBucket = "none"
)

func (b FollowUpBucket) valid() bool {
	switch b {
	case "", FollowUpAll, FollowUpOverdue, FollowUpToday, FollowUpWeek, FollowUpNone:
		return true
	}
	return false
}

// FollowUpMatcher 判断咨询是否属于某个跟进分段，由持有跟进数据的调用方提供
type FollowUpMatcher func(inq *models.Inquiry, bucket FollowUpBucket, now time.Time) bool

// FilterSpec 列表筛选条件，零值字段表示不限制
type FilterSpec struct {
	Statuses   []models.InquiryStatus
	HomeID     string
	AssignedTo string
	DateFrom   *time.Time
	DateTo     *time.Time

	AgeFilter      AgeBucket
	TourStatus     TourBucket
	FollowUpStatus FollowUpBucket
	// 为空时使用咨询上的 FollowUpDueAt 判断
	FollowUpMatcher FollowUpMatcher

	Search    string
	SortBy    SortKey
	SortOrder SortOrder

	Page  int
	Limit int
}

// Validate 在计算前校验参数，不做任何修正
func (f *FilterSpec) Validate() error {
	for _, s := range f.Statuses {
		if !models.IsValidInquiryStatus(string(s)) {
			return invalid("statuses", "未知状态 %q", s)
		}
	}
	if f.DateFrom != nil && f.DateTo != nil && startOfDay(*f.DateFrom).After(startOfDay(*f.DateTo)) {
		return invalid("dateTo", "结束日期早于开始日期")
	}
	if !f.AgeFilter.valid() {
		return invalid("ageFilter", "未知年龄分段 %q", f.AgeFilter)
	}
	if !f.TourStatus.valid() {
		return invalid("tourStatus", "未知参观状态 %q", f.TourStatus)
	}
	if !f.FollowUpStatus.valid() {
		return invalid("followupStatus", "未知跟进状态 %q", f.FollowUpStatus)
	}
	if !f.SortBy.valid() {
		return invalid("sortBy", "不支持的排序字段 %q", f.SortBy)
	}
	if !f.SortOrder.valid() {
		return invalid("sortOrder", "排序方向只能是 asc 或 desc")
	}
	if f.Page < 1 {
		return invalid("page", "页码必须大于等于1")
	}
	if f.Limit <= 0 {
		return invalid("limit", "每页条数必须大于0")
	}
	if f.Limit > MaxLimit {
		return invalid("limit", "每页条数不能超过%d", MaxLimit)
	}
	return nil
}

// match 按固定顺序执行筛选步骤：状态、养老院、员工、日期、年龄、参观、跟进、搜索
func (f *FilterSpec) match(inq *models.Inquiry, now time.Time, needle string) bool {
	return f.matchStatus(inq) &&
		f.matchHome(inq) &&
		f.matchAssignee(inq) &&
		f.matchDateRange(inq) &&
		f.AgeFilter.contains(AgeInDays(inq, now)) &&
		f.matchTour(inq, now) &&
		f.matchFollowUp(inq, now) &&
		matchSearch(inq, needle)
}

func (f *FilterSpec) matchStatus(inq *models.Inquiry) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if inq.Status == s {
			return true
		}
	}
	return false
}

func (f *FilterSpec) matchHome(inq *models.Inquiry) bool {
	return f.HomeID == "" || inq.Home.ID == f.HomeID
}

func (f *FilterSpec) matchAssignee(inq *models.Inquiry) bool {
	if f.AssignedTo == "" {
		return true
	}
	return inq.AssignedStaff != nil && inq.AssignedStaff.ID == f.AssignedTo
}

func (f *FilterSpec) matchDateRange(inq *models.Inquiry) bool {
	created := startOfDay(inq.CreatedAt)
	if f.DateFrom != nil && created.Before(startOfDay(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && created.After(startOfDay(*f.DateTo)) {
		return false
	}
	return true
}

func (f *FilterSpec) matchTour(inq *models.Inquiry, now time.Time) bool {
	switch f.TourStatus {
	case TourScheduled:
		return inq.TourDate != nil && inq.TourDate.After(now) && !IsTerminal(inq.Status)
	case TourCompleted:
		return ReachedStage(inq.Status, models.InquiryStatusTOUR_COMPLETED)
	case TourNone:
		return inq.TourDate == nil
	}
	return true
}

func (f *FilterSpec) matchFollowUp(inq *models.Inquiry, now time.Time) bool {
	if f.FollowUpStatus == "" || f.FollowUpStatus == FollowUpAll {
		return true
	}
	if f.FollowUpMatcher != nil {
		return f.FollowUpMatcher(inq, f.FollowUpStatus, now)
	}
	return MatchFollowUpDue(inq, f.FollowUpStatus, now)
}

// MatchFollowUpDue 根据 FollowUpDueAt 判断跟进分段
func MatchFollowUpDue(inq *models.Inquiry, bucket FollowUpBucket, now time.Time) bool {
	due := inq.FollowUpDueAt
	if bucket == FollowUpNone {
		return due == nil
	}
	if due == nil {
		return bucket == FollowUpAll || bucket == ""
	}

	today := startOfDayIn(now, now.Location())
	dueDay := startOfDayIn(*due, now.Location())
	switch bucket {
	case FollowUpOverdue:
		return dueDay.Before(today)
	case FollowUpToday:
		return dueDay.Equal(today)
	case FollowUpWeek:
		return !dueDay.Before(today) && dueDay.Before(today.AddDate(0, 0, 7))
	}
	return true
}

func normalizeSearch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matchSearch 任意一个字段包含关键词即命中（不区分大小写）
func matchSearch(inq *models.Inquiry, needle string) bool {
	if needle == "" {
		return true
	}
	fields := []string{
		inq.Family.Name,
		inq.Family.PrimaryContactName,
		inq.Family.Phone,
		inq.Family.Email,
		inq.ContactEmail,
		inq.Message,
		inq.Notes,
	}
	for _, field := range fields {
		if field != "" && strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// startOfDay 按 UTC 日期比较
func startOfDay(t time.Time) time.Time {
	return startOfDayIn(t, time.UTC)
}

func startOfDayIn(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
