package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/BerniceZTT/carehome_end/models"
)

// Engine 咨询查询与统计引擎，无内部状态，可并发使用
type Engine struct {
	thresholds UrgencyThresholds
	logger     zerolog.Logger
}

// NewEngine 创建引擎
func NewEngine(thresholds UrgencyThresholds, logger zerolog.Logger) *Engine {
	return &Engine{thresholds: thresholds, logger: logger}
}

// Thresholds 当前使用的紧急程度阈值
func (e *Engine) Thresholds() UrgencyThresholds {
	return e.thresholds
}

// Urgency 计算单条咨询的紧急程度
func (e *Engine) Urgency(inq *models.Inquiry, now time.Time) Urgency {
	return e.thresholds.Level(inq, now)
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// QueryResult 列表查询结果
type QueryResult struct {
	Items      []models.Inquiry
	Pagination Pagination
	Skipped    int // 数据不完整被跳过的记录数
}

// FilterResult 筛选排序后未分页的结果
type FilterResult struct {
	Items   []models.Inquiry
	Skipped int
}

// Query 筛选、搜索、排序后分页
func (e *Engine) Query(inquiries []models.Inquiry, spec FilterSpec, now time.Time) (QueryResult, error) {
	filtered, err := e.Filter(inquiries, spec, now)
	if err != nil {
		return QueryResult{}, err
	}
	items, pagination := Paginate(filtered.Items, spec.Page, spec.Limit)
	return QueryResult{
		Items:      items,
		Pagination: pagination,
		Skipped:    filtered.Skipped,
	}, nil
}

// Filter 执行筛选与排序但不分页，供统计和导出使用
func (e *Engine) Filter(inquiries []models.Inquiry, spec FilterSpec, now time.Time) (FilterResult, error) {
	if err := spec.Validate(); err != nil {
		return FilterResult{}, err
	}

	valid, skipped := e.wellFormed(inquiries)
	needle := normalizeSearch(spec.Search)

	matched := make([]models.Inquiry, 0, len(valid))
	for i := range valid {
		if spec.match(&valid[i], now, needle) {
			matched = append(matched, valid[i])
		}
	}

	e.sortInquiries(matched, spec.SortBy, spec.SortOrder, now)
	return FilterResult{Items: matched, Skipped: skipped}, nil
}

// Paginate 截取指定页，超出最后一页时返回空列表；page >= 1、limit > 0 由调用方保证
func Paginate[T any](items []T, page, limit int) ([]T, Pagination) {
	total := len(items)
	totalPages := 1
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	p := Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}

	// 先比较页码再相乘，page 很大时 (page-1)*limit 会溢出
	if page > totalPages || total == 0 {
		return []T{}, p
	}
	start := (page - 1) * limit
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], p
}

// wellFormed 过滤掉不完整的记录并记录警告，返回新切片
func (e *Engine) wellFormed(inquiries []models.Inquiry) ([]models.Inquiry, int) {
	valid := make([]models.Inquiry, 0, len(inquiries))
	skipped := 0
	for i := range inquiries {
		if err := CheckIntegrity(&inquiries[i]); err != nil {
			skipped++
			e.logger.Warn().Err(err).Str("inquiryId", inquiries[i].ID.Hex()).Msg("跳过不完整的咨询记录")
			continue
		}
		valid = append(valid, inquiries[i])
	}
	return valid, skipped
}
