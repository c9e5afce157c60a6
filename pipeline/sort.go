package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/BerniceZTT/carehome_end/models"
)

// SortKey 排序字段
type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByUpdatedAt SortKey = "updatedAt" // 最近活动
	SortByName      SortKey = "name"
	SortByPriority  SortKey = "priority"
	SortByStatus    SortKey = "status" // 管道顺序
	SortByTourDate  SortKey = "tourDate"
)

func (k SortKey) valid() bool {
	switch k {
	case "", SortByCreatedAt, SortByUpdatedAt, SortByName, SortByPriority, SortByStatus, SortByTourDate:
		return true
	}
	return false
}

// SortOrder 排序方向
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) valid() bool {
	return o == "" || o == SortAsc || o == SortDesc
}

// defaultOrder 未指定方向时各字段的默认方向
func (k SortKey) defaultOrder() SortOrder {
	switch k {
	case SortByName, SortByStatus, SortByTourDate:
		return SortAsc
	}
	return SortDesc
}

// ContactName 联系人名称：优先主要联系人，其次家庭名称
func ContactName(inq *models.Inquiry) string {
	if inq.Family == nil {
		return ""
	}
	if inq.Family.PrimaryContactName != "" {
		return inq.Family.PrimaryContactName
	}
	return inq.Family.Name
}

type sortEntry struct {
	inq    models.Inquiry
	weight int
}

// sortInquiries 稳定排序，原地修改传入的切片（调用方保证是副本）
func (e *Engine) sortInquiries(items []models.Inquiry, key SortKey, order SortOrder, now time.Time) {
	if key == "" {
		key = SortByCreatedAt
	}
	if order == "" {
		order = key.defaultOrder()
	}
	desc := order == SortDesc

	entries := make([]sortEntry, len(items))
	for i := range items {
		entries[i].inq = items[i]
		if key == SortByPriority {
			entries[i].weight = e.thresholds.Level(&items[i], now).Weight()
		}
	}

	var less func(a, b *sortEntry) bool
	switch key {
	case SortByCreatedAt:
		less = func(a, b *sortEntry) bool { return timeLess(a.inq.CreatedAt, b.inq.CreatedAt, desc) }
	case SortByUpdatedAt:
		less = func(a, b *sortEntry) bool { return timeLess(a.inq.UpdatedAt, b.inq.UpdatedAt, desc) }
	case SortByName:
		less = func(a, b *sortEntry) bool {
			an, bn := strings.ToLower(ContactName(&a.inq)), strings.ToLower(ContactName(&b.inq))
			if desc {
				return an > bn
			}
			return an < bn
		}
	case SortByPriority:
		less = func(a, b *sortEntry) bool {
			if a.weight != b.weight {
				if desc {
					return a.weight > b.weight
				}
				return a.weight < b.weight
			}
			// 同级按创建时间倒序
			return a.inq.CreatedAt.After(b.inq.CreatedAt)
		}
	case SortByStatus:
		less = func(a, b *sortEntry) bool {
			ra, rb := PipelineRank(a.inq.Status), PipelineRank(b.inq.Status)
			if desc {
				return ra > rb
			}
			return ra < rb
		}
	case SortByTourDate:
		less = func(a, b *sortEntry) bool {
			// 没有参观时间的始终排在最后
			switch {
			case a.inq.TourDate == nil:
				return false
			case b.inq.TourDate == nil:
				return true
			}
			return timeLess(*a.inq.TourDate, *b.inq.TourDate, desc)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return less(&entries[i], &entries[j])
	})
	for i := range entries {
		items[i] = entries[i].inq
	}
}

func timeLess(a, b time.Time, desc bool) bool {
	if desc {
		return a.After(b)
	}
	return a.Before(b)
}
