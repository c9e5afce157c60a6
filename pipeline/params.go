package pipeline

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BerniceZTT/carehome_end/models"
)

// 未传分页参数时的默认值
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ParseFilterQuery 从列表接口的查询参数构造 FilterSpec
// 格式错误立即返回 ValidationError；取值范围由 FilterSpec.Validate 检查
func ParseFilterQuery(q url.Values) (FilterSpec, error) {
	spec := FilterSpec{
		HomeID:         strings.TrimSpace(q.Get("homeId")),
		AssignedTo:     strings.TrimSpace(q.Get("assignedTo")),
		AgeFilter:      AgeBucket(q.Get("ageFilter")),
		TourStatus:     TourBucket(q.Get("tourStatus")),
		FollowUpStatus: FollowUpBucket(q.Get("followupStatus")),
		Search:         q.Get("search"),
		SortBy:         SortKey(q.Get("sortBy")),
		SortOrder:      SortOrder(strings.ToLower(q.Get("sortOrder"))),
		Page:           DefaultPage,
		Limit:          DefaultLimit,
	}

	var err error
	if spec.Page, err = intParam(q, "page", DefaultPage); err != nil {
		return spec, err
	}
	if spec.Limit, err = intParam(q, "limit", DefaultLimit); err != nil {
		return spec, err
	}

	if raw := q.Get("statuses"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			spec.Statuses = append(spec.Statuses, models.InquiryStatus(strings.ToUpper(s)))
		}
	}

	if spec.DateFrom, err = dateParam(q, "dateFrom"); err != nil {
		return spec, err
	}
	if spec.DateTo, err = dateParam(q, "dateTo"); err != nil {
		return spec, err
	}

	return spec, spec.Validate()
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(name, "不是有效的整数: %q", raw)
	}
	return v, nil
}

// dateParam 支持 yyyy-MM-dd 与 RFC3339
func dateParam(q url.Values, name string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, invalid(name, "日期格式无效: %q", raw)
}
