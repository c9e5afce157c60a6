package pipeline

import (
	"math"
	"time"

	"github.com/BerniceZTT/carehome_end/models"
)

// trendMonths 月度趋势覆盖的月份数（含当月）
const trendMonths = 6

// Analyze 汇总看板统计。输入集合不做筛选，需要限定范围时由调用方先筛选
func (e *Engine) Analyze(inquiries []models.Inquiry, now time.Time) models.InquiryAnalytics {
	valid, skipped := e.wellFormed(inquiries)
	total := len(valid)

	result := models.InquiryAnalytics{
		TotalInquiries: total,
		SkippedRecords: skipped,
	}

	var (
		conversionDays []float64
		responseHours  []float64
		daysToTour     []float64
		sourceCounts   = make(map[models.InquirySource]int)
		statusCounts   = make(map[models.InquiryStatus]int)
		urgencyCounts  = make(map[Urgency]int)
		stages         = funnelStages()
		funnelReached  = make([]int, len(stages))
	)

	for i := range valid {
		inq := &valid[i]

		switch inq.Status {
		case models.InquiryStatusCONVERTED:
			result.ConvertedInquiries++
			conversionDays = append(conversionDays, nonNegative(convertedAt(inq).Sub(inq.CreatedAt).Hours()/24))
		case models.InquiryStatusCLOSED_LOST:
		default:
			result.ActiveInquiries++
		}

		if inq.Status != models.InquiryStatusNEW && inq.FirstContactedAt != nil {
			responseHours = append(responseHours, nonNegative(inq.FirstContactedAt.Sub(inq.CreatedAt).Hours()))
		}

		furthest := PipelineRank(FurthestStage(inq))
		for s, stage := range stages {
			if furthest >= PipelineRank(stage) {
				funnelReached[s]++
			}
		}

		source := inq.Source
		if source == "" {
			source = unknownSource
		}
		sourceCounts[source]++
		statusCounts[inq.Status]++
		urgencyCounts[e.thresholds.Level(inq, now)]++

		completed := ReachedStage(inq.Status, models.InquiryStatusTOUR_COMPLETED)
		if inq.TourDate != nil || completed {
			result.TourMetrics.ToursScheduled++
		}
		if completed {
			result.TourMetrics.ToursCompleted++
		}
		if inq.TourDate != nil {
			daysToTour = append(daysToTour, nonNegative(inq.TourDate.Sub(inq.CreatedAt).Hours()/24))
		}
	}

	result.ConversionRate = percentage(result.ConvertedInquiries, total)
	result.AverageTimeToConversion = mean(conversionDays)
	result.AverageResponseTime = mean(responseHours)

	for s, stage := range stages {
		result.ConversionFunnelData = append(result.ConversionFunnelData, models.FunnelStageItem{
			Stage: stage,
			Label: StatusDisplayText(stage),
			Count: funnelReached[s],
		})
	}

	result.BySourceData = []models.ChartDataItem{}
	for _, source := range append(append([]models.InquirySource{}, models.AllInquirySources...), unknownSource) {
		if n := sourceCounts[source]; n > 0 {
			result.BySourceData = append(result.BySourceData, chartItem(string(source), n, total))
		}
	}
	result.ByStatusData = []models.ChartDataItem{}
	for _, status := range models.AllInquiryStatuses {
		if n := statusCounts[status]; n > 0 {
			result.ByStatusData = append(result.ByStatusData, chartItem(string(status), n, total))
		}
	}
	result.ByPriorityData = []models.ChartDataItem{}
	for _, u := range AllUrgencies {
		if n := urgencyCounts[u]; n > 0 {
			result.ByPriorityData = append(result.ByPriorityData, chartItem(string(u), n, total))
		}
	}

	result.MonthlyTrendsData = monthlyTrends(valid, now)

	result.TourMetrics.TourCompletionRate = percentage(result.TourMetrics.ToursCompleted, result.TourMetrics.ToursScheduled)
	result.TourMetrics.AverageDaysToTour = mean(daysToTour)

	return result
}

const unknownSource models.InquirySource = "unknown"

// funnelStages 漏斗阶段：主线上的全部状态，不含 CLOSED_LOST
func funnelStages() []models.InquiryStatus {
	stages := make([]models.InquiryStatus, 0, len(models.AllInquiryStatuses)-1)
	for _, s := range models.AllInquiryStatuses {
		if s != models.InquiryStatusCLOSED_LOST {
			stages = append(stages, s)
		}
	}
	return stages
}

// convertedAt 没有转化时间时以最后更新时间近似
func convertedAt(inq *models.Inquiry) time.Time {
	if inq.ConvertedAt != nil {
		return *inq.ConvertedAt
	}
	return inq.UpdatedAt
}

// monthlyTrends 最近 6 个自然月（从旧到新）的咨询数与转化数
func monthlyTrends(inquiries []models.Inquiry, now time.Time) []models.MonthlyTrendItem {
	loc := now.Location()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	trends := make([]models.MonthlyTrendItem, trendMonths)
	index := make(map[string]int, trendMonths)
	for i := 0; i < trendMonths; i++ {
		month := current.AddDate(0, i-trendMonths+1, 0).Format("2006-01")
		trends[i].Month = month
		index[month] = i
	}

	for i := range inquiries {
		inq := &inquiries[i]
		if idx, ok := index[inq.CreatedAt.In(loc).Format("2006-01")]; ok {
			trends[idx].Inquiries++
		}
		if inq.Status == models.InquiryStatusCONVERTED {
			if idx, ok := index[convertedAt(inq).In(loc).Format("2006-01")]; ok {
				trends[idx].Conversions++
			}
		}
	}
	return trends
}

func chartItem(name string, count, total int) models.ChartDataItem {
	return models.ChartDataItem{Name: name, Value: count, Percentage: percentage(count, total)}
}

// percentage 保留一位小数，分母为 0 时返回 0
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return round1(sum / float64(len(values)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
