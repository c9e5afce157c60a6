package models

// 图表数据项
type ChartDataItem struct {
	Name       string  `json:"name"`
	Value      int     `json:"value"`
	Percentage float64 `json:"percentage"` // 占总数百分比，保留一位小数
}

// 漏斗阶段
type FunnelStageItem struct {
	Stage InquiryStatus `json:"stage"`
	Label string        `json:"label"`
	Count int           `json:"count"` // 曾到达该阶段及以后的咨询数
}

// 月度趋势
type MonthlyTrendItem struct {
	Month       string `json:"month"` // 格式: YYYY-MM
	Inquiries   int    `json:"inquiries"`
	Conversions int    `json:"conversions"`
}

// 参观统计
type TourMetrics struct {
	ToursScheduled     int     `json:"toursScheduled"`
	ToursCompleted     int     `json:"toursCompleted"`
	TourCompletionRate float64 `json:"tourCompletionRate"`
	AverageDaysToTour  float64 `json:"averageDaysToTour"`
}

// 咨询看板响应结构
type InquiryAnalytics struct {
	TotalInquiries     int     `json:"totalInquiries"`
	ActiveInquiries    int     `json:"activeInquiries"`
	ConvertedInquiries int     `json:"convertedInquiries"`
	ConversionRate     float64 `json:"conversionRate"`

	AverageTimeToConversion float64 `json:"averageTimeToConversion"` // 天
	AverageResponseTime     float64 `json:"averageResponseTime"`     // 小时

	ConversionFunnelData []FunnelStageItem  `json:"conversionFunnelData"`
	BySourceData         []ChartDataItem    `json:"bySourceData"`
	ByStatusData         []ChartDataItem    `json:"byStatusData"`
	ByPriorityData       []ChartDataItem    `json:"byPriorityData"`
	MonthlyTrendsData    []MonthlyTrendItem `json:"monthlyTrendsData"`
	TourMetrics          TourMetrics        `json:"tourMetrics"`

	SkippedRecords int `json:"skippedRecords"` // 数据不完整而被跳过的记录数
}
