package pipeline

import (
	"fmt"
	"time"

	"github.com/BerniceZTT/carehome_end/models"
)

// Urgency 紧急程度
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// AllUrgencies 从高到低
var AllUrgencies = []Urgency{UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow}

// Weight 用于比较，critical 最大
func (u Urgency) Weight() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	}
	return 0
}

func urgencyFromWeight(w int) Urgency {
	switch {
	case w >= 3:
		return UrgencyCritical
	case w == 2:
		return UrgencyHigh
	case w == 1:
		return UrgencyMedium
	}
	return UrgencyLow
}

// UrgencyThresholds 紧急程度阈值，可通过配置调整
type UrgencyThresholds struct {
	// NEW 状态的咨询超过这些天数未联系即升级
	NewHighAfterDays     int
	NewCriticalAfterDays int

	// 其他非终态咨询按 createdAt 算的年龄升级，不看 updatedAt；阶段停留过久由每日滞留检查提醒
	AgeMediumAfterDays int
	AgeHighAfterDays   int

	// 距离参观时间
	TourCriticalWithin time.Duration
	TourHighWithin     time.Duration
	TourMediumWithin   time.Duration

	// AI 匹配分数达到该值时紧急程度提升一级（最高到 high）
	HighMatchScore float64
}

// DefaultUrgencyThresholds 默认阈值
func DefaultUrgencyThresholds() UrgencyThresholds {
	return UrgencyThresholds{
		NewHighAfterDays:     1,
		NewCriticalAfterDays: 3,
		AgeMediumAfterDays:   7,
		AgeHighAfterDays:     14,
		TourCriticalWithin:   24 * time.Hour,
		TourHighWithin:       72 * time.Hour,
		TourMediumWithin:     7 * day,
		HighMatchScore:       0.85,
	}
}

// Validate 校验阈值的先后顺序
func (t UrgencyThresholds) Validate() error {
	switch {
	case t.NewHighAfterDays < 0 || t.NewHighAfterDays > t.NewCriticalAfterDays:
		return fmt.Errorf("NEW 状态阈值无效: high=%d critical=%d", t.NewHighAfterDays, t.NewCriticalAfterDays)
	case t.AgeMediumAfterDays < 0 || t.AgeMediumAfterDays > t.AgeHighAfterDays:
		return fmt.Errorf("年龄阈值无效: medium=%d high=%d", t.AgeMediumAfterDays, t.AgeHighAfterDays)
	case t.TourCriticalWithin < 0 || t.TourCriticalWithin > t.TourHighWithin || t.TourHighWithin > t.TourMediumWithin:
		return fmt.Errorf("参观时间阈值无效: critical=%s high=%s medium=%s", t.TourCriticalWithin, t.TourHighWithin, t.TourMediumWithin)
	case t.HighMatchScore < 0 || t.HighMatchScore > 1:
		return fmt.Errorf("AI 匹配分数阈值无效: %v", t.HighMatchScore)
	}
	return nil
}

// Level 计算咨询的紧急程度
// 取年龄与参观临近两项中较高的一级；终态一律为 low
func (t UrgencyThresholds) Level(inq *models.Inquiry, now time.Time) Urgency {
	if IsTerminal(inq.Status) {
		return UrgencyLow
	}

	w := t.ageWeight(inq, now)
	if tw := t.tourWeight(inq, now); tw > w {
		w = tw
	}
	if inq.AIMatchScore != nil && *inq.AIMatchScore >= t.HighMatchScore && w < UrgencyHigh.Weight() {
		w++
	}
	return urgencyFromWeight(w)
}

func (t UrgencyThresholds) ageWeight(inq *models.Inquiry, now time.Time) int {
	age := AgeInDays(inq, now)
	if inq.Status == models.InquiryStatusNEW {
		switch {
		case age >= t.NewCriticalAfterDays:
			return UrgencyCritical.Weight()
		case age >= t.NewHighAfterDays:
			return UrgencyHigh.Weight()
		}
		return UrgencyMedium.Weight()
	}
	switch {
	case age >= t.AgeHighAfterDays:
		return UrgencyHigh.Weight()
	case age >= t.AgeMediumAfterDays:
		return UrgencyMedium.Weight()
	}
	return UrgencyLow.Weight()
}

func (t UrgencyThresholds) tourWeight(inq *models.Inquiry, now time.Time) int {
	if inq.TourDate == nil || !inq.TourDate.After(now) {
		return UrgencyLow.Weight()
	}
	until := inq.TourDate.Sub(now)
	switch {
	case until <= t.TourCriticalWithin:
		return UrgencyCritical.Weight()
	case until <= t.TourHighWithin:
		return UrgencyHigh.Weight()
	case until <= t.TourMediumWithin:
		return UrgencyMedium.Weight()
	}
	return UrgencyLow.Weight()
}
