package pipeline

import (
	"time"

	"github.com/BerniceZTT/carehome_end/models"
)

// InquiryView 带派生字段的咨询，派生字段每次按当前时间重新计算
type InquiryView struct {
	models.Inquiry
	StatusText         string  `json:"statusText"`
	StatusColor        string  `json:"statusColor"`
	Urgency            Urgency `json:"urgency"`
	AgeInDays          int     `json:"ageInDays"`
	DaysInCurrentStage int     `json:"daysInCurrentStage"`
	NextAction         string  `json:"nextAction"`
}

// View 计算单条咨询的派生字段，记录须已通过 CheckIntegrity
func (e *Engine) View(inq models.Inquiry, now time.Time) InquiryView {
	return InquiryView{
		Inquiry:            inq,
		StatusText:         StatusDisplayText(inq.Status),
		StatusColor:        StatusColor(inq.Status),
		Urgency:            e.thresholds.Level(&inq, now),
		AgeInDays:          AgeInDays(&inq, now),
		DaysInCurrentStage: DaysInCurrentStage(&inq, now),
		NextAction:         NextActionText(inq.Status),
	}
}

// Views 批量计算派生字段
func (e *Engine) Views(inquiries []models.Inquiry, now time.Time) []InquiryView {
	views := make([]InquiryView, 0, len(inquiries))
	for _, inq := range inquiries {
		views = append(views, e.View(inq, now))
	}
	return views
}
