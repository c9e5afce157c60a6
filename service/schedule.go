package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/BerniceZTT/carehome_end/metrics"
	"github.com/BerniceZTT/carehome_end/pipeline"
	"github.com/BerniceZTT/carehome_end/repository"
)

// nextDailyRun 下一次在 hour:min:sec 执行的时间
func nextDailyRun(now time.Time, hour, min, sec int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, sec, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// ScheduleDailyTaskAt 每天指定时间执行任务，ctx 取消后退出
func ScheduleDailyTaskAt(ctx context.Context, hour, min, sec int, task func(context.Context)) {
	go func() {
		for {
			timer := time.NewTimer(time.Until(nextDailyRun(time.Now(), hour, min, sec)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				task(ctx)
			}
		}
	}()
}

// StaleInquiry 滞留检查发现的咨询摘要
type StaleInquiry struct {
	Status             string `json:"status"`
	FamilyName         string `json:"familyName"`
	DaysInCurrentStage int    `json:"daysInCurrentStage"`
	Urgency            string `json:"urgency"`
}

// StaleSweeper 找出在当前阶段停留过久的非终态咨询并推送 inquiry:stale
type StaleSweeper struct {
	store     repository.InquiryStore
	engine    *pipeline.Engine
	hub       *EventHub
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	afterDays int
	now       func() time.Time
}

// NewStaleSweeper 创建滞留检查
func NewStaleSweeper(store repository.InquiryStore, engine *pipeline.Engine, hub *EventHub, m *metrics.Metrics, logger zerolog.Logger, afterDays int) *StaleSweeper {
	return &StaleSweeper{
		store:     store,
		engine:    engine,
		hub:       hub,
		metrics:   m,
		logger:    logger,
		afterDays: afterDays,
		now:       time.Now,
	}
}

// Sweep 执行一次检查，返回发现的滞留咨询数
func (s *StaleSweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	s.logger.Info().Time("time", now).Msg("开始执行每日滞留咨询检查任务")

	stale, err := s.store.ListStale(ctx, now.AddDate(0, 0, -s.afterDays))
	if err != nil {
		s.logger.Error().Err(err).Msg("查询滞留咨询失败")
		return 0, err
	}

	found := 0
	for i := range stale {
		inq := &stale[i]
		if err := pipeline.CheckIntegrity(inq); err != nil {
			s.logger.Warn().Err(err).Str("inquiryId", inq.ID.Hex()).Msg("跳过不完整的咨询记录")
			continue
		}
		found++
		if s.hub != nil {
			s.hub.Publish(EventInquiryStale, inq, StaleInquiry{
				Status:             string(inq.Status),
				FamilyName:         inq.Family.Name,
				DaysInCurrentStage: pipeline.DaysInCurrentStage(inq, now),
				Urgency:            string(s.engine.Urgency(inq, now)),
			})
		}
	}

	s.metrics.SetStaleInquiries(found)
	s.logger.Info().Int("stale", found).Int("checked", len(stale)).Msg("每日滞留咨询检查任务完成")
	return found, nil
}

// Start 按每天 hour 点执行检查
func (s *StaleSweeper) Start(ctx context.Context, hour int) {
	ScheduleDailyTaskAt(ctx, hour, 0, 0, func(ctx context.Context) {
		_, _ = s.Sweep(ctx)
	})
}
