package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/schedule"
	log "github.com/sirupsen/logrus"
)

// ScreenTimeService 把预算引擎、时段判断与家长提醒组合在一起
type ScreenTimeService struct {
	engine *budget.Engine
	gate   *schedule.Gate
	alerts *AlertService
}

// UsageResult 是记录用量后的结果
type UsageResult struct {
	Record    budget.UsageRecord `json:"usage"`
	Available int                `json:"available_total"`
	Exhausted bool               `json:"exhausted"`
}

// NewScreenTimeService 构造 ScreenTimeService
func NewScreenTimeService(engine *budget.Engine, gate *schedule.Gate, alerts *AlertService) *ScreenTimeService {
	return &ScreenTimeService{engine: engine, gate: gate, alerts: alerts}
}

// Engine 返回底层预算引擎
func (s *ScreenTimeService) Engine() *budget.Engine {
	return s.engine
}

// Summary 返回孩子某天的屏幕时间汇总
func (s *ScreenTimeService) Summary(ctx context.Context, childID uint, date time.Time) (budget.Summary, error) {
	return s.engine.Summary(ctx, childID, date)
}

// SetLimits 更新孩子的每日上限
func (s *ScreenTimeService) SetLimits(ctx context.Context, childID uint, limits budget.Breakdown) (budget.Breakdown, error) {
	saved, err := s.engine.SetLimits(ctx, childID, limits)
	if err != nil {
		return budget.Breakdown{}, err
	}
	log.WithFields(log.Fields{"child_id": childID, "total": saved.Total}).Info("daily limits updated")
	return saved, nil
}

// Available 返回某类别的剩余分钟
func (s *ScreenTimeService) Available(ctx context.Context, childID uint, category budget.Category, date time.Time) (int, error) {
	return s.engine.AvailableMinutes(ctx, childID, category, date)
}

// LogUsage 记录用量。当这次用量让 total 剩余从正数变为 0 时，给家长发送提醒。
func (s *ScreenTimeService) LogUsage(ctx context.Context, child db.User, category budget.Category, minutes int, ts time.Time) (UsageResult, error) {
	before, err := s.engine.AvailableMinutes(ctx, child.ID, budget.CategoryTotal, ts)
	if err != nil {
		return UsageResult{}, err
	}

	record, err := s.engine.RecordUsage(ctx, child.ID, category, minutes, ts)
	if err != nil {
		return UsageResult{}, err
	}

	after, err := s.engine.AvailableMinutes(ctx, child.ID, budget.CategoryTotal, ts)
	if err != nil {
		return UsageResult{}, err
	}

	result := UsageResult{Record: record, Available: after, Exhausted: after == 0}
	if before > 0 && after == 0 && s.alerts != nil && child.ParentID != nil {
		childID := child.ID
		content := fmt.Sprintf("%s has used all screen time for %s", child.DisplayName, record.Day)
		if _, err := s.alerts.Raise(ctx, *child.ParentID, &childID, db.AlertTypeScreenTimeExhausted, content); err != nil {
			log.WithError(err).WithField("child_id", child.ID).Warn("raise exhausted alert failed")
		}
	}
	return result, nil
}

// CreditReward 记入奖励分钟
func (s *ScreenTimeService) CreditReward(ctx context.Context, childID uint, source budget.Source, minutes int, date time.Time) (budget.RewardRecord, error) {
	record, err := s.engine.CreditReward(ctx, childID, source, minutes, date)
	if err != nil {
		return budget.RewardRecord{}, err
	}
	log.WithFields(log.Fields{"child_id": childID, "source": source, "minutes": minutes}).Info("reward credited")
	return record, nil
}

// Allowed 判断孩子此刻是否处于允许时段
func (s *ScreenTimeService) Allowed(ctx context.Context, childID uint, now time.Time) (bool, error) {
	return s.gate.Allowed(ctx, childID, now)
}
