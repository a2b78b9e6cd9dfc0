package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetStore 是 budget.Store 的 gorm 实现。
// 用量与奖励通过 ON CONFLICT DO UPDATE 做原子累加，避免并发上报丢失更新。
type BudgetStore struct {
	db *gorm.DB
}

var _ budget.Store = (*BudgetStore)(nil)

// NewBudgetStore 构造 BudgetStore
func NewBudgetStore(gdb *gorm.DB) *BudgetStore {
	return &BudgetStore{db: gdb}
}

func (s *BudgetStore) ChildExists(ctx context.Context, childID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).
		Where("id = ? AND role = ?", childID, db.RoleChild).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count child: %w", err)
	}
	return count > 0, nil
}

func (s *BudgetStore) Limits(ctx context.Context, childID uint) (budget.Breakdown, bool, error) {
	var row db.DailyLimit
	if err := s.db.WithContext(ctx).Where("child_id = ?", childID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return budget.Breakdown{}, false, nil
		}
		return budget.Breakdown{}, false, fmt.Errorf("get daily limit: %w", err)
	}
	return budget.Breakdown{
		Total:       row.Total,
		Gaming:      row.Gaming,
		Social:      row.Social,
		Educational: row.Educational,
	}, true, nil
}

func (s *BudgetStore) SaveLimits(ctx context.Context, childID uint, limits budget.Breakdown) error {
	row := db.DailyLimit{
		ChildID:     childID,
		Total:       limits.Total,
		Gaming:      limits.Gaming,
		Social:      limits.Social,
		Educational: limits.Educational,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "child_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total", "gaming", "social", "educational", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("upsert daily limit: %w", err)
	}
	return nil
}

func (s *BudgetStore) Usage(ctx context.Context, childID uint, day string) (budget.UsageRecord, error) {
	record := budget.UsageRecord{ChildID: childID, Day: day}

	var row db.UsageRecord
	if err := s.db.WithContext(ctx).Where("child_id = ? AND day = ?", childID, day).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return record, nil
		}
		return record, fmt.Errorf("get usage record: %w", err)
	}

	record.Used = usageFromRow(row)
	return record, nil
}

func (s *BudgetStore) AddUsage(ctx context.Context, childID uint, day string, delta budget.Breakdown) (budget.UsageRecord, error) {
	row := db.UsageRecord{
		ChildID:     childID,
		Day:         day,
		Total:       delta.Total,
		Gaming:      delta.Gaming,
		Social:      delta.Social,
		Educational: delta.Educational,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "child_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total":       gorm.Expr("usage_records.total + excluded.total"),
			"gaming":      gorm.Expr("usage_records.gaming + excluded.gaming"),
			"social":      gorm.Expr("usage_records.social + excluded.social"),
			"educational": gorm.Expr("usage_records.educational + excluded.educational"),
			"updated_at":  gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&row).Error; err != nil {
		return budget.UsageRecord{}, fmt.Errorf("upsert usage record: %w", err)
	}

	return s.Usage(ctx, childID, day)
}

func (s *BudgetStore) Rewards(ctx context.Context, childID uint, day string) (budget.RewardRecord, error) {
	record := budget.RewardRecord{ChildID: childID, Day: day}

	var row db.RewardRecord
	if err := s.db.WithContext(ctx).Where("child_id = ? AND day = ?", childID, day).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return record, nil
		}
		return record, fmt.Errorf("get reward record: %w", err)
	}

	record.Bonuses = budget.Bonuses{
		FromScripture: row.FromScripture,
		FromLessons:   row.FromLessons,
		FromChores:    row.FromChores,
	}
	return record, nil
}

func (s *BudgetStore) AddReward(ctx context.Context, childID uint, day string, delta budget.Bonuses) (budget.RewardRecord, error) {
	row := db.RewardRecord{
		ChildID:       childID,
		Day:           day,
		FromScripture: delta.FromScripture,
		FromLessons:   delta.FromLessons,
		FromChores:    delta.FromChores,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "child_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"from_scripture": gorm.Expr("reward_records.from_scripture + excluded.from_scripture"),
			"from_lessons":   gorm.Expr("reward_records.from_lessons + excluded.from_lessons"),
			"from_chores":    gorm.Expr("reward_records.from_chores + excluded.from_chores"),
			"updated_at":     gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&row).Error; err != nil {
		return budget.RewardRecord{}, fmt.Errorf("upsert reward record: %w", err)
	}

	return s.Rewards(ctx, childID, day)
}

func usageFromRow(row db.UsageRecord) budget.Breakdown {
	return budget.Breakdown{
		Total:       row.Total,
		Gaming:      row.Gaming,
		Social:      row.Social,
		Educational: row.Educational,
	}
}
