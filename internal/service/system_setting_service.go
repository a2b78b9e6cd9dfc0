package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shepherdtime/internal/db"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SystemSettings 描述家长可调整的策略。
type SystemSettings struct {
	ScheduleDefaultAllow bool `json:"schedule_default_allow"`
	MaxDailyBonusMinutes int  `json:"max_daily_bonus_minutes"`
}

// ErrInvalidSetting 表示设置值不合法。
var ErrInvalidSetting = errors.New("invalid setting value")

// SystemSettingsInput 用于更新系统设置，nil 字段保持不变。
type SystemSettingsInput struct {
	ScheduleDefaultAllow *bool
	MaxDailyBonusMinutes *int
}

// SystemSettingService 提供系统设置的读取与更新能力，未保存的键回退到启动配置。
type SystemSettingService struct {
	db       *gorm.DB
	defaults SystemSettings
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB, defaults SystemSettings) *SystemSettingService {
	return &SystemSettingService{db: gdb, defaults: defaults}
}

var settingKeys = []string{
	db.SettingKeyScheduleDefaultAllow,
	db.SettingKeyMaxDailyBonusMinutes,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings(ctx context.Context) (SystemSettings, error) {
	result := s.defaults

	var records []db.SystemSetting
	if err := s.db.WithContext(ctx).Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		switch record.Key {
		case db.SettingKeyScheduleDefaultAllow:
			if parsed, err := strconv.ParseBool(value); err == nil {
				result.ScheduleDefaultAllow = parsed
			}
		case db.SettingKeyMaxDailyBonusMinutes:
			if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
				result.MaxDailyBonusMinutes = parsed
			}
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置。
func (s *SystemSettingService) UpdateSettings(ctx context.Context, input SystemSettingsInput) (SystemSettings, error) {
	if input.MaxDailyBonusMinutes != nil && *input.MaxDailyBonusMinutes < 0 {
		return SystemSettings{}, fmt.Errorf("%w: max_daily_bonus_minutes must be >= 0", ErrInvalidSetting)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.ScheduleDefaultAllow != nil {
			if err := upsertSetting(tx, db.SettingKeyScheduleDefaultAllow, strconv.FormatBool(*input.ScheduleDefaultAllow)); err != nil {
				return err
			}
		}
		if input.MaxDailyBonusMinutes != nil {
			if err := upsertSetting(tx, db.SettingKeyMaxDailyBonusMinutes, strconv.Itoa(*input.MaxDailyBonusMinutes)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return s.GetSettings(ctx)
}

// ScheduleDefaultAllow 供 schedule.Gate 使用，读取失败时回退到启动配置。
func (s *SystemSettingService) ScheduleDefaultAllow(ctx context.Context) bool {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		log.WithError(err).Warn("load schedule default failed, using configured value")
		return s.defaults.ScheduleDefaultAllow
	}
	return settings.ScheduleDefaultAllow
}

// MaxDailyBonus 供 budget.Engine 使用，读取失败时回退到启动配置。
func (s *SystemSettingService) MaxDailyBonus(ctx context.Context) int {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		log.WithError(err).Warn("load bonus cap failed, using configured value")
		return s.defaults.MaxDailyBonusMinutes
	}
	return settings.MaxDailyBonusMinutes
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
