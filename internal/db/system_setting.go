package db

import "gorm.io/gorm"

// SystemSetting 存储可在运行时调整的系统级键值对。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyScheduleDefaultAllow 表示某天没有时段配置时是否放行。
	SettingKeyScheduleDefaultAllow = "schedule_default_allow"
	// SettingKeyMaxDailyBonusMinutes 表示每日奖励分钟上限，0 为不限。
	SettingKeyMaxDailyBonusMinutes = "max_daily_bonus_minutes"
)
