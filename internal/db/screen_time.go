package db

import "gorm.io/gorm"

// DailyLimit 保存孩子的每日屏幕时间上限（分钟）
type DailyLimit struct {
	gorm.Model
	ChildID     uint `gorm:"uniqueIndex;not null"`
	Total       int  `gorm:"not null;default:0"`
	Gaming      int  `gorm:"not null;default:0"`
	Social      int  `gorm:"not null;default:0"`
	Educational int  `gorm:"not null;default:0"`
}

// UsageRecord 记录孩子某天各类别的已用分钟
// ChildID + Day 唯一，增量通过 upsert 原子累加
type UsageRecord struct {
	gorm.Model
	ChildID     uint   `gorm:"index:idx_usage_child_day,unique;not null"`
	Day         string `gorm:"size:10;index:idx_usage_child_day,unique;not null"`
	Total       int    `gorm:"not null;default:0"`
	Gaming      int    `gorm:"not null;default:0"`
	Social      int    `gorm:"not null;default:0"`
	Educational int    `gorm:"not null;default:0"`
}

// TableName 重写确保唯一索引作用到 child_id + day
func (UsageRecord) TableName() string {
	return "usage_records"
}

// RewardRecord 记录孩子某天按来源累计的奖励分钟
type RewardRecord struct {
	gorm.Model
	ChildID       uint   `gorm:"index:idx_reward_child_day,unique;not null"`
	Day           string `gorm:"size:10;index:idx_reward_child_day,unique;not null"`
	FromScripture int    `gorm:"not null;default:0"`
	FromLessons   int    `gorm:"not null;default:0"`
	FromChores    int    `gorm:"not null;default:0"`
}

func (RewardRecord) TableName() string {
	return "reward_records"
}

// RewardClaim 记录一次性奖励的领取，ChildID + Milestone 唯一
type RewardClaim struct {
	gorm.Model
	ChildID   uint   `gorm:"index:idx_reward_claim,unique;not null"`
	Milestone string `gorm:"size:120;index:idx_reward_claim,unique;not null"`
	Minutes   int
	Day       string `gorm:"size:10"`
}

// ScheduleEntry 是孩子某个星期几允许使用设备的时段，StartTime/EndTime 为 HH:MM
type ScheduleEntry struct {
	gorm.Model
	ChildID   uint   `gorm:"index;not null"`
	DayOfWeek string `gorm:"size:10;not null"`
	StartTime string `gorm:"size:5;not null"`
	EndTime   string `gorm:"size:5;not null"`
	Enabled   bool   `gorm:"not null"`
}

// 应用类别
const (
	AppCategoryGaming        = "gaming"
	AppCategorySocial        = "social"
	AppCategoryEducational   = "educational"
	AppCategoryEntertainment = "entertainment"
	AppCategoryOther         = "other"
)

// BlockedApp 记录孩子的应用及其是否被屏蔽
type BlockedApp struct {
	gorm.Model
	ChildID  uint   `gorm:"index;not null"`
	Name     string `gorm:"size:120;not null"`
	Category string `gorm:"size:20;not null"`
	Blocked  bool   `gorm:"not null"`
}
