package db

import (
	"time"

	"gorm.io/gorm"
)

// ScripturePassage 是分配给孩子背诵的经文及其进度
// Progress 保存最近一次尝试的正确率
type ScripturePassage struct {
	gorm.Model
	ChildID       uint   `gorm:"index;not null"`
	Reference     string `gorm:"size:120;not null"`
	Content       string `gorm:"type:text;not null"`
	Memorized     bool   `gorm:"not null;default:false"`
	Progress      int    `gorm:"not null;default:0"`
	LastPracticed *time.Time
}

// MemorizationLog 标记孩子当天至少成功背诵过一次，用于计算连续天数
type MemorizationLog struct {
	gorm.Model
	ChildID uint   `gorm:"index:idx_memorization_child_day,unique;not null"`
	Day     string `gorm:"size:10;index:idx_memorization_child_day,unique;not null"`
}
