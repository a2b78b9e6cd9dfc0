package db

import "gorm.io/gorm"

// 提醒类型
const (
	AlertTypeScreenTimeExhausted = "screen_time_exhausted"
	AlertTypeBlockedApp          = "blocked_app"
	AlertTypeGameReview          = "game_review"
	AlertTypeDeniedGame          = "denied_game"
	AlertTypeFriendRequest       = "friend_request"
)

// Alert 是推送给家长的提醒
type Alert struct {
	gorm.Model
	ParentID uint   `gorm:"index;not null"`
	ChildID  *uint  `gorm:"index"`
	Type     string `gorm:"size:40;not null"`
	Content  string `gorm:"type:text;not null"`
	Read     bool   `gorm:"not null;default:false"`
	Handled  bool   `gorm:"not null;default:false"`
}
