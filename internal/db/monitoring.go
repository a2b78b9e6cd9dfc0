package db

import (
	"time"

	"gorm.io/gorm"
)

// GameSession 汇总孩子玩过的一款游戏。Approved 为 nil 表示家长尚未审核。
type GameSession struct {
	gorm.Model
	ChildID       uint     `gorm:"index;not null"`
	GameName      string   `gorm:"size:120;not null"`
	ContentRating string   `gorm:"size:20"`
	Approved      *bool
	ScreenTime    int      `gorm:"not null;default:0"`
	RedFlags      []string `gorm:"type:text;serializer:json"`
	LastPlayed    *time.Time
}

// 好友请求状态
const (
	FriendRequestPending  = "pending"
	FriendRequestApproved = "approved"
	FriendRequestDenied   = "denied"
)

// FriendRequest 是孩子发起、等待家长审批的好友请求
type FriendRequest struct {
	gorm.Model
	ChildID     uint      `gorm:"index;not null"`
	FriendName  string    `gorm:"size:120;not null"`
	Status      string    `gorm:"size:20;not null"`
	RequestedAt time.Time `gorm:"not null"`
	DecidedAt   *time.Time
}
