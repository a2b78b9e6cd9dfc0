package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shepherdtime/internal/db"
	"gorm.io/gorm"
)

// ErrInvalidPrayer 在祷告内容为空时返回
var ErrInvalidPrayer = errors.New("prayer content is required")

// PrayerService 管理孩子的祷告日记
type PrayerService struct {
	db *gorm.DB
}

// NewPrayerService 构造 PrayerService
func NewPrayerService(gdb *gorm.DB) *PrayerService {
	return &PrayerService{db: gdb}
}

// Create 保存一条祷告，标题与内容中的 HTML 会被去除
func (s *PrayerService) Create(ctx context.Context, childID uint, title, content string) (*db.PrayerEntry, error) {
	cleanContent := strings.TrimSpace(sanitizePlain(content))
	if cleanContent == "" {
		return nil, ErrInvalidPrayer
	}
	cleanTitle := strings.TrimSpace(sanitizePlain(title))
	if cleanTitle == "" {
		cleanTitle = "Prayer"
	}

	entry := db.PrayerEntry{ChildID: childID, Title: cleanTitle, Content: cleanContent}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create prayer: %w", err)
	}
	return &entry, nil
}

// List 返回孩子的祷告，最新的在前
func (s *PrayerService) List(ctx context.Context, childID uint) ([]db.PrayerEntry, error) {
	var entries []db.PrayerEntry
	if err := s.db.WithContext(ctx).Where("child_id = ?", childID).
		Order("created_at DESC").Order("id DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list prayers: %w", err)
	}
	return entries, nil
}
