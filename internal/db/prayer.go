package db

import "gorm.io/gorm"

// PrayerEntry 是孩子的祷告日记
type PrayerEntry struct {
	gorm.Model
	ChildID uint   `gorm:"index;not null"`
	Title   string `gorm:"size:200;not null"`
	Content string `gorm:"type:text;not null"`
}
