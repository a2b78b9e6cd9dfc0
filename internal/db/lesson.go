package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// BibleLesson 是圣经课程，Content 为 Markdown
type BibleLesson struct {
	gorm.Model
	Title               string `gorm:"size:200;not null"`
	Content             string `gorm:"type:text;not null"`
	ScriptureReferences string `gorm:"size:200"`
	AgeRange            string `gorm:"size:20"`
}

// LessonProgress 记录孩子的课程完成情况，ChildID + LessonID 唯一
type LessonProgress struct {
	gorm.Model
	ChildID     uint        `gorm:"index:idx_lesson_progress,unique;not null"`
	LessonID    uint        `gorm:"index:idx_lesson_progress,unique;not null"`
	Lesson      BibleLesson `gorm:"constraint:OnDelete:CASCADE"`
	Completed   bool        `gorm:"not null;default:false"`
	Score       *int
	CompletedAt *time.Time
}

var defaultLessons = []BibleLesson{
	{
		Title:               "The Creation Story",
		Content:             "In the beginning, God created the heavens and the earth.\n\nGod created the world in six days and rested on the seventh. He created light, land, plants, animals, and people.\n\nGod saw all that He had made, and it was **very good**.",
		AgeRange:            "6-10",
		ScriptureReferences: "Genesis 1",
	},
	{
		Title:               "Noah and the Ark",
		Content:             "God told Noah to build an ark to save his family and animals from the flood.\n\nNoah obeyed even when others laughed at him. God protected them during the storm.\n\nThe rainbow was God's promise to never flood the whole earth again.",
		AgeRange:            "6-12",
		ScriptureReferences: "Genesis 6-9",
	},
	{
		Title:               "Jesus Feeds 5,000",
		Content:             "A crowd followed Jesus, and they were hungry.\n\nA boy had five loaves and two fish. Jesus gave thanks and fed the whole crowd.\n\nEveryone ate and there were baskets of food left over.",
		AgeRange:            "5-11",
		ScriptureReferences: "John 6:1-14",
	},
	{
		Title:               "The Ten Commandments",
		Content:             "God gave Moses the Ten Commandments on Mount Sinai.\n\nThese commandments teach us how to love God and others.\n\nWe show our love for God by obeying His Word.",
		AgeRange:            "8-13",
		ScriptureReferences: "Exodus 20",
	},
}

// SeedLessons 在课程表为空时写入内置课程
func SeedLessons(gdb *gorm.DB) error {
	if gdb == nil {
		return errors.New("database not initialized")
	}

	var count int64
	if err := gdb.Model(&BibleLesson{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	lessons := make([]BibleLesson, len(defaultLessons))
	copy(lessons, defaultLessons)
	return gdb.Create(&lessons).Error
}
