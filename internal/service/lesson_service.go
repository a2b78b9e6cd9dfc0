package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/scripture"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrLessonNotFound 在课程不存在时返回
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrInvalidScore 在分数不在 0-100 时返回
	ErrInvalidScore = errors.New("score must be between 0 and 100")
)

// LessonView 是带渲染内容的课程
type LessonView struct {
	Lesson db.BibleLesson `json:"lesson"`
	HTML   string         `json:"html"`
}

// LessonCompletion 是完成课程后的结果
type LessonCompletion struct {
	Progress      db.LessonProgress `json:"progress"`
	MinutesEarned int               `json:"minutes_earned"`
}

// LessonService 负责圣经课程与学习进度
type LessonService struct {
	db     *gorm.DB
	engine *budget.Engine
}

// NewLessonService 构造 LessonService
func NewLessonService(gdb *gorm.DB, engine *budget.Engine) *LessonService {
	return &LessonService{db: gdb, engine: engine}
}

// List 返回全部课程
func (s *LessonService) List(ctx context.Context) ([]db.BibleLesson, error) {
	var lessons []db.BibleLesson
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// Get 返回课程及渲染后的 HTML
func (s *LessonService) Get(ctx context.Context, id uint) (LessonView, error) {
	var lesson db.BibleLesson
	if err := s.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LessonView{}, ErrLessonNotFound
		}
		return LessonView{}, fmt.Errorf("get lesson: %w", err)
	}

	rendered, err := RenderMarkdown(lesson.Content)
	if err != nil {
		return LessonView{}, fmt.Errorf("render lesson: %w", err)
	}
	return LessonView{Lesson: lesson, HTML: rendered}, nil
}

// Progress 返回孩子的课程进度
func (s *LessonService) Progress(ctx context.Context, childID uint) ([]db.LessonProgress, error) {
	var progress []db.LessonProgress
	if err := s.db.WithContext(ctx).Preload("Lesson").
		Where("child_id = ?", childID).
		Order("lesson_id ASC").
		Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("list lesson progress: %w", err)
	}
	return progress, nil
}

// Complete 标记课程完成。只有第一次完成获得 LessonBonus，之后只更新分数。
func (s *LessonService) Complete(ctx context.Context, childID, lessonID uint, score *int, now time.Time) (LessonCompletion, error) {
	if score != nil && (*score < 0 || *score > 100) {
		return LessonCompletion{}, ErrInvalidScore
	}
	if _, err := s.Get(ctx, lessonID); err != nil {
		return LessonCompletion{}, err
	}

	seed := db.LessonProgress{ChildID: childID, LessonID: lessonID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "child_id"}, {Name: "lesson_id"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return LessonCompletion{}, fmt.Errorf("create lesson progress: %w", err)
	}

	var before db.LessonProgress
	if err := s.db.WithContext(ctx).
		Where("child_id = ? AND lesson_id = ?", childID, lessonID).
		First(&before).Error; err != nil {
		return LessonCompletion{}, fmt.Errorf("load lesson progress: %w", err)
	}

	updates := map[string]interface{}{"completed": true, "completed_at": now}
	if score != nil {
		updates["score"] = *score
	}
	first := s.db.WithContext(ctx).Model(&db.LessonProgress{}).
		Where("child_id = ? AND lesson_id = ? AND completed = ?", childID, lessonID, false).
		Updates(updates)
	if first.Error != nil {
		return LessonCompletion{}, fmt.Errorf("complete lesson: %w", first.Error)
	}

	var result LessonCompletion
	if first.RowsAffected == 1 {
		if _, err := s.engine.CreditReward(ctx, childID, budget.SourceLessons, scripture.LessonBonus, now); err != nil {
			if undo := s.db.WithContext(ctx).Model(&db.LessonProgress{}).
				Where("id = ?", before.ID).
				Updates(map[string]interface{}{
					"completed":    false,
					"completed_at": before.CompletedAt,
					"score":        before.Score,
				}).Error; undo != nil {
				log.WithError(undo).WithField("lesson_id", lessonID).Error("reset lesson completion")
			}
			return LessonCompletion{}, err
		}
		result.MinutesEarned = scripture.LessonBonus
	} else if score != nil {
		if err := s.db.WithContext(ctx).Model(&db.LessonProgress{}).
			Where("child_id = ? AND lesson_id = ?", childID, lessonID).
			Update("score", *score).Error; err != nil {
			return LessonCompletion{}, fmt.Errorf("update lesson score: %w", err)
		}
	}

	if err := s.db.WithContext(ctx).Preload("Lesson").
		Where("child_id = ? AND lesson_id = ?", childID, lessonID).
		First(&result.Progress).Error; err != nil {
		return LessonCompletion{}, fmt.Errorf("reload lesson progress: %w", err)
	}
	return result, nil
}
