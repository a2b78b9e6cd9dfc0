package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/scripture"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrPassageNotFound 在经文不存在或不属于该孩子时返回
	ErrPassageNotFound = errors.New("scripture passage not found")
	// ErrInvalidPassage 在经文引用或内容为空时返回
	ErrInvalidPassage = errors.New("invalid scripture passage")
	// ErrChapterIncomplete 在章节还有未背熟的经文时返回
	ErrChapterIncomplete = errors.New("chapter not fully memorized")
	// ErrAlreadyClaimed 在一次性奖励已经领取过时返回
	ErrAlreadyClaimed = errors.New("reward already claimed")
)

// PassageInput 定义分配经文时的字段
type PassageInput struct {
	Reference string
	Content   string
}

// AttemptResult 是一次背诵尝试的结果
type AttemptResult struct {
	Passage       db.ScripturePassage `json:"passage"`
	Grade         scripture.Result    `json:"grade"`
	MinutesEarned int                 `json:"minutes_earned"`
	Milestones    []string            `json:"milestones,omitempty"`
	CurrentStreak int                 `json:"current_streak"`
}

// ChapterClaim 是章节奖励领取结果
type ChapterClaim struct {
	Chapter       string `json:"chapter"`
	Passages      int    `json:"passages"`
	MinutesEarned int    `json:"minutes_earned"`
}

// ScriptureService 负责经文分配、背诵评分与奖励发放
type ScriptureService struct {
	db     *gorm.DB
	engine *budget.Engine
}

// NewScriptureService 构造 ScriptureService
func NewScriptureService(gdb *gorm.DB, engine *budget.Engine) *ScriptureService {
	return &ScriptureService{db: gdb, engine: engine}
}

// Assign 为孩子分配需要背诵的经文
func (s *ScriptureService) Assign(ctx context.Context, childID uint, input PassageInput) (*db.ScripturePassage, error) {
	reference := scripture.NormalizeChapter(input.Reference)
	content := strings.TrimSpace(input.Content)
	if reference == "" || content == "" {
		return nil, fmt.Errorf("%w: reference and content are required", ErrInvalidPassage)
	}

	passage := db.ScripturePassage{ChildID: childID, Reference: reference, Content: content}
	if err := s.db.WithContext(ctx).Create(&passage).Error; err != nil {
		return nil, fmt.Errorf("create scripture passage: %w", err)
	}
	return &passage, nil
}

// List 返回孩子的经文
func (s *ScriptureService) List(ctx context.Context, childID uint) ([]db.ScripturePassage, error) {
	var passages []db.ScripturePassage
	if err := s.db.WithContext(ctx).Where("child_id = ?", childID).Order("id ASC").Find(&passages).Error; err != nil {
		return nil, fmt.Errorf("list scripture passages: %w", err)
	}
	return passages, nil
}

// Attempt 为一次背诵评分并更新进度。
// 经文第一次背熟时获得 VerseBonus，随后检查五节与连续七天的一次性奖励。
func (s *ScriptureService) Attempt(ctx context.Context, childID, passageID uint, attempt string, now time.Time) (AttemptResult, error) {
	var passage db.ScripturePassage
	if err := s.db.WithContext(ctx).Where("child_id = ?", childID).First(&passage, passageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttemptResult{}, ErrPassageNotFound
		}
		return AttemptResult{}, fmt.Errorf("get scripture passage: %w", err)
	}

	grade := scripture.Grade(passage.Content, attempt)
	result := AttemptResult{Grade: grade}

	practiced := now
	if err := s.db.WithContext(ctx).Model(&passage).Updates(map[string]interface{}{
		"progress":       grade.PercentCorrect,
		"last_practiced": &practiced,
	}).Error; err != nil {
		return AttemptResult{}, fmt.Errorf("update scripture progress: %w", err)
	}

	if grade.Memorized {
		first := s.db.WithContext(ctx).Model(&db.ScripturePassage{}).
			Where("id = ? AND memorized = ?", passage.ID, false).
			Update("memorized", true)
		if first.Error != nil {
			return AttemptResult{}, fmt.Errorf("mark passage memorized: %w", first.Error)
		}
		if first.RowsAffected == 1 {
			if _, err := s.engine.CreditReward(ctx, childID, budget.SourceScripture, scripture.VerseBonus, now); err != nil {
				// 撤销标记，下次背熟时仍能领取
				if undo := s.db.WithContext(ctx).Model(&db.ScripturePassage{}).
					Where("id = ?", passage.ID).
					Update("memorized", false).Error; undo != nil {
					log.WithError(undo).WithField("passage_id", passage.ID).Error("reset memorized flag")
				}
				return AttemptResult{}, err
			}
			result.MinutesEarned += scripture.VerseBonus
		}

		streak, err := s.logMemorization(ctx, childID, now)
		if err != nil {
			return AttemptResult{}, err
		}
		result.CurrentStreak = streak

		earned, milestones, err := s.claimMilestones(ctx, childID, streak, now)
		if err != nil {
			return AttemptResult{}, err
		}
		result.MinutesEarned += earned
		result.Milestones = milestones
	}

	if err := s.db.WithContext(ctx).First(&result.Passage, passage.ID).Error; err != nil {
		return AttemptResult{}, fmt.Errorf("reload scripture passage: %w", err)
	}
	return result, nil
}

// ClaimChapter 在孩子背熟某章全部已分配经文后发放一次性章节奖励
func (s *ScriptureService) ClaimChapter(ctx context.Context, childID uint, chapter string, now time.Time) (ChapterClaim, error) {
	target := scripture.NormalizeChapter(chapter)
	if target == "" {
		return ChapterClaim{}, fmt.Errorf("%w: chapter is required", ErrInvalidPassage)
	}

	passages, err := s.List(ctx, childID)
	if err != nil {
		return ChapterClaim{}, err
	}

	claim := ChapterClaim{Chapter: target}
	for _, p := range passages {
		if !strings.EqualFold(scripture.ChapterOf(p.Reference), target) {
			continue
		}
		if !p.Memorized {
			return ChapterClaim{}, fmt.Errorf("%w: %s is not memorized", ErrChapterIncomplete, p.Reference)
		}
		claim.Passages++
	}
	if claim.Passages == 0 {
		return ChapterClaim{}, fmt.Errorf("%w: no passages assigned for %s", ErrChapterIncomplete, target)
	}

	claimed, err := s.claim(ctx, childID, scripture.ChapterMilestone(target), scripture.ChapterBonus, now)
	if err != nil {
		return ChapterClaim{}, err
	}
	if !claimed {
		return ChapterClaim{}, ErrAlreadyClaimed
	}
	claim.MinutesEarned = scripture.ChapterBonus
	return claim, nil
}

// logMemorization 记录当天背诵成功并返回当前连续天数
func (s *ScriptureService) logMemorization(ctx context.Context, childID uint, now time.Time) (int, error) {
	entry := db.MemorizationLog{ChildID: childID, Day: s.engine.DayKey(now)}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "child_id"}, {Name: "day"}},
		DoNothing: true,
	}).Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("log memorization: %w", err)
	}

	var rows []db.MemorizationLog
	if err := s.db.WithContext(ctx).Where("child_id = ?", childID).Order("day ASC").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("load memorization logs: %w", err)
	}

	days := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		day, err := time.ParseInLocation(budget.DayLayout, row.Day, time.UTC)
		if err != nil {
			log.WithField("day", row.Day).WithError(err).Warn("skip invalid memorization log")
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	current, _ := scripture.CalculateStreaks(days)
	return current, nil
}

func (s *ScriptureService) claimMilestones(ctx context.Context, childID uint, streak int, now time.Time) (int, []string, error) {
	var earned int
	var milestones []string

	var memorized int64
	if err := s.db.WithContext(ctx).Model(&db.ScripturePassage{}).
		Where("child_id = ? AND memorized = ?", childID, true).
		Count(&memorized).Error; err != nil {
		return 0, nil, fmt.Errorf("count memorized passages: %w", err)
	}

	if memorized >= scripture.FiveVersesTarget {
		claimed, err := s.claim(ctx, childID, scripture.MilestoneFiveVerses, scripture.FiveVersesBonus, now)
		if err != nil {
			return 0, nil, err
		}
		if claimed {
			earned += scripture.FiveVersesBonus
			milestones = append(milestones, scripture.MilestoneFiveVerses)
		}
	}

	if streak >= scripture.StreakTarget {
		claimed, err := s.claim(ctx, childID, scripture.MilestoneStreak, scripture.StreakBonus, now)
		if err != nil {
			return 0, nil, err
		}
		if claimed {
			earned += scripture.StreakBonus
			milestones = append(milestones, scripture.MilestoneStreak)
		}
	}

	return earned, milestones, nil
}

// claim 写入一次性奖励记录并记入奖励账目。记录已存在时返回 false。
// 记账失败时删除刚写入的领取记录，保证之后可以重试。
func (s *ScriptureService) claim(ctx context.Context, childID uint, milestone string, minutes int, now time.Time) (bool, error) {
	record := db.RewardClaim{ChildID: childID, Milestone: milestone, Minutes: minutes, Day: s.engine.DayKey(now)}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "child_id"}, {Name: "milestone"}},
		DoNothing: true,
	}).Create(&record)
	if result.Error != nil {
		return false, fmt.Errorf("create reward claim: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	if _, err := s.engine.CreditReward(ctx, childID, budget.SourceScripture, minutes, now); err != nil {
		if delErr := s.db.WithContext(ctx).Unscoped().Delete(&record).Error; delErr != nil {
			log.WithError(delErr).WithField("milestone", milestone).Error("rollback reward claim failed")
		}
		return false, err
	}

	log.WithFields(log.Fields{"child_id": childID, "milestone": milestone, "minutes": minutes}).Info("milestone claimed")
	return true, nil
}
