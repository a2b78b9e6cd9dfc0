package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/db"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrGameNotFound 在游戏记录不存在时返回
	ErrGameNotFound = errors.New("game not found")
	// ErrInvalidGame 在游戏名称或时长不合法时返回
	ErrInvalidGame = errors.New("invalid game report")
)

// GameReport 是一次游戏记录上报
type GameReport struct {
	Name          string
	ContentRating string
	Minutes       int
	RedFlags      []string
	PlayedAt      time.Time
}

// GameReportResult 是上报后的游戏状态。Allowed 为 false 表示家长已拒绝该游戏。
type GameReportResult struct {
	Game    *db.GameSession `json:"game"`
	Allowed bool            `json:"allowed"`
	Usage   *UsageResult    `json:"usage,omitempty"`
}

// GameService 记录孩子玩过的游戏并交给家长审核
type GameService struct {
	db         *gorm.DB
	screenTime *ScreenTimeService
	alerts     *AlertService
}

// NewGameService 构造 GameService。游戏时长通过 screenTime 记入 gaming 用量。
func NewGameService(gdb *gorm.DB, screenTime *ScreenTimeService, alerts *AlertService) *GameService {
	return &GameService{db: gdb, screenTime: screenTime, alerts: alerts}
}

// List 返回孩子的游戏记录，最近玩过的在前
func (s *GameService) List(ctx context.Context, childID uint) ([]db.GameSession, error) {
	var games []db.GameSession
	if err := s.db.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("last_played DESC").Order("id ASC").
		Find(&games).Error; err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

// Report 记录一次游戏。首次出现的游戏会提醒家长审核，已被拒绝的游戏会再次提醒。
// Minutes 大于 0 时同时记入当天的 gaming 用量。
func (s *GameService) Report(ctx context.Context, child db.User, report GameReport) (GameReportResult, error) {
	name := strings.TrimSpace(report.Name)
	if name == "" {
		return GameReportResult{}, fmt.Errorf("%w: name is required", ErrInvalidGame)
	}
	if report.Minutes < 0 {
		return GameReportResult{}, fmt.Errorf("%w: minutes must not be negative", ErrInvalidGame)
	}

	var result GameReportResult
	if report.Minutes > 0 && s.screenTime != nil {
		usage, err := s.screenTime.LogUsage(ctx, child, budget.CategoryGaming, report.Minutes, report.PlayedAt)
		if err != nil {
			return GameReportResult{}, err
		}
		result.Usage = &usage
	}

	game, created, err := s.findOrCreate(ctx, child.ID, name, report.ContentRating)
	if err != nil {
		return GameReportResult{}, err
	}

	played := report.PlayedAt
	updates := map[string]interface{}{
		"screen_time": gorm.Expr("screen_time + ?", report.Minutes),
		"last_played": &played,
	}
	if rating := strings.TrimSpace(report.ContentRating); rating != "" {
		updates["content_rating"] = rating
	}
	if flags := mergeFlags(game.RedFlags, report.RedFlags); len(flags) != len(game.RedFlags) {
		game.RedFlags = flags
		if err := s.db.WithContext(ctx).Model(game).Select("red_flags").Updates(game).Error; err != nil {
			return GameReportResult{}, fmt.Errorf("update game flags: %w", err)
		}
	}
	if err := s.db.WithContext(ctx).Model(&db.GameSession{}).Where("id = ?", game.ID).Updates(updates).Error; err != nil {
		return GameReportResult{}, fmt.Errorf("update game: %w", err)
	}
	if err := s.db.WithContext(ctx).First(game, game.ID).Error; err != nil {
		return GameReportResult{}, fmt.Errorf("reload game: %w", err)
	}

	result.Game = game
	result.Allowed = game.Approved == nil || *game.Approved

	switch {
	case created:
		s.notify(ctx, child, db.AlertTypeGameReview, fmt.Sprintf("%s started playing %s, waiting for review", child.DisplayName, game.GameName))
	case !result.Allowed:
		s.notify(ctx, child, db.AlertTypeDeniedGame, fmt.Sprintf("%s played denied game %s", child.DisplayName, game.GameName))
	}
	return result, nil
}

// SetApproval 记录家长对游戏的审核结果
func (s *GameService) SetApproval(ctx context.Context, childID, gameID uint, approved bool) (*db.GameSession, error) {
	var game db.GameSession
	if err := s.db.WithContext(ctx).Where("child_id = ?", childID).First(&game, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&game).Update("approved", approved).Error; err != nil {
		return nil, fmt.Errorf("update game approval: %w", err)
	}
	game.Approved = &approved
	log.WithFields(log.Fields{"child_id": childID, "game": game.GameName, "approved": approved}).Info("game reviewed")
	return &game, nil
}

func (s *GameService) findOrCreate(ctx context.Context, childID uint, name, rating string) (*db.GameSession, bool, error) {
	var game db.GameSession
	err := s.db.WithContext(ctx).
		Where("child_id = ? AND LOWER(game_name) = ?", childID, normalizeName(name)).
		First(&game).Error
	if err == nil {
		return &game, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find game: %w", err)
	}

	game = db.GameSession{ChildID: childID, GameName: name, ContentRating: strings.TrimSpace(rating)}
	if err := s.db.WithContext(ctx).Create(&game).Error; err != nil {
		return nil, false, fmt.Errorf("create game: %w", err)
	}
	return &game, true, nil
}

func (s *GameService) notify(ctx context.Context, child db.User, alertType, content string) {
	if s.alerts == nil || child.ParentID == nil {
		return
	}
	childID := child.ID
	if _, err := s.alerts.Raise(ctx, *child.ParentID, &childID, alertType, content); err != nil {
		log.WithError(err).WithField("child_id", child.ID).Warn("raise game alert failed")
	}
}

// mergeFlags 合并去重，保留原有顺序
func mergeFlags(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, flag := range append(append([]string{}, existing...), incoming...) {
		flag = strings.TrimSpace(flag)
		key := strings.ToLower(flag)
		if flag == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, flag)
	}
	return merged
}
