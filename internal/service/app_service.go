package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shepherdtime/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrAppNotFound 在应用记录不存在时返回
	ErrAppNotFound = errors.New("app not found")
	// ErrInvalidApp 在应用名称或类别不合法时返回
	ErrInvalidApp = errors.New("invalid app")
)

var appCategories = map[string]struct{}{
	db.AppCategoryGaming:        {},
	db.AppCategorySocial:        {},
	db.AppCategoryEducational:   {},
	db.AppCategoryEntertainment: {},
	db.AppCategoryOther:         {},
}

// AppInput 定义新增应用时的字段
type AppInput struct {
	Name     string
	Category string
	Blocked  bool
}

// AppCheck 是应用检查结果
type AppCheck struct {
	Name    string `json:"name"`
	Known   bool   `json:"known"`
	Blocked bool   `json:"blocked"`
}

// AppService 管理孩子的应用屏蔽列表
type AppService struct {
	db     *gorm.DB
	alerts *AlertService
}

// NewAppService 构造 AppService，alerts 为空时不发送屏蔽提醒
func NewAppService(gdb *gorm.DB, alerts *AlertService) *AppService {
	return &AppService{db: gdb, alerts: alerts}
}

// List 返回孩子的应用列表
func (s *AppService) List(ctx context.Context, childID uint) ([]db.BlockedApp, error) {
	var apps []db.BlockedApp
	if err := s.db.WithContext(ctx).Where("child_id = ?", childID).Order("name ASC").Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	return apps, nil
}

// Create 新增应用记录，同名应用已存在时更新其类别与屏蔽状态
func (s *AppService) Create(ctx context.Context, childID uint, input AppInput) (*db.BlockedApp, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidApp)
	}
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		category = db.AppCategoryOther
	}
	if _, ok := appCategories[category]; !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidApp, input.Category)
	}

	existing, err := s.find(ctx, childID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Category = category
		existing.Blocked = input.Blocked
		if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, fmt.Errorf("update app: %w", err)
		}
		return existing, nil
	}

	app := db.BlockedApp{ChildID: childID, Name: name, Category: category, Blocked: input.Blocked}
	if err := s.db.WithContext(ctx).Create(&app).Error; err != nil {
		return nil, fmt.Errorf("create app: %w", err)
	}
	return &app, nil
}

// SetBlocked 切换应用的屏蔽状态
func (s *AppService) SetBlocked(ctx context.Context, childID, appID uint, blocked bool) (*db.BlockedApp, error) {
	var app db.BlockedApp
	if err := s.db.WithContext(ctx).Where("child_id = ?", childID).First(&app, appID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, fmt.Errorf("get app: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&app).Update("blocked", blocked).Error; err != nil {
		return nil, fmt.Errorf("update app: %w", err)
	}
	app.Blocked = blocked
	return &app, nil
}

// Check 判断应用是否被屏蔽。孩子尝试打开被屏蔽的应用时给家长发送提醒。
func (s *AppService) Check(ctx context.Context, child db.User, name string) (AppCheck, error) {
	result := AppCheck{Name: strings.TrimSpace(name)}
	if result.Name == "" {
		return result, fmt.Errorf("%w: name is required", ErrInvalidApp)
	}

	app, err := s.find(ctx, child.ID, result.Name)
	if err != nil {
		return result, err
	}
	if app == nil {
		return result, nil
	}

	result.Known = true
	result.Blocked = app.Blocked
	if app.Blocked && s.alerts != nil && child.ParentID != nil {
		childID := child.ID
		content := fmt.Sprintf("%s tried to open blocked app %s", child.DisplayName, app.Name)
		if _, err := s.alerts.Raise(ctx, *child.ParentID, &childID, db.AlertTypeBlockedApp, content); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (s *AppService) find(ctx context.Context, childID uint, name string) (*db.BlockedApp, error) {
	var app db.BlockedApp
	err := s.db.WithContext(ctx).
		Where("child_id = ? AND LOWER(name) = ?", childID, normalizeName(name)).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find app: %w", err)
	}
	return &app, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
