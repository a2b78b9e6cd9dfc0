package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shepherdtime/internal/db"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrAlertNotFound 在提醒不存在或不属于该家长时返回
var ErrAlertNotFound = errors.New("alert not found")

// AlertService 管理推送给家长的提醒
type AlertService struct {
	db *gorm.DB
}

// AlertUpdate 描述可修改的提醒状态，nil 表示保持不变
type AlertUpdate struct {
	Read    *bool
	Handled *bool
}

// NewAlertService 构造 AlertService
func NewAlertService(gdb *gorm.DB) *AlertService {
	return &AlertService{db: gdb}
}

// Raise 为家长创建提醒
func (s *AlertService) Raise(ctx context.Context, parentID uint, childID *uint, alertType, content string) (*db.Alert, error) {
	alert := db.Alert{ParentID: parentID, ChildID: childID, Type: alertType, Content: content}
	if err := s.db.WithContext(ctx).Create(&alert).Error; err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	log.WithFields(log.Fields{"parent_id": parentID, "type": alertType}).Info("alert raised")
	return &alert, nil
}

// List 返回家长的提醒，unreadOnly 为 true 时只返回未读
func (s *AlertService) List(ctx context.Context, parentID uint, unreadOnly bool) ([]db.Alert, error) {
	query := s.db.WithContext(ctx).Where("parent_id = ?", parentID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var alerts []db.Alert
	if err := query.Order("created_at DESC").Order("id DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// Update 修改提醒的已读/已处理状态
func (s *AlertService) Update(ctx context.Context, parentID, alertID uint, update AlertUpdate) (*db.Alert, error) {
	var alert db.Alert
	if err := s.db.WithContext(ctx).Where("id = ? AND parent_id = ?", alertID, parentID).First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("find alert: %w", err)
	}

	if update.Read != nil {
		alert.Read = *update.Read
	}
	if update.Handled != nil {
		alert.Handled = *update.Handled
	}
	if err := s.db.WithContext(ctx).Save(&alert).Error; err != nil {
		return nil, fmt.Errorf("update alert: %w", err)
	}
	return &alert, nil
}
