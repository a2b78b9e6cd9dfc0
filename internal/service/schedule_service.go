package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/schedule"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrScheduleNotFound 在时段不存在或不属于该孩子时返回
var ErrScheduleNotFound = errors.New("schedule entry not found")

// ScheduleInput 定义创建/更新时段的字段
type ScheduleInput struct {
	DayOfWeek string
	StartTime string
	EndTime   string
	Enabled   bool
}

// ScheduleService 管理孩子的允许使用时段，同时作为 schedule.Gate 的数据源
type ScheduleService struct {
	db *gorm.DB
}

var _ schedule.WindowSource = (*ScheduleService)(nil)

// NewScheduleService 构造 ScheduleService
func NewScheduleService(gdb *gorm.DB) *ScheduleService {
	return &ScheduleService{db: gdb}
}

// List 返回孩子的全部时段
func (s *ScheduleService) List(ctx context.Context, childID uint) ([]db.ScheduleEntry, error) {
	var entries []db.ScheduleEntry
	if err := s.db.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

// Create 校验并保存新时段
func (s *ScheduleService) Create(ctx context.Context, childID uint, input ScheduleInput) (*db.ScheduleEntry, error) {
	entry := db.ScheduleEntry{ChildID: childID}
	if err := applyScheduleInput(&entry, input); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create schedule entry: %w", err)
	}
	return &entry, nil
}

// Update 修改已有时段
func (s *ScheduleService) Update(ctx context.Context, childID, id uint, input ScheduleInput) (*db.ScheduleEntry, error) {
	entry, err := s.get(ctx, childID, id)
	if err != nil {
		return nil, err
	}
	if err := applyScheduleInput(entry, input); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(entry).Error; err != nil {
		return nil, fmt.Errorf("update schedule entry: %w", err)
	}
	return entry, nil
}

// Delete 删除时段
func (s *ScheduleService) Delete(ctx context.Context, childID, id uint) error {
	result := s.db.WithContext(ctx).Where("child_id = ?", childID).Delete(&db.ScheduleEntry{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete schedule entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// Windows 把存储的时段转换为 schedule.Window，无法解析的记录会被跳过并记录日志
func (s *ScheduleService) Windows(ctx context.Context, childID uint) ([]schedule.Window, error) {
	entries, err := s.List(ctx, childID)
	if err != nil {
		return nil, err
	}

	windows := make([]schedule.Window, 0, len(entries))
	for _, entry := range entries {
		w, err := schedule.NewWindow(entry.DayOfWeek, entry.StartTime, entry.EndTime, entry.Enabled)
		if err != nil {
			log.WithFields(log.Fields{
				"child_id": childID,
				"entry_id": entry.ID,
			}).WithError(err).Warn("skip invalid schedule entry")
			continue
		}
		w.ID = entry.ID
		windows = append(windows, w)
	}
	return windows, nil
}

func (s *ScheduleService) get(ctx context.Context, childID, id uint) (*db.ScheduleEntry, error) {
	var entry db.ScheduleEntry
	if err := s.db.WithContext(ctx).Where("child_id = ?", childID).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("get schedule entry: %w", err)
	}
	return &entry, nil
}

func applyScheduleInput(entry *db.ScheduleEntry, input ScheduleInput) error {
	w, err := schedule.NewWindow(input.DayOfWeek, input.StartTime, input.EndTime, input.Enabled)
	if err != nil {
		return err
	}
	entry.DayOfWeek = schedule.WeekdayName(w.DayOfWeek)
	entry.StartTime = w.Start.String()
	entry.EndTime = w.End.String()
	entry.Enabled = input.Enabled
	return nil
}
