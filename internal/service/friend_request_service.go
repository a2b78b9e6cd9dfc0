package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shepherdtime/internal/db"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrFriendRequestNotFound 在好友请求不存在时返回
	ErrFriendRequestNotFound = errors.New("friend request not found")
	// ErrInvalidFriendRequest 在好友名称或状态不合法时返回
	ErrInvalidFriendRequest = errors.New("invalid friend request")
)

// FriendRequestService 管理孩子的好友请求及家长审批
type FriendRequestService struct {
	db     *gorm.DB
	alerts *AlertService
}

// NewFriendRequestService 构造 FriendRequestService
func NewFriendRequestService(gdb *gorm.DB, alerts *AlertService) *FriendRequestService {
	return &FriendRequestService{db: gdb, alerts: alerts}
}

// List 返回孩子的好友请求，status 为空时返回全部
func (s *FriendRequestService) List(ctx context.Context, childID uint, status string) ([]db.FriendRequest, error) {
	query := s.db.WithContext(ctx).Where("child_id = ?", childID)
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		if !validFriendStatus(status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidFriendRequest, status)
		}
		query = query.Where("status = ?", status)
	}

	var requests []db.FriendRequest
	if err := query.Order("requested_at DESC").Order("id DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}
	return requests, nil
}

// Create 发起好友请求。同名的待审批请求已存在时直接返回它。
func (s *FriendRequestService) Create(ctx context.Context, child db.User, friendName string, now time.Time) (*db.FriendRequest, error) {
	name := strings.TrimSpace(sanitizePlain(friendName))
	if name == "" {
		return nil, fmt.Errorf("%w: friend name is required", ErrInvalidFriendRequest)
	}

	var existing db.FriendRequest
	err := s.db.WithContext(ctx).
		Where("child_id = ? AND LOWER(friend_name) = ? AND status = ?", child.ID, normalizeName(name), db.FriendRequestPending).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find friend request: %w", err)
	}

	request := db.FriendRequest{
		ChildID:     child.ID,
		FriendName:  name,
		Status:      db.FriendRequestPending,
		RequestedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	if s.alerts != nil && child.ParentID != nil {
		childID := child.ID
		content := fmt.Sprintf("%s wants to add %s as a friend", child.DisplayName, name)
		if _, err := s.alerts.Raise(ctx, *child.ParentID, &childID, db.AlertTypeFriendRequest, content); err != nil {
			log.WithError(err).WithField("child_id", child.ID).Warn("raise friend request alert failed")
		}
	}
	return &request, nil
}

// Decide 记录家长的审批结果，status 只能是 approved 或 denied
func (s *FriendRequestService) Decide(ctx context.Context, childID, requestID uint, status string, now time.Time) (*db.FriendRequest, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != db.FriendRequestApproved && status != db.FriendRequestDenied {
		return nil, fmt.Errorf("%w: status must be approved or denied", ErrInvalidFriendRequest)
	}

	var request db.FriendRequest
	if err := s.db.WithContext(ctx).Where("child_id = ?", childID).First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFriendRequestNotFound
		}
		return nil, fmt.Errorf("get friend request: %w", err)
	}

	decided := now
	if err := s.db.WithContext(ctx).Model(&request).Updates(map[string]interface{}{
		"status":     status,
		"decided_at": &decided,
	}).Error; err != nil {
		return nil, fmt.Errorf("update friend request: %w", err)
	}
	request.Status = status
	request.DecidedAt = &decided
	log.WithFields(log.Fields{"child_id": childID, "friend": request.FriendName, "status": status}).Info("friend request decided")
	return &request, nil
}

func validFriendStatus(status string) bool {
	switch status {
	case db.FriendRequestPending, db.FriendRequestApproved, db.FriendRequestDenied:
		return true
	}
	return false
}
