package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shepherdtime/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 在账号不存在时返回
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken 在用户名已被占用时返回
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials 在用户名或密码错误时返回
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrForbidden 在家长访问不属于自己的孩子时返回
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidAccount 在注册信息不完整时返回
	ErrInvalidAccount = errors.New("invalid account details")
)

const minPasswordLength = 6

// AccountInput 定义注册家长或添加孩子时的输入
type AccountInput struct {
	Username    string
	Password    string
	Email       string
	DisplayName string
}

// AccountService 负责家长与孩子账号
type AccountService struct {
	db *gorm.DB
}

// NewAccountService 构造 AccountService
func NewAccountService(gdb *gorm.DB) *AccountService {
	return &AccountService{db: gdb}
}

// SignupParent 注册家长账号
func (s *AccountService) SignupParent(ctx context.Context, input AccountInput) (*db.User, error) {
	return s.create(ctx, input, db.RoleParent, nil)
}

// CreateChild 为家长添加孩子账号，孩子的 ParentID 之后不可修改
func (s *AccountService) CreateChild(ctx context.Context, parentID uint, input AccountInput) (*db.User, error) {
	parent, err := s.Get(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if !parent.IsParent() {
		return nil, ErrForbidden
	}
	return s.create(ctx, input, db.RoleChild, &parent.ID)
}

// Authenticate 校验用户名与密码
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Get 根据 ID 获取账号
func (s *AccountService) Get(ctx context.Context, id uint) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// ListChildren 返回家长名下的孩子
func (s *AccountService) ListChildren(ctx context.Context, parentID uint) ([]db.User, error) {
	var children []db.User
	if err := s.db.WithContext(ctx).
		Where("parent_id = ? AND role = ?", parentID, db.RoleChild).
		Order("id ASC").
		Find(&children).Error; err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

// ResolveChild 校验 actor 是否可以访问 childID：家长只能访问自己的孩子，孩子只能访问自己
func (s *AccountService) ResolveChild(ctx context.Context, actor db.User, childID uint) (*db.User, error) {
	child, err := s.Get(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.Role != db.RoleChild {
		return nil, ErrUserNotFound
	}

	switch actor.Role {
	case db.RoleParent:
		if child.ParentID == nil || *child.ParentID != actor.ID {
			return nil, ErrForbidden
		}
	case db.RoleChild:
		if child.ID != actor.ID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}
	return child, nil
}

func (s *AccountService) create(ctx context.Context, input AccountInput, role string, parentID *uint) (*db.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidAccount)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidAccount, minPasswordLength)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = username
	}

	user := db.User{
		Username:    username,
		Password:    string(hashed),
		Email:       strings.TrimSpace(input.Email),
		Role:        role,
		ParentID:    parentID,
		DisplayName: displayName,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}
