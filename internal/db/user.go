package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 账号角色
const (
	RoleParent = "parent"
	RoleChild  = "child"
)

// User 定义了家长与孩子共用的账号模型
// 孩子账号的 ParentID 在创建时确定，之后不再修改
type User struct {
	gorm.Model
	Username    string `gorm:"unique;not null"`
	Password    string `gorm:"not null"`
	Email       string `gorm:"index"`
	Role        string `gorm:"size:16;index;not null"`
	ParentID    *uint  `gorm:"index"`
	DisplayName string
}

// IsParent 判断是否为家长账号
func (u User) IsParent() bool {
	return u.Role == RoleParent
}

// EnsureUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的家长账号。
func EnsureUser(gdb *gorm.DB, username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return gdb.Create(&User{Username: trimmedUser, Password: string(hashed), Role: RoleParent, DisplayName: trimmedUser}).Error
	}

	return nil
}
