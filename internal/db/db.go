package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Models 返回需要自动迁移的全部模型
func Models() []interface{} {
	return []interface{}{
		&User{},
		&DailyLimit{},
		&UsageRecord{},
		&RewardRecord{},
		&RewardClaim{},
		&ScheduleEntry{},
		&BlockedApp{},
		&GameSession{},
		&FriendRequest{},
		&ScripturePassage{},
		&MemorizationLog{},
		&BibleLesson{},
		&LessonProgress{},
		&PrayerEntry{},
		&Alert{},
		&SystemSetting{},
	}
}

// Init 打开数据库连接并执行自动迁移。
// dsn 为空时回退到默认的 shepherdtime.db；postgres:// 或 key=value 形式的连接串使用 Postgres。
func Init(dsn string) error {
	gdb, err := Open(dsn)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	if err := SeedLessons(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open 根据连接串选择驱动
func Open(dsn string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		trimmed = "shepherdtime.db"
	}

	config := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if isPostgresDSN(trimmed) {
		gdb, err := gorm.Open(postgres.Open(trimmed), config)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return gdb, nil
	}

	if err := ensureParentDir(trimmed); err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(sqlite.Open(trimmed), config)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return gdb, nil
}

// Migrate 为全部模型建表
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func isPostgresDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return true
	case strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return true
	}
	return false
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
