package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// testFamily 创建一个家长和一个孩子
func testFamily(t *testing.T, gdb *gorm.DB) (*db.User, *db.User) {
	t.Helper()
	accounts := NewAccountService(gdb)
	ctx := context.Background()

	parent, err := accounts.SignupParent(ctx, AccountInput{Username: "mom", Password: "secret123"})
	if err != nil {
		t.Fatalf("signup parent: %v", err)
	}
	child, err := accounts.CreateChild(ctx, parent.ID, AccountInput{Username: "sam", Password: "secret123", DisplayName: "Sam"})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return parent, child
}

func testEngine(gdb *gorm.DB) *budget.Engine {
	return budget.NewEngine(NewBudgetStore(gdb), budget.Policy{
		DefaultLimits: budget.Breakdown{Total: 120, Gaming: 60, Social: 30, Educational: 60},
		Location:      time.UTC,
	})
}

var testNoon = time.Date(2025, 4, 7, 12, 0, 0, 0, time.UTC)

// failRewardWrites 让 reward_records 的写入在开关打开时失败
func failRewardWrites(t *testing.T, gdb *gorm.DB) *atomic.Bool {
	t.Helper()
	var failing atomic.Bool
	err := gdb.Callback().Create().Before("gorm:create").Register("test:fail_reward_records", func(tx *gorm.DB) {
		if failing.Load() && tx.Statement.Table == "reward_records" {
			tx.AddError(errors.New("reward ledger unavailable"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return &failing
}
