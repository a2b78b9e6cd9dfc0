package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shepherdtime/internal/budget"
)

func TestBudgetStoreSummaryScenario(t *testing.T) {
	gdb := setupServiceTestDB(t)
	_, child := testFamily(t, gdb)
	engine := testEngine(gdb)
	ctx := context.Background()

	if _, err := engine.CreditReward(ctx, child.ID, budget.SourceScripture, 15, testNoon); err != nil {
		t.Fatalf("credit scripture: %v", err)
	}
	if _, err := engine.CreditReward(ctx, child.ID, budget.SourceLessons, 10, testNoon); err != nil {
		t.Fatalf("credit lessons: %v", err)
	}
	if _, err := engine.CreditReward(ctx, child.ID, budget.SourceChores, 5, testNoon); err != nil {
		t.Fatalf("credit chores: %v", err)
	}
	if _, err := engine.RecordUsage(ctx, child.ID, budget.CategoryGaming, 45, testNoon); err != nil {
		t.Fatalf("record gaming: %v", err)
	}
	record, err := engine.RecordUsage(ctx, child.ID, budget.CategoryGaming, 30, testNoon)
	if err != nil {
		t.Fatalf("record gaming: %v", err)
	}
	if record.Used.Gaming != 75 || record.Used.Total != 75 {
		t.Fatalf("expected gaming=75 total=75, got %+v", record.Used)
	}

	total, err := engine.AvailableMinutes(ctx, child.ID, budget.CategoryTotal, testNoon)
	if err != nil {
		t.Fatalf("available total: %v", err)
	}
	if total != 75 {
		t.Fatalf("expected 75 total minutes available, got %d", total)
	}

	gaming, err := engine.AvailableMinutes(ctx, child.ID, budget.CategoryGaming, testNoon)
	if err != nil {
		t.Fatalf("available gaming: %v", err)
	}
	if gaming != 0 {
		t.Fatalf("expected gaming exhausted, got %d", gaming)
	}
}

func TestBudgetStoreLimitsUpsert(t *testing.T) {
	gdb := setupServiceTestDB(t)
	_, child := testFamily(t, gdb)
	store := NewBudgetStore(gdb)
	ctx := context.Background()

	if _, found, err := store.Limits(ctx, child.ID); err != nil || found {
		t.Fatalf("expected no limits yet, found=%v err=%v", found, err)
	}

	if err := store.SaveLimits(ctx, child.ID, budget.Breakdown{Total: 90, Gaming: 30}); err != nil {
		t.Fatalf("save limits: %v", err)
	}
	if err := store.SaveLimits(ctx, child.ID, budget.Breakdown{Total: 100, Gaming: 40, Social: 20, Educational: 50}); err != nil {
		t.Fatalf("save limits again: %v", err)
	}

	limits, found, err := store.Limits(ctx, child.ID)
	if err != nil || !found {
		t.Fatalf("load limits: found=%v err=%v", found, err)
	}
	if limits != (budget.Breakdown{Total: 100, Gaming: 40, Social: 20, Educational: 50}) {
		t.Fatalf("unexpected limits %+v", limits)
	}
}

func TestBudgetStoreChildExists(t *testing.T) {
	gdb := setupServiceTestDB(t)
	parent, child := testFamily(t, gdb)
	store := NewBudgetStore(gdb)
	ctx := context.Background()

	if ok, err := store.ChildExists(ctx, child.ID); err != nil || !ok {
		t.Fatalf("expected child to exist, ok=%v err=%v", ok, err)
	}
	if ok, err := store.ChildExists(ctx, parent.ID); err != nil || ok {
		t.Fatalf("parent must not count as child, ok=%v err=%v", ok, err)
	}

	engine := testEngine(gdb)
	if _, err := engine.RecordUsage(ctx, 9999, budget.CategoryGaming, 5, testNoon); !errors.Is(err, budget.ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound, got %v", err)
	}
}

func TestBudgetStoreConcurrentUsage(t *testing.T) {
	gdb := setupServiceTestDB(t)
	_, child := testFamily(t, gdb)
	store := NewBudgetStore(gdb)
	ctx := context.Background()

	// shared cache 内存库不支持并发写，单连接下依次执行 upsert
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.AddUsage(ctx, child.ID, "2025-04-07", budget.Breakdown{Total: 5, Social: 5}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("add usage: %v", err)
	}

	record, err := store.Usage(ctx, child.ID, "2025-04-07")
	if err != nil {
		t.Fatalf("load usage: %v", err)
	}
	if record.Used.Total != 5*workers || record.Used.Social != 5*workers {
		t.Fatalf("expected %d minutes, got %+v", 5*workers, record.Used)
	}
}
