package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/schedule"
)

func TestScheduleServiceCRUD(t *testing.T) {
	gdb := setupServiceTestDB(t)
	_, child := testFamily(t, gdb)
	svc := NewScheduleService(gdb)
	ctx := context.Background()

	entry, err := svc.Create(ctx, child.ID, ScheduleInput{DayOfWeek: "Monday", StartTime: "9:00", EndTime: "10:30", Enabled: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.DayOfWeek != "monday" || entry.StartTime != "09:00" || entry.EndTime != "10:30" {
		t.Fatalf("expected normalized entry, got %+v", entry)
	}

	if _, err := svc.Create(ctx, child.ID, ScheduleInput{DayOfWeek: "monday", StartTime: "11:00", EndTime: "10:00"}); !errors.Is(err, schedule.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}

	updated, err := svc.Update(ctx, child.ID, entry.ID, ScheduleInput{DayOfWeek: "monday", StartTime: "09:00", EndTime: "10:30", Enabled: false})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Enabled {
		t.Fatal("expected entry to be disabled")
	}

	if _, err := svc.Update(ctx, child.ID+100, entry.ID, ScheduleInput{DayOfWeek: "monday", StartTime: "09:00", EndTime: "10:00"}); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, child.ID, entry.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, child.ID, entry.ID); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound on second delete, got %v", err)
	}
}

func TestScheduleServiceGate(t *testing.T) {
	gdb := setupServiceTestDB(t)
	_, child := testFamily(t, gdb)
	svc := NewScheduleService(gdb)
	ctx := context.Background()

	if _, err := svc.Create(ctx, child.ID, ScheduleInput{DayOfWeek: "monday", StartTime: "15:00", EndTime: "17:00", Enabled: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// 存储中损坏的记录会被跳过
	if err := gdb.Create(&db.ScheduleEntry{ChildID: child.ID, DayOfWeek: "monday", StartTime: "bad", EndTime: "18:00", Enabled: true}).Error; err != nil {
		t.Fatalf("insert corrupt entry: %v", err)
	}

	windows, err := svc.Windows(ctx, child.ID)
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected corrupt entry to be skipped, got %d windows", len(windows))
	}

	gate := schedule.NewGate(svc, time.UTC, func(context.Context) bool { return false })
	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2025, 4, 7, 16, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 4, 7, 17, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 4, 8, 16, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		got, err := gate.Allowed(ctx, child.ID, tc.at)
		if err != nil {
			t.Fatalf("allowed: %v", err)
		}
		if got != tc.want {
			t.Fatalf("Allowed(%s) = %v, want %v", tc.at, got, tc.want)
		}
	}
}
