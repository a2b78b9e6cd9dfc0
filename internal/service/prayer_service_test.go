package service

import (
	"context"
	"errors"
	"testing"
)

func TestPrayerServiceSanitizes(t *testing.T) {
	gdb := setupServiceTestDB(t)
	_, child := testFamily(t, gdb)
	svc := NewPrayerService(gdb)
	ctx := context.Background()

	entry, err := svc.Create(ctx, child.ID, "", "Thank you for <b>today</b><script>x()</script>")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.Title != "Prayer" {
		t.Fatalf("expected default title, got %q", entry.Title)
	}
	if entry.Content != "Thank you for today" {
		t.Fatalf("expected plain text content, got %q", entry.Content)
	}

	if _, err := svc.Create(ctx, child.ID, "Empty", "   <i></i> "); !errors.Is(err, ErrInvalidPrayer) {
		t.Fatalf("expected ErrInvalidPrayer, got %v", err)
	}

	list, err := svc.List(ctx, child.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one prayer, got %d", len(list))
	}
}
