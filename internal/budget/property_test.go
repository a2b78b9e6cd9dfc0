package budget

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPercentUsedProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("zero limit yields zero", prop.ForAll(
		func(used int) bool {
			return PercentUsed(used, 0) == 0
		},
		gen.IntRange(0, 10000),
	))

	properties.Property("bounded and monotonic in used", prop.ForAll(
		func(used, extra, limit int) bool {
			a := PercentUsed(used, limit)
			b := PercentUsed(used+extra, limit)
			return a >= 0 && b <= 100 && a <= b
		},
		gen.IntRange(0, 5000),
		gen.IntRange(0, 5000),
		gen.IntRange(1, 1440),
	))

	properties.TestingRun(t)
}

func TestLedgerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	now := time.Date(2025, 4, 7, 12, 0, 0, 0, time.UTC)
	categories := gen.OneConstOf(CategoryTotal, CategoryGaming, CategorySocial, CategoryEducational)

	newEngine := func() *Engine {
		store := NewMemoryStore()
		store.AddChild(1)
		return NewEngine(store, Policy{DefaultLimits: defaultTestLimits, Location: time.UTC})
	}

	properties.Property("record usage is additive", prop.ForAll(
		func(c Category, m1, m2 int) bool {
			ctx := context.Background()
			split, whole := newEngine(), newEngine()
			if _, err := split.RecordUsage(ctx, 1, c, m1, now); err != nil {
				return false
			}
			first, err := split.RecordUsage(ctx, 1, c, m2, now)
			if err != nil {
				return false
			}
			second, err := whole.RecordUsage(ctx, 1, c, m1+m2, now)
			if err != nil {
				return false
			}
			return first.Used == second.Used
		},
		categories,
		gen.IntRange(1, 600),
		gen.IntRange(1, 600),
	))

	properties.Property("available minutes never negative", prop.ForAll(
		func(c Category, used, bonus int) bool {
			ctx := context.Background()
			engine := newEngine()
			if _, err := engine.RecordUsage(ctx, 1, c, used, now); err != nil {
				return false
			}
			if _, err := engine.CreditReward(ctx, 1, SourceChores, bonus, now); err != nil {
				return false
			}
			for _, category := range Categories {
				available, err := engine.AvailableMinutes(ctx, 1, category, now)
				if err != nil || available < 0 {
					return false
				}
			}
			return true
		},
		categories,
		gen.IntRange(1, 2000),
		gen.IntRange(1, 120),
	))

	properties.Property("credit reward only touches its source", prop.ForAll(
		func(s Source, minutes int) bool {
			engine := newEngine()
			record, err := engine.CreditReward(context.Background(), 1, s, minutes, now)
			if err != nil {
				return false
			}
			return record.Bonuses.Get(s) == minutes && record.Bonuses.Sum() == minutes
		},
		gen.OneConstOf(SourceScripture, SourceLessons, SourceChores),
		gen.IntRange(1, 300),
	))

	properties.TestingRun(t)
}
