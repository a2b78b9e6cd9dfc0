package budget

import "context"

// Store 持久化每日上限、用量账目与奖励账目。
// AddUsage 与 AddReward 必须是原子加法，不能先读后写，
// 同一孩子多台设备同时上报时才不会丢失更新。
type Store interface {
	ChildExists(ctx context.Context, childID uint) (bool, error)
	// Limits 返回孩子的每日上限，未配置时 found 为 false
	Limits(ctx context.Context, childID uint) (limits Breakdown, found bool, err error)
	SaveLimits(ctx context.Context, childID uint, limits Breakdown) error
	// Usage 在当天没有记录时返回零值记录而不是错误
	Usage(ctx context.Context, childID uint, day string) (UsageRecord, error)
	AddUsage(ctx context.Context, childID uint, day string, delta Breakdown) (UsageRecord, error)
	Rewards(ctx context.Context, childID uint, day string) (RewardRecord, error)
	AddReward(ctx context.Context, childID uint, day string, delta Bonuses) (RewardRecord, error)
}
