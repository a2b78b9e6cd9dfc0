package budget

import (
	"context"
	"fmt"
	"math"
	"time"
)

// UnlimitedBonus 表示不限制每日奖励分钟
const UnlimitedBonus = 0

// Policy 汇总引擎的可配置策略
type Policy struct {
	// DefaultLimits 在孩子未配置每日上限时使用
	DefaultLimits Breakdown
	// Location 决定账目按哪个时区的午夜切换日期，nil 时使用服务器本地时区
	Location *time.Location
	// MaxDailyBonus 返回每日计入 total 的奖励上限，nil 或返回 UnlimitedBonus 时不设上限
	MaxDailyBonus func(ctx context.Context) int
}

// Engine 负责可用时长计算、用量记账与奖励记账
type Engine struct {
	store  Store
	policy Policy
}

// Summary 是某个孩子某一天的完整屏幕时间视图
type Summary struct {
	ChildID     uint      `json:"child_id"`
	Day         string    `json:"day"`
	Limits      Breakdown `json:"daily_limits"`
	Used        Breakdown `json:"usage_today"`
	Rewards     Bonuses   `json:"time_rewards"`
	Bonus       int       `json:"bonus_applied"`
	Available   Breakdown `json:"available"`
	PercentUsed Breakdown `json:"percent_used"`
}

// NewEngine 构造 Engine
func NewEngine(store Store, policy Policy) *Engine {
	if policy.Location == nil {
		policy.Location = time.Local
	}
	return &Engine{store: store, policy: policy}
}

// Location 返回账目使用的时区
func (e *Engine) Location() *time.Location {
	return e.policy.Location
}

// DayKey 返回 t 所属的账目日期
func (e *Engine) DayKey(t time.Time) string {
	return DayKey(t, e.policy.Location)
}

// Limits 返回孩子当前生效的每日上限
func (e *Engine) Limits(ctx context.Context, childID uint) (Breakdown, error) {
	if err := e.ensureChild(ctx, childID); err != nil {
		return Breakdown{}, err
	}
	limits, found, err := e.store.Limits(ctx, childID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load limits: %w", err)
	}
	if !found {
		return e.policy.DefaultLimits, nil
	}
	return limits, nil
}

// SetLimits 保存每日上限
func (e *Engine) SetLimits(ctx context.Context, childID uint, limits Breakdown) (Breakdown, error) {
	if err := ValidateLimits(limits); err != nil {
		return Breakdown{}, err
	}
	if err := e.ensureChild(ctx, childID); err != nil {
		return Breakdown{}, err
	}
	if err := e.store.SaveLimits(ctx, childID, limits); err != nil {
		return Breakdown{}, fmt.Errorf("save limits: %w", err)
	}
	return limits, nil
}

// AvailableMinutes 返回指定类别当天剩余分钟：limit + bonus - used，最小为 0。
// 奖励分钟只计入 total，不计入子类别。
func (e *Engine) AvailableMinutes(ctx context.Context, childID uint, category Category, date time.Time) (int, error) {
	if !category.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	summary, err := e.Summary(ctx, childID, date)
	if err != nil {
		return 0, err
	}
	return summary.Available.Get(category), nil
}

// Summary 汇总上限、用量、奖励与各类别剩余时长
func (e *Engine) Summary(ctx context.Context, childID uint, date time.Time) (Summary, error) {
	limits, err := e.Limits(ctx, childID)
	if err != nil {
		return Summary{}, err
	}

	day := e.DayKey(date)
	usage, err := e.store.Usage(ctx, childID, day)
	if err != nil {
		return Summary{}, fmt.Errorf("load usage: %w", err)
	}
	rewards, err := e.store.Rewards(ctx, childID, day)
	if err != nil {
		return Summary{}, fmt.Errorf("load rewards: %w", err)
	}

	summary := Summary{
		ChildID: childID,
		Day:     day,
		Limits:  limits,
		Used:    usage.Used,
		Rewards: rewards.Bonuses,
		Bonus:   e.cappedBonus(ctx, rewards.Bonuses),
	}

	summary.Available = Breakdown{
		Total:       floorZero(limits.Total + summary.Bonus - usage.Used.Total),
		Gaming:      floorZero(limits.Gaming - usage.Used.Gaming),
		Social:      floorZero(limits.Social - usage.Used.Social),
		Educational: floorZero(limits.Educational - usage.Used.Educational),
	}
	summary.PercentUsed = Breakdown{
		Total:       PercentUsed(usage.Used.Total, limits.Total+summary.Bonus),
		Gaming:      PercentUsed(usage.Used.Gaming, limits.Gaming),
		Social:      PercentUsed(usage.Used.Social, limits.Social),
		Educational: PercentUsed(usage.Used.Educational, limits.Educational),
	}

	return summary, nil
}

// RecordUsage 将分钟计入当天账目的类别计数和 total。
// 这是记账操作而不是准入检查，超出预算的用量同样会被记录。
func (e *Engine) RecordUsage(ctx context.Context, childID uint, category Category, minutes int, timestamp time.Time) (UsageRecord, error) {
	if !category.Valid() {
		return UsageRecord{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if minutes <= 0 {
		return UsageRecord{}, fmt.Errorf("%w: got %d", ErrInvalidAmount, minutes)
	}
	if err := e.ensureChild(ctx, childID); err != nil {
		return UsageRecord{}, err
	}

	record, err := e.store.AddUsage(ctx, childID, e.DayKey(timestamp), usageDelta(category, minutes))
	if err != nil {
		return UsageRecord{}, fmt.Errorf("record usage: %w", err)
	}
	return record, nil
}

// CreditReward 将奖励分钟计入当天指定来源，记账时不做上限截断
func (e *Engine) CreditReward(ctx context.Context, childID uint, source Source, minutes int, date time.Time) (RewardRecord, error) {
	if !source.Valid() {
		return RewardRecord{}, fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}
	if minutes <= 0 {
		return RewardRecord{}, fmt.Errorf("%w: got %d", ErrInvalidAmount, minutes)
	}
	if err := e.ensureChild(ctx, childID); err != nil {
		return RewardRecord{}, err
	}

	record, err := e.store.AddReward(ctx, childID, e.DayKey(date), rewardDelta(source, minutes))
	if err != nil {
		return RewardRecord{}, fmt.Errorf("credit reward: %w", err)
	}
	return record, nil
}

func (e *Engine) ensureChild(ctx context.Context, childID uint) error {
	exists, err := e.store.ChildExists(ctx, childID)
	if err != nil {
		return fmt.Errorf("lookup child: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: id %d", ErrChildNotFound, childID)
	}
	return nil
}

func (e *Engine) cappedBonus(ctx context.Context, bonuses Bonuses) int {
	bonus := bonuses.Sum()
	if e.policy.MaxDailyBonus == nil {
		return bonus
	}
	if limit := e.policy.MaxDailyBonus(ctx); limit > UnlimitedBonus && bonus > limit {
		return limit
	}
	return bonus
}

// PercentUsed 返回四舍五入后的用量百分比，limit 为 0 时返回 0，结果不超过 100
func PercentUsed(used, limit int) int {
	if limit <= 0 || used <= 0 {
		return 0
	}
	percent := int(math.Round(float64(used) / float64(limit) * 100))
	if percent > 100 {
		return 100
	}
	return percent
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
