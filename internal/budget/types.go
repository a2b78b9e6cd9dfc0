package budget

import (
	"fmt"
	"strings"
	"time"
)

// Category 表示屏幕时间的统计类别
type Category string

const (
	CategoryTotal       Category = "total"
	CategoryGaming      Category = "gaming"
	CategorySocial      Category = "social"
	CategoryEducational Category = "educational"
)

// Categories 按展示顺序列出全部类别
var Categories = []Category{CategoryTotal, CategoryGaming, CategorySocial, CategoryEducational}

// Valid 判断类别是否受支持
func (c Category) Valid() bool {
	switch c {
	case CategoryTotal, CategoryGaming, CategorySocial, CategoryEducational:
		return true
	}
	return false
}

// ParseCategory 将请求中的字符串转换为 Category，大小写与首尾空白不敏感
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
	return c, nil
}

// Source 表示奖励分钟的来源
type Source string

const (
	SourceScripture Source = "scripture"
	SourceLessons   Source = "lessons"
	SourceChores    Source = "chores"
)

// Valid 判断来源是否受支持
func (s Source) Valid() bool {
	switch s {
	case SourceScripture, SourceLessons, SourceChores:
		return true
	}
	return false
}

// ParseSource 将请求中的字符串转换为 Source
func ParseSource(raw string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, raw)
	}
	return s, nil
}

// Breakdown 按类别记录分钟数，既用于每日上限也用于已用时长
type Breakdown struct {
	Total       int `json:"total"`
	Gaming      int `json:"gaming"`
	Social      int `json:"social"`
	Educational int `json:"educational"`
}

// Get 返回指定类别的分钟数
func (b Breakdown) Get(c Category) int {
	switch c {
	case CategoryGaming:
		return b.Gaming
	case CategorySocial:
		return b.Social
	case CategoryEducational:
		return b.Educational
	default:
		return b.Total
	}
}

// Add 返回两组分钟数逐项相加的结果
func (b Breakdown) Add(other Breakdown) Breakdown {
	return Breakdown{
		Total:       b.Total + other.Total,
		Gaming:      b.Gaming + other.Gaming,
		Social:      b.Social + other.Social,
		Educational: b.Educational + other.Educational,
	}
}

// ValidateLimits 校验每日上限：全部非负，且单个类别不超过 total。
// 各类别之和不要求等于 total，类别之间是相互独立的上限。
func ValidateLimits(b Breakdown) error {
	for _, c := range Categories {
		if b.Get(c) < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidLimit, c)
		}
	}
	for _, c := range Categories[1:] {
		if b.Get(c) > b.Total {
			return fmt.Errorf("%w: %s limit %d exceeds total %d", ErrInvalidLimit, c, b.Get(c), b.Total)
		}
	}
	return nil
}

// usageDelta 记录类别用量时同时计入 total
func usageDelta(c Category, minutes int) Breakdown {
	delta := Breakdown{Total: minutes}
	switch c {
	case CategoryGaming:
		delta.Gaming = minutes
	case CategorySocial:
		delta.Social = minutes
	case CategoryEducational:
		delta.Educational = minutes
	}
	return delta
}

// Bonuses 按来源记录奖励分钟
type Bonuses struct {
	FromScripture int `json:"from_scripture"`
	FromLessons   int `json:"from_lessons"`
	FromChores    int `json:"from_chores"`
}

// Get 返回指定来源的奖励分钟
func (b Bonuses) Get(s Source) int {
	switch s {
	case SourceScripture:
		return b.FromScripture
	case SourceLessons:
		return b.FromLessons
	case SourceChores:
		return b.FromChores
	}
	return 0
}

// Sum 返回全部来源的奖励合计
func (b Bonuses) Sum() int {
	return b.FromScripture + b.FromLessons + b.FromChores
}

// Add 返回逐项相加的结果
func (b Bonuses) Add(other Bonuses) Bonuses {
	return Bonuses{
		FromScripture: b.FromScripture + other.FromScripture,
		FromLessons:   b.FromLessons + other.FromLessons,
		FromChores:    b.FromChores + other.FromChores,
	}
}

func rewardDelta(s Source, minutes int) Bonuses {
	var delta Bonuses
	switch s {
	case SourceScripture:
		delta.FromScripture = minutes
	case SourceLessons:
		delta.FromLessons = minutes
	case SourceChores:
		delta.FromChores = minutes
	}
	return delta
}

// UsageRecord 是某个孩子某一天的用量账目
type UsageRecord struct {
	ChildID uint      `json:"child_id"`
	Day     string    `json:"day"`
	Used    Breakdown `json:"used"`
}

// RewardRecord 是某个孩子某一天的奖励账目
type RewardRecord struct {
	ChildID uint    `json:"child_id"`
	Day     string  `json:"day"`
	Bonuses Bonuses `json:"bonuses"`
}

// DayLayout 是账目按天分桶时使用的日期格式
const DayLayout = "2006-01-02"

// DayKey 将时间换算到 loc 后取日历日期作为账目键
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DayLayout)
}
