// Package schedule 判断某一时刻是否处于家长允许的使用时段内
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidClock 在时间不是 HH:MM 格式时返回
	ErrInvalidClock = errors.New("invalid clock time, expected HH:MM")
	// ErrInvalidWindow 在结束时间不晚于开始时间时返回
	ErrInvalidWindow = errors.New("end time must be after start time")
	// ErrInvalidWeekday 在星期名称无法识别时返回
	ErrInvalidWeekday = errors.New("invalid day of week")
)

// Clock 表示一天中的分钟偏移
type Clock int

// EndOfDay 对应 "24:00"，只能作为时段的结束时间
const EndOfDay Clock = 24 * 60

// ParseClock 解析 "15:04" 格式，另外接受 "24:00" 表示当天结束
func ParseClock(raw string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	if h == 24 && m == 0 {
		return EndOfDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	return Clock(h*60 + m), nil
}

// ClockOf 返回 t 在其自身时区中的时刻
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday 接受 "monday" 这样的完整英文名称，大小写不敏感
func ParseWeekday(raw string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, raw)
	}
	return day, nil
}

// WeekdayName 返回存储使用的小写星期名称
func WeekdayName(day time.Weekday) string {
	return strings.ToLower(day.String())
}

// Window 是某个星期几的一个允许时段，区间为 [Start, End)
type Window struct {
	ID        uint
	DayOfWeek time.Weekday
	Start     Clock
	End       Clock
	Enabled   bool
}

// Contains 判断时刻是否落在时段内
func (w Window) Contains(c Clock) bool {
	return c >= w.Start && c < w.End
}

// NewWindow 解析并校验一个时段
func NewWindow(dayOfWeek, start, end string, enabled bool) (Window, error) {
	day, err := ParseWeekday(dayOfWeek)
	if err != nil {
		return Window{}, err
	}
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	if s == EndOfDay {
		return Window{}, fmt.Errorf("%w: %q cannot start a window", ErrInvalidClock, start)
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	if e <= s {
		return Window{}, fmt.Errorf("%w: %s-%s", ErrInvalidWindow, s, e)
	}
	return Window{DayOfWeek: day, Start: s, End: e, Enabled: enabled}, nil
}

// WindowSource 提供孩子的全部时段配置
type WindowSource interface {
	Windows(ctx context.Context, childID uint) ([]Window, error)
}

// Gate 依据时段配置判断是否允许使用设备
type Gate struct {
	source       WindowSource
	location     *time.Location
	defaultAllow func(ctx context.Context) bool
}

// NewGate 构造 Gate。defaultAllow 决定某天没有启用时段时的结果，nil 时视为允许。
func NewGate(source WindowSource, location *time.Location, defaultAllow func(ctx context.Context) bool) *Gate {
	if location == nil {
		location = time.Local
	}
	if defaultAllow == nil {
		defaultAllow = func(context.Context) bool { return true }
	}
	return &Gate{source: source, location: location, defaultAllow: defaultAllow}
}

// Allowed 判断 now 是否落在当天任一启用时段内。
// 多个时段之间是"或"的关系；当天没有启用的时段时返回 defaultAllow 的结果。
func (g *Gate) Allowed(ctx context.Context, childID uint, now time.Time) (bool, error) {
	windows, err := g.source.Windows(ctx, childID)
	if err != nil {
		return false, fmt.Errorf("load schedule windows: %w", err)
	}

	local := now.In(g.location)
	clock := ClockOf(local)
	matched := 0
	for _, w := range windows {
		if !w.Enabled || w.DayOfWeek != local.Weekday() {
			continue
		}
		matched++
		if w.Contains(clock) {
			return true, nil
		}
	}

	if matched == 0 {
		return g.defaultAllow(ctx), nil
	}
	return false, nil
}
