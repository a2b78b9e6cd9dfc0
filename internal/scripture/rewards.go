package scripture

import (
	"strings"
	"time"
)

// 奖励分钟数
const (
	VerseBonus      = 5
	FiveVersesBonus = 15
	ChapterBonus    = 30
	StreakBonus     = 10
	LessonBonus     = 5
)

// FiveVersesTarget 与 StreakTarget 是一次性奖励的门槛
const (
	FiveVersesTarget = 5
	StreakTarget     = 7
)

// 一次性奖励的里程碑标识
const (
	MilestoneFiveVerses = "five_verses"
	MilestoneStreak     = "streak_7"
	chapterPrefix       = "chapter:"
)

// ChapterMilestone 返回章节奖励的里程碑标识
func ChapterMilestone(chapter string) string {
	return chapterPrefix + strings.ToLower(NormalizeChapter(chapter))
}

// ChapterOf 从 "John 3:16" 这样的引用中取出章节 "John 3"，没有节号时原样返回
func ChapterOf(reference string) string {
	ref := NormalizeChapter(reference)
	if idx := strings.LastIndex(ref, ":"); idx > 0 {
		return strings.TrimSpace(ref[:idx])
	}
	return ref
}

// NormalizeChapter 折叠多余空白
func NormalizeChapter(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// CalculateStreaks 在已排序的背诵日期上计算当前连续天数与最长连续天数。
// current 以最后一条记录为终点。
func CalculateStreaks(days []time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	longest = 1
	current = 1

	for i := 1; i < len(days); i++ {
		delta := int(days[i].Sub(days[i-1]).Hours() / 24)
		switch {
		case delta == 1:
			current++
			if current > longest {
				longest = current
			}
		case delta == 0:
		default:
			current = 1
		}
	}

	return current, longest
}
