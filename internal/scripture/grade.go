// Package scripture 提供经文背诵评分与奖励规则
package scripture

import (
	"math"
	"strings"
)

// MemorizedThreshold 是判定背诵成功的最低正确率
const MemorizedThreshold = 90

// Result 是一次背诵尝试的评分结果
type Result struct {
	Matches        int  `json:"matches"`
	TotalWords     int  `json:"total_words"`
	PercentCorrect int  `json:"percent_correct"`
	Memorized      bool `json:"memorized"`
}

// Grade 按位置逐词比较提交文本与原文（忽略大小写）。
// 不做对齐：多写或漏写一个词会让之后的位置全部错开。
func Grade(canonical, attempt string) Result {
	want := strings.Fields(strings.ToLower(canonical))
	got := strings.Fields(strings.ToLower(attempt))

	result := Result{TotalWords: len(want)}
	if len(want) == 0 {
		return result
	}

	for i, word := range got {
		if i >= len(want) {
			break
		}
		if word == want[i] {
			result.Matches++
		}
	}

	result.PercentCorrect = int(math.Round(float64(result.Matches) / float64(len(want)) * 100))
	result.Memorized = result.PercentCorrect >= MemorizedThreshold
	return result
}
