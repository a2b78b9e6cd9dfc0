package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/budget"
)

type limitsPayload struct {
	Total       *int `json:"total"`
	Gaming      *int `json:"gaming"`
	Social      *int `json:"social"`
	Educational *int `json:"educational"`
}

// merge 用请求中的字段覆盖当前上限。未提供的分类上限会被压到 total 以内，
// 显式提供的值原样交给校验。
func (p limitsPayload) merge(current budget.Breakdown) budget.Breakdown {
	merged := current
	if p.Total != nil {
		merged.Total = *p.Total
	}
	pick := func(given *int, existing int) int {
		if given != nil {
			return *given
		}
		return min(existing, max(merged.Total, 0))
	}
	merged.Gaming = pick(p.Gaming, current.Gaming)
	merged.Social = pick(p.Social, current.Social)
	merged.Educational = pick(p.Educational, current.Educational)
	return merged
}

type usagePayload struct {
	Category  string `json:"category"`
	Minutes   int    `json:"minutes"`
	Timestamp string `json:"timestamp"`
}

type rewardPayload struct {
	Source  string `json:"source"`
	Minutes int    `json:"minutes"`
	Date    string `json:"date"`
}

// GetScreenTime 返回孩子某天的屏幕时间汇总，默认今天
func (a *API) GetScreenTime(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	date, err := parseDate(c.Query("date"), a.location, a.currentTime())
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	summary, err := a.screenTime.Summary(c.Request.Context(), child.ID, date)
	if err != nil {
		handleBudgetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"screen_time": summary})
}

// UpdateLimits 更新每日上限，未提供的字段保持原值，但不超过新的 total
func (a *API) UpdateLimits(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	var payload limitsPayload
	if !bindJSON(c, &payload, "invalid limits payload") {
		return
	}

	ctx := c.Request.Context()
	limits, err := a.screenTime.Engine().Limits(ctx, child.ID)
	if err != nil {
		handleBudgetError(c, err)
		return
	}
	saved, err := a.screenTime.SetLimits(ctx, child.ID, payload.merge(limits))
	if err != nil {
		handleBudgetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily_limits": saved})
}

// LogUsage 记录一次设备使用
func (a *API) LogUsage(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	var payload usagePayload
	if !bindJSON(c, &payload, "invalid usage payload") {
		return
	}

	category, err := budget.ParseCategory(payload.Category)
	if err != nil {
		handleBudgetError(c, err)
		return
	}
	ts, err := parseTimestamp(payload.Timestamp, a.currentTime())
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid timestamp, expected RFC3339")
		return
	}

	result, err := a.screenTime.LogUsage(c.Request.Context(), *child, category, payload.Minutes, ts)
	if err != nil {
		handleBudgetError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreditReward 由家长记入奖励分钟，通常用于家务
func (a *API) CreditReward(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	var payload rewardPayload
	if !bindJSON(c, &payload, "invalid reward payload") {
		return
	}
	if payload.Source == "" {
		payload.Source = string(budget.SourceChores)
	}

	source, err := budget.ParseSource(payload.Source)
	if err != nil {
		handleBudgetError(c, err)
		return
	}
	date, err := parseDate(payload.Date, a.location, a.currentTime())
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	record, err := a.screenTime.CreditReward(c.Request.Context(), child.ID, source, payload.Minutes, date)
	if err != nil {
		handleBudgetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"time_rewards": record})
}

// GetAvailable 返回某类别的剩余分钟
func (a *API) GetAvailable(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	raw := c.DefaultQuery("category", string(budget.CategoryTotal))
	category, err := budget.ParseCategory(raw)
	if err != nil {
		handleBudgetError(c, err)
		return
	}
	date, err := parseDate(c.Query("date"), a.location, a.currentTime())
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	minutes, err := a.screenTime.Available(c.Request.Context(), child.ID, category, date)
	if err != nil {
		handleBudgetError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category":  category,
		"day":       a.screenTime.Engine().DayKey(date),
		"available": minutes,
	})
}

// CheckAllowed 判断孩子在指定时刻（默认现在）是否处于允许时段
func (a *API) CheckAllowed(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	at, err := parseTimestamp(c.Query("at"), a.currentTime())
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid time, expected RFC3339")
		return
	}

	allowed, err := a.screenTime.Allowed(c.Request.Context(), child.ID, at)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": allowed, "at": at})
}

func handleBudgetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, budget.ErrChildNotFound):
		respondError(c, http.StatusNotFound, "child not found")
	case errors.Is(err, budget.ErrInvalidCategory),
		errors.Is(err, budget.ErrInvalidSource),
		errors.Is(err, budget.ErrInvalidAmount),
		errors.Is(err, budget.ErrInvalidLimit):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondInternal(c, err)
	}
}
