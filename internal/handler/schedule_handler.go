package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/schedule"
	"github.com/shepherdtime/internal/service"
)

type schedulePayload struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Enabled   *bool  `json:"enabled"`
}

func (p schedulePayload) toInput() service.ScheduleInput {
	enabled := true
	if p.Enabled != nil {
		enabled = *p.Enabled
	}
	return service.ScheduleInput{
		DayOfWeek: p.DayOfWeek,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Enabled:   enabled,
	}
}

// ListSchedule 返回孩子的时段配置
func (a *API) ListSchedule(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	entries, err := a.schedules.List(c.Request.Context(), child.ID)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": entries})
}

// CreateScheduleEntry 新增时段
func (a *API) CreateScheduleEntry(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	var payload schedulePayload
	if !bindJSON(c, &payload, "invalid schedule payload") {
		return
	}

	entry, err := a.schedules.Create(c.Request.Context(), child.ID, payload.toInput())
	if err != nil {
		handleScheduleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// UpdateScheduleEntry 修改时段
func (a *API) UpdateScheduleEntry(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid schedule id")
		return
	}

	var payload schedulePayload
	if !bindJSON(c, &payload, "invalid schedule payload") {
		return
	}

	entry, err := a.schedules.Update(c.Request.Context(), child.ID, id, payload.toInput())
	if err != nil {
		handleScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DeleteScheduleEntry 删除时段
func (a *API) DeleteScheduleEntry(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid schedule id")
		return
	}

	if err := a.schedules.Delete(c.Request.Context(), child.ID, id); err != nil {
		handleScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		respondError(c, http.StatusNotFound, "schedule entry not found")
	case errors.Is(err, schedule.ErrInvalidClock),
		errors.Is(err, schedule.ErrInvalidWindow),
		errors.Is(err, schedule.ErrInvalidWeekday):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondInternal(c, err)
	}
}
