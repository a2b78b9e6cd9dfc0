package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/logging"
	"github.com/shepherdtime/internal/service"
)

type policyPayload struct {
	ScheduleDefaultAllow *bool `json:"schedule_default_allow"`
	MaxDailyBonusMinutes *int  `json:"max_daily_bonus_minutes"`
}

// GetPolicySettings 返回当前生效的策略设置
func (a *API) GetPolicySettings(c *gin.Context) {
	settings, err := a.system.GetSettings(c.Request.Context())
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdatePolicySettings 更新策略设置，未提供的字段保持不变
func (a *API) UpdatePolicySettings(c *gin.Context) {
	var payload policyPayload
	if !bindJSON(c, &payload, "invalid settings payload") {
		return
	}

	settings, err := a.system.UpdateSettings(c.Request.Context(), service.SystemSettingsInput{
		ScheduleDefaultAllow: payload.ScheduleDefaultAllow,
		MaxDailyBonusMinutes: payload.MaxDailyBonusMinutes,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidSetting) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondInternal(c, err)
		return
	}

	logging.FromContext(c).WithField("user_id", currentUser(c).ID).Info("policy settings updated")
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
