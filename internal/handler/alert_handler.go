package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/service"
)

type alertUpdatePayload struct {
	Read    *bool `json:"read"`
	Handled *bool `json:"handled"`
}

// ListAlerts 返回当前家长的提醒，?unread=true 只返回未读
func (a *API) ListAlerts(c *gin.Context) {
	parent := currentUser(c)
	unreadOnly := c.Query("unread") == "true"

	alerts, err := a.alerts.List(c.Request.Context(), parent.ID, unreadOnly)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// UpdateAlert 标记提醒已读或已处理
func (a *API) UpdateAlert(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid alert id")
		return
	}

	var payload alertUpdatePayload
	if !bindJSON(c, &payload, "invalid alert payload") {
		return
	}

	parent := currentUser(c)
	alert, err := a.alerts.Update(c.Request.Context(), parent.ID, id, service.AlertUpdate{
		Read:    payload.Read,
		Handled: payload.Handled,
	})
	if err != nil {
		if errors.Is(err, service.ErrAlertNotFound) {
			respondError(c, http.StatusNotFound, "alert not found")
			return
		}
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alert": alert})
}
