package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/service"
)

type appPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Blocked  bool   `json:"blocked"`
}

type appBlockPayload struct {
	Blocked *bool `json:"blocked"`
}

// ListApps 返回孩子的应用列表
func (a *API) ListApps(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	apps, err := a.apps.List(c.Request.Context(), child.ID)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"apps": apps})
}

// CreateApp 新增或更新应用
func (a *API) CreateApp(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	var payload appPayload
	if !bindJSON(c, &payload, "invalid app payload") {
		return
	}

	app, err := a.apps.Create(c.Request.Context(), child.ID, service.AppInput{
		Name:     payload.Name,
		Category: payload.Category,
		Blocked:  payload.Blocked,
	})
	if err != nil {
		handleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"app": app})
}

// UpdateApp 切换屏蔽状态
func (a *API) UpdateApp(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid app id")
		return
	}

	var payload appBlockPayload
	if !bindJSON(c, &payload, "invalid app payload") {
		return
	}
	if payload.Blocked == nil {
		respondError(c, http.StatusBadRequest, "blocked is required")
		return
	}

	app, err := a.apps.SetBlocked(c.Request.Context(), child.ID, id, *payload.Blocked)
	if err != nil {
		handleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"app": app})
}

// CheckApp 检查应用是否被屏蔽
func (a *API) CheckApp(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	result, err := a.apps.Check(c.Request.Context(), *child, c.Query("name"))
	if err != nil {
		handleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func handleAppError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAppNotFound):
		respondError(c, http.StatusNotFound, "app not found")
	case errors.Is(err, service.ErrInvalidApp):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondInternal(c, err)
	}
}
