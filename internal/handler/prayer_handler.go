package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/service"
)

type prayerPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ListPrayers 返回祷告日记
func (a *API) ListPrayers(c *gin.Context) {
	child, ok := a.childFromQuery(c)
	if !ok {
		return
	}

	entries, err := a.prayers.List(c.Request.Context(), child.ID)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prayers": entries})
}

// CreatePrayer 写一条祷告
func (a *API) CreatePrayer(c *gin.Context) {
	child, ok := a.childFromQuery(c)
	if !ok {
		return
	}

	var payload prayerPayload
	if !bindJSON(c, &payload, "invalid prayer payload") {
		return
	}

	entry, err := a.prayers.Create(c.Request.Context(), child.ID, payload.Title, payload.Content)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPrayer) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prayer": entry})
}
