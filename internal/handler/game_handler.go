package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/service"
)

type gameReportPayload struct {
	Name          string   `json:"name"`
	ContentRating string   `json:"content_rating"`
	Minutes       int      `json:"minutes"`
	RedFlags      []string `json:"red_flags"`
	PlayedAt      string   `json:"played_at"`
}

type gameReviewPayload struct {
	Approved *bool `json:"approved"`
}

// ListGames 返回孩子玩过的游戏
func (a *API) ListGames(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	games, err := a.games.List(c.Request.Context(), child.ID)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// ReportGame 上报一次游戏，时长同时计入 gaming 用量
func (a *API) ReportGame(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	var payload gameReportPayload
	if !bindJSON(c, &payload, "invalid game payload") {
		return
	}
	playedAt, err := parseTimestamp(payload.PlayedAt, a.currentTime())
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid played_at, expected RFC3339")
		return
	}

	result, err := a.games.Report(c.Request.Context(), *child, service.GameReport{
		Name:          payload.Name,
		ContentRating: payload.ContentRating,
		Minutes:       payload.Minutes,
		RedFlags:      payload.RedFlags,
		PlayedAt:      playedAt,
	})
	if err != nil {
		handleGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReviewGame 家长批准或拒绝一款游戏
func (a *API) ReviewGame(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid game id")
		return
	}

	var payload gameReviewPayload
	if !bindJSON(c, &payload, "invalid game payload") {
		return
	}
	if payload.Approved == nil {
		respondError(c, http.StatusBadRequest, "approved is required")
		return
	}

	game, err := a.games.SetApproval(c.Request.Context(), child.ID, id, *payload.Approved)
	if err != nil {
		handleGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game})
}

func handleGameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		respondError(c, http.StatusNotFound, "game not found")
	case errors.Is(err, service.ErrInvalidGame):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		handleBudgetError(c, err)
	}
}
