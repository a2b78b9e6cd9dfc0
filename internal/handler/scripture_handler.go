package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/service"
)

type passagePayload struct {
	Reference string `json:"reference"`
	Content   string `json:"content"`
}

type attemptPayload struct {
	Text string `json:"text"`
}

type chapterClaimPayload struct {
	Chapter string `json:"chapter"`
}

// ListScripture 返回孩子的经文与背诵进度
func (a *API) ListScripture(c *gin.Context) {
	child, ok := a.childFromQuery(c)
	if !ok {
		return
	}

	passages, err := a.scriptures.List(c.Request.Context(), child.ID)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"passages": passages})
}

// AssignScripture 由家长为孩子分配经文
func (a *API) AssignScripture(c *gin.Context) {
	if !currentUser(c).IsParent() {
		respondError(c, http.StatusForbidden, "parent account required")
		return
	}
	child, ok := a.childFromQuery(c)
	if !ok {
		return
	}

	var payload passagePayload
	if !bindJSON(c, &payload, "invalid passage payload") {
		return
	}

	passage, err := a.scriptures.Assign(c.Request.Context(), child.ID, service.PassageInput{
		Reference: payload.Reference,
		Content:   payload.Content,
	})
	if err != nil {
		handleScriptureError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"passage": passage})
}

// AttemptScripture 提交一次背诵
func (a *API) AttemptScripture(c *gin.Context) {
	child, ok := a.childFromQuery(c)
	if !ok {
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid passage id")
		return
	}

	var payload attemptPayload
	if !bindJSON(c, &payload, "invalid attempt payload") {
		return
	}

	result, err := a.scriptures.Attempt(c.Request.Context(), child.ID, id, payload.Text, a.currentTime())
	if err != nil {
		handleScriptureError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ClaimChapter 领取章节奖励
func (a *API) ClaimChapter(c *gin.Context) {
	child, ok := a.childFromQuery(c)
	if !ok {
		return
	}

	var payload chapterClaimPayload
	if !bindJSON(c, &payload, "invalid chapter payload") {
		return
	}

	claim, err := a.scriptures.ClaimChapter(c.Request.Context(), child.ID, payload.Chapter, a.currentTime())
	if err != nil {
		handleScriptureError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

func handleScriptureError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPassageNotFound):
		respondError(c, http.StatusNotFound, "scripture passage not found")
	case errors.Is(err, service.ErrInvalidPassage),
		errors.Is(err, service.ErrChapterIncomplete):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAlreadyClaimed):
		respondError(c, http.StatusConflict, "reward already claimed")
	default:
		handleBudgetError(c, err)
	}
}
