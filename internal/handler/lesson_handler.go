package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/service"
)

type lessonCompletePayload struct {
	Score *int `json:"score"`
}

// ListLessons 返回全部课程
func (a *API) ListLessons(c *gin.Context) {
	lessons, err := a.lessons.List(c.Request.Context())
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}

// GetLesson 返回单个课程及渲染后的内容
func (a *API) GetLesson(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid lesson id")
		return
	}

	view, err := a.lessons.Get(c.Request.Context(), id)
	if err != nil {
		handleLessonError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetLessonProgress 返回孩子的课程进度
func (a *API) GetLessonProgress(c *gin.Context) {
	child, ok := a.childFromQuery(c)
	if !ok {
		return
	}

	progress, err := a.lessons.Progress(c.Request.Context(), child.ID)
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// CompleteLesson 标记课程完成
func (a *API) CompleteLesson(c *gin.Context) {
	child, ok := a.childFromQuery(c)
	if !ok {
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid lesson id")
		return
	}

	var payload lessonCompletePayload
	if c.Request.ContentLength != 0 && !bindJSON(c, &payload, "invalid completion payload") {
		return
	}

	result, err := a.lessons.Complete(c.Request.Context(), child.ID, id, payload.Score, a.currentTime())
	if err != nil {
		handleLessonError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func handleLessonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		respondError(c, http.StatusNotFound, "lesson not found")
	case errors.Is(err, service.ErrInvalidScore):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, budget.ErrChildNotFound):
		respondError(c, http.StatusNotFound, "child not found")
	default:
		respondInternal(c, err)
	}
}
