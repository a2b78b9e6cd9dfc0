package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/service"
)

type friendRequestPayload struct {
	FriendName string `json:"friend_name"`
}

type friendDecisionPayload struct {
	Status string `json:"status"`
}

// ListFriendRequests 返回孩子的好友请求，可用 ?status= 过滤
func (a *API) ListFriendRequests(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	requests, err := a.friends.List(c.Request.Context(), child.ID, c.Query("status"))
	if err != nil {
		handleFriendRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friend_requests": requests})
}

// CreateFriendRequest 孩子发起好友请求
func (a *API) CreateFriendRequest(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}

	var payload friendRequestPayload
	if !bindJSON(c, &payload, "invalid friend request payload") {
		return
	}

	request, err := a.friends.Create(c.Request.Context(), *child, payload.FriendName, a.currentTime())
	if err != nil {
		handleFriendRequestError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"friend_request": request})
}

// DecideFriendRequest 家长批准或拒绝好友请求
func (a *API) DecideFriendRequest(c *gin.Context) {
	child, ok := a.childFromParam(c)
	if !ok {
		return
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid friend request id")
		return
	}

	var payload friendDecisionPayload
	if !bindJSON(c, &payload, "invalid friend request payload") {
		return
	}

	request, err := a.friends.Decide(c.Request.Context(), child.ID, id, payload.Status, a.currentTime())
	if err != nil {
		handleFriendRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friend_request": request})
}

func handleFriendRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFriendRequestNotFound):
		respondError(c, http.StatusNotFound, "friend request not found")
	case errors.Is(err, service.ErrInvalidFriendRequest):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondInternal(c, err)
	}
}
