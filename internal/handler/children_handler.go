package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/service"
)

// ListChildren 返回当前家长的孩子
func (a *API) ListChildren(c *gin.Context) {
	parent := currentUser(c)
	children, err := a.accounts.ListChildren(c.Request.Context(), parent.ID)
	if err != nil {
		respondInternal(c, err)
		return
	}

	payload := make([]userPayload, 0, len(children))
	for _, child := range children {
		payload = append(payload, userToPayload(child))
	}
	c.JSON(http.StatusOK, gin.H{"children": payload})
}

// CreateChild 为当前家长添加孩子账号
func (a *API) CreateChild(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "invalid child payload") {
		return
	}

	parent := currentUser(c)
	child, err := a.accounts.CreateChild(c.Request.Context(), parent.ID, service.AccountInput{
		Username:    payload.Username,
		Password:    payload.Password,
		Email:       payload.Email,
		DisplayName: payload.DisplayName,
	})
	if err != nil {
		handleAccountError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"child": userToPayload(*child)})
}

// childFromParam 解析 :childId 并校验访问权限
func (a *API) childFromParam(c *gin.Context) (*db.User, bool) {
	childID, err := parseUintParam(c, "childId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid child id")
		return nil, false
	}
	return a.resolveChild(c, childID)
}

// childFromQuery 孩子账号访问自己的数据；家长需要通过 child_id 指定孩子
func (a *API) childFromQuery(c *gin.Context) (*db.User, bool) {
	actor := currentUser(c)
	childID, provided, err := parseUintQuery(c, "child_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid child id")
		return nil, false
	}
	if !provided {
		if actor.Role == db.RoleChild {
			return &actor, true
		}
		respondError(c, http.StatusBadRequest, "child_id is required")
		return nil, false
	}
	return a.resolveChild(c, childID)
}

func (a *API) resolveChild(c *gin.Context, childID uint) (*db.User, bool) {
	child, err := a.accounts.ResolveChild(c.Request.Context(), currentUser(c), childID)
	if err != nil {
		handleAccountError(c, err)
		return nil, false
	}
	return child, true
}
