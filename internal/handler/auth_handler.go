package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/logging"
	"github.com/shepherdtime/internal/service"
)

const (
	sessionUserIDKey   = "user_id"
	currentUserContext = "__current_user"
)

type credentialsPayload struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type userPayload struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	ParentID    *uint  `json:"parent_id,omitempty"`
	DisplayName string `json:"display_name"`
}

func userToPayload(u db.User) userPayload {
	return userPayload{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		ParentID:    u.ParentID,
		DisplayName: u.DisplayName,
	}
}

// Signup 注册家长账号并直接登录
func (a *API) Signup(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "invalid signup payload") {
		return
	}

	user, err := a.accounts.SignupParent(c.Request.Context(), service.AccountInput{
		Username:    payload.Username,
		Password:    payload.Password,
		Email:       payload.Email,
		DisplayName: payload.DisplayName,
	})
	if err != nil {
		handleAccountError(c, err)
		return
	}

	if err := startSession(c, user.ID); err != nil {
		respondInternal(c, err)
		return
	}
	logging.FromContext(c).WithField("user_id", user.ID).Info("parent signed up")
	c.JSON(http.StatusCreated, gin.H{"user": userToPayload(*user)})
}

// Login 校验用户名密码并写入会话
func (a *API) Login(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "invalid login payload") {
		return
	}

	user, err := a.accounts.Authenticate(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		handleAccountError(c, err)
		return
	}

	if err := startSession(c, user.ID); err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userToPayload(*user)})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me 返回当前登录账号
func (a *API) Me(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": userToPayload(user)})
}

// AuthRequired 校验会话并把当前账号放入上下文
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserIDKey).(uint)
		if !ok || userID == 0 {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}

		user, err := a.accounts.Get(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				session.Clear()
				_ = session.Save()
				respondError(c, http.StatusUnauthorized, "authentication required")
			} else {
				respondInternal(c, err)
			}
			c.Abort()
			return
		}

		c.Set(currentUserContext, *user)
		c.Next()
	}
}

// ParentRequired 只允许家长账号访问，需放在 AuthRequired 之后
func (a *API) ParentRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsParent() {
			respondError(c, http.StatusForbidden, "parent account required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func startSession(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserIDKey, userID)
	return session.Save()
}

func currentUser(c *gin.Context) db.User {
	if value, ok := c.Get(currentUserContext); ok {
		if user, ok := value.(db.User); ok {
			return user
		}
	}
	return db.User{}
}

func handleAccountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAccount):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		respondError(c, http.StatusBadRequest, "username already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "child not found")
	default:
		respondInternal(c, err)
	}
}
