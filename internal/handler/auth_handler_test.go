package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func authRouter(api *API) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.POST("/signup", api.Signup)
	r.POST("/login", api.Login)
	r.POST("/logout", api.Logout)
	r.GET("/me", api.AuthRequired(), api.Me)
	r.GET("/children", api.AuthRequired(), api.ParentRequired(), api.ListChildren)
	return r
}

func postWithCookies(r http.Handler, target string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func getWithCookies(r http.Handler, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestLoginSessionFlow(t *testing.T) {
	f := setupHandlerFixture(t)
	r := authRouter(f.api)

	if rr := getWithCookies(r, "/me", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}

	rr := postWithCookies(r, "/login", gin.H{"username": "parent", "password": "wrong"}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rr.Code)
	}

	rr = postWithCookies(r, "/login", gin.H{"username": "parent", "password": "secret123"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d (%s)", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	rr = getWithCookies(r, "/me", cookies)
	var me struct {
		User userPayload `json:"user"`
	}
	decodeBody(t, rr, &me)
	if rr.Code != http.StatusOK || me.User.ID != f.parent.ID || me.User.Role != "parent" {
		t.Fatalf("unexpected me response %d %+v", rr.Code, me.User)
	}

	rr = getWithCookies(r, "/children", cookies)
	var children struct {
		Children []userPayload `json:"children"`
	}
	decodeBody(t, rr, &children)
	if len(children.Children) != 1 || children.Children[0].ID != f.child.ID {
		t.Fatalf("unexpected children %+v", children.Children)
	}

	rr = postWithCookies(r, "/logout", gin.H{}, cookies)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rr.Code)
	}
	if rr := getWithCookies(r, "/me", rr.Result().Cookies()); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rr.Code)
	}
}

func TestChildSessionIsNotParent(t *testing.T) {
	f := setupHandlerFixture(t)
	r := authRouter(f.api)

	rr := postWithCookies(r, "/login", gin.H{"username": "kid", "password": "secret123"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rr.Code)
	}

	if rr := getWithCookies(r, "/children", rr.Result().Cookies()); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for child account, got %d", rr.Code)
	}
}

func TestSignupRejectsDuplicate(t *testing.T) {
	f := setupHandlerFixture(t)
	r := authRouter(f.api)

	rr := postWithCookies(r, "/signup", gin.H{"username": "newparent", "password": "secret123"}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	rr = postWithCookies(r, "/signup", gin.H{"username": "newparent", "password": "secret123"}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup: expected 400, got %d", rr.Code)
	}
}
