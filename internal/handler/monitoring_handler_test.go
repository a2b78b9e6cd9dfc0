package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/service"
)

func monitoringRoutes(api *API) func(r gin.IRoutes) {
	return func(r gin.IRoutes) {
		r.GET("/screen-time/:childId/games", api.ListGames)
		r.POST("/screen-time/:childId/games", api.ReportGame)
		r.PUT("/screen-time/:childId/games/:id", api.ReviewGame)
		r.GET("/screen-time/:childId/friend-requests", api.ListFriendRequests)
		r.POST("/screen-time/:childId/friend-requests", api.CreateFriendRequest)
		r.PUT("/screen-time/:childId/friend-requests/:id", api.DecideFriendRequest)
		r.GET("/alerts", api.ListAlerts)
	}
}

func TestGameHandlers(t *testing.T) {
	f := setupHandlerFixture(t)
	childRouter := routerAs(f.child, monitoringRoutes(f.api))
	parentRouter := routerAs(f.parent, monitoringRoutes(f.api))
	base := fmt.Sprintf("/screen-time/%d/games", f.child.ID)

	rr := doJSON(t, childRouter, http.MethodPost, base, gin.H{"name": "Roblox", "minutes": 25, "red_flags": []string{"chat"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	var report service.GameReportResult
	decodeBody(t, rr, &report)
	if !report.Allowed || report.Game.ScreenTime != 25 || report.Usage == nil || report.Usage.Record.Used.Gaming != 25 {
		t.Fatalf("unexpected report %+v", report)
	}

	review := fmt.Sprintf("%s/%d", base, report.Game.ID)
	if rr := doJSON(t, parentRouter, http.MethodPut, review, gin.H{}); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing approved: expected 400, got %d", rr.Code)
	}
	if rr := doJSON(t, parentRouter, http.MethodPut, review, gin.H{"approved": false}); rr.Code != http.StatusOK {
		t.Fatalf("review: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if rr := doJSON(t, parentRouter, http.MethodPut, base+"/9999", gin.H{"approved": true}); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown game: expected 404, got %d", rr.Code)
	}

	rr = doJSON(t, childRouter, http.MethodPost, base, gin.H{"name": "roblox", "minutes": 5})
	decodeBody(t, rr, &report)
	if report.Allowed {
		t.Fatal("denied game must report allowed=false")
	}
	if rr := doJSON(t, childRouter, http.MethodPost, base, gin.H{"name": "", "minutes": 5}); rr.Code != http.StatusBadRequest {
		t.Fatalf("empty name: expected 400, got %d", rr.Code)
	}
	if rr := doJSON(t, childRouter, http.MethodPost, base, gin.H{"name": "Tetris", "played_at": "yesterday"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad played_at: expected 400, got %d", rr.Code)
	}

	rr = doJSON(t, parentRouter, http.MethodGet, "/alerts", nil)
	var alerts struct {
		Alerts []db.Alert `json:"alerts"`
	}
	decodeBody(t, rr, &alerts)
	if len(alerts.Alerts) != 2 || alerts.Alerts[0].Type != db.AlertTypeDeniedGame || alerts.Alerts[1].Type != db.AlertTypeGameReview {
		t.Fatalf("expected review and denied alerts, got %+v", alerts.Alerts)
	}

	rr = doJSON(t, parentRouter, http.MethodGet, base, nil)
	var list struct {
		Games []db.GameSession `json:"games"`
	}
	decodeBody(t, rr, &list)
	if len(list.Games) != 1 || list.Games[0].ScreenTime != 30 {
		t.Fatalf("expected one game with 30 minutes, got %+v", list.Games)
	}
}

func TestFriendRequestHandlers(t *testing.T) {
	f := setupHandlerFixture(t)
	childRouter := routerAs(f.child, monitoringRoutes(f.api))
	parentRouter := routerAs(f.parent, monitoringRoutes(f.api))
	base := fmt.Sprintf("/screen-time/%d/friend-requests", f.child.ID)

	rr := doJSON(t, childRouter, http.MethodPost, base, gin.H{"friend_name": "Ava"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	var created struct {
		Request db.FriendRequest `json:"friend_request"`
	}
	decodeBody(t, rr, &created)
	if created.Request.Status != db.FriendRequestPending || !created.Request.RequestedAt.Equal(fixedNow) {
		t.Fatalf("unexpected request %+v", created.Request)
	}

	decide := fmt.Sprintf("%s/%d", base, created.Request.ID)
	if rr := doJSON(t, parentRouter, http.MethodPut, decide, gin.H{"status": "later"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", rr.Code)
	}
	if rr := doJSON(t, parentRouter, http.MethodPut, decide, gin.H{"status": "approved"}); rr.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	if rr := doJSON(t, parentRouter, http.MethodPut, base+"/9999", gin.H{"status": "approved"}); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown request: expected 404, got %d", rr.Code)
	}

	rr = doJSON(t, parentRouter, http.MethodGet, base+"?status=approved", nil)
	var list struct {
		Requests []db.FriendRequest `json:"friend_requests"`
	}
	decodeBody(t, rr, &list)
	if len(list.Requests) != 1 || list.Requests[0].FriendName != "Ava" {
		t.Fatalf("expected the approved request, got %+v", list.Requests)
	}
	if rr := doJSON(t, parentRouter, http.MethodGet, base+"?status=maybe", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown status filter: expected 400, got %d", rr.Code)
	}
}
