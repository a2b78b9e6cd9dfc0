package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/service"
)

func screenTimeRoutes(api *API) func(r gin.IRoutes) {
	return func(r gin.IRoutes) {
		r.GET("/screen-time/:childId", api.GetScreenTime)
		r.PUT("/screen-time/:childId/limits", api.UpdateLimits)
		r.POST("/screen-time/:childId/usage", api.LogUsage)
		r.POST("/screen-time/:childId/rewards", api.CreditReward)
		r.GET("/screen-time/:childId/available", api.GetAvailable)
		r.GET("/screen-time/:childId/allowed", api.CheckAllowed)
		r.POST("/screen-time/:childId/schedule", api.CreateScheduleEntry)
	}
}

func TestScreenTimeHandlersFlow(t *testing.T) {
	f := setupHandlerFixture(t)
	r := routerAs(f.parent, screenTimeRoutes(f.api))
	base := fmt.Sprintf("/screen-time/%d", f.child.ID)

	rr := doJSON(t, r, http.MethodPost, base+"/rewards", gin.H{"source": "chores", "minutes": 30})
	if rr.Code != http.StatusOK {
		t.Fatalf("credit reward: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, r, http.MethodPost, base+"/usage", gin.H{"category": "gaming", "minutes": 75})
	if rr.Code != http.StatusOK {
		t.Fatalf("log usage: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, r, http.MethodGet, base, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", rr.Code)
	}
	var summary struct {
		ScreenTime budget.Summary `json:"screen_time"`
	}
	decodeBody(t, rr, &summary)
	if summary.ScreenTime.Day != "2025-04-07" {
		t.Fatalf("expected day 2025-04-07, got %s", summary.ScreenTime.Day)
	}
	if summary.ScreenTime.Available.Total != 75 || summary.ScreenTime.Available.Gaming != 0 {
		t.Fatalf("unexpected available %+v", summary.ScreenTime.Available)
	}

	rr = doJSON(t, r, http.MethodGet, base+"/available?category=social", nil)
	var available struct {
		Available int `json:"available"`
	}
	decodeBody(t, rr, &available)
	if rr.Code != http.StatusOK || available.Available != 30 {
		t.Fatalf("expected 30 social minutes, got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, r, http.MethodGet, base+"?date=2025-04-08", nil)
	decodeBody(t, rr, &summary)
	if summary.ScreenTime.Used.Total != 0 || summary.ScreenTime.Available.Total != 120 {
		t.Fatalf("next day must start fresh, got %+v", summary.ScreenTime)
	}
}

func TestScreenTimeHandlersValidation(t *testing.T) {
	f := setupHandlerFixture(t)
	r := routerAs(f.parent, screenTimeRoutes(f.api))
	base := fmt.Sprintf("/screen-time/%d", f.child.ID)

	cases := []struct {
		name   string
		method string
		target string
		body   interface{}
		status int
	}{
		{"unknown category", http.MethodPost, base + "/usage", gin.H{"category": "music", "minutes": 5}, http.StatusBadRequest},
		{"zero minutes", http.MethodPost, base + "/usage", gin.H{"category": "gaming", "minutes": 0}, http.StatusBadRequest},
		{"unknown source", http.MethodPost, base + "/rewards", gin.H{"source": "sports", "minutes": 5}, http.StatusBadRequest},
		{"category over total", http.MethodPut, base + "/limits", gin.H{"total": 30, "gaming": 45}, http.StatusBadRequest},
		{"negative limit", http.MethodPut, base + "/limits", gin.H{"social": -1}, http.StatusBadRequest},
		{"bad date", http.MethodGet, base + "?date=07-04-2025", nil, http.StatusBadRequest},
		{"bad child id", http.MethodGet, "/screen-time/abc", nil, http.StatusBadRequest},
		{"unknown child", http.MethodGet, "/screen-time/9999", nil, http.StatusNotFound},
		{"bad window", http.MethodPost, base + "/schedule", gin.H{"day_of_week": "monday", "start_time": "17:00", "end_time": "15:00"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, r, tc.method, tc.target, tc.body)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rr.Code, rr.Body.String())
			}
		})
	}

	rr := doJSON(t, r, http.MethodGet, base, nil)
	var summary struct {
		ScreenTime budget.Summary `json:"screen_time"`
	}
	decodeBody(t, rr, &summary)
	if summary.ScreenTime.Used.Total != 0 || summary.ScreenTime.Limits.Total != 120 {
		t.Fatalf("rejected calls must not change state, got %+v", summary.ScreenTime)
	}
}

func TestUpdateLimitsLowersOmittedCategories(t *testing.T) {
	f := setupHandlerFixture(t)
	r := routerAs(f.parent, screenTimeRoutes(f.api))
	base := fmt.Sprintf("/screen-time/%d", f.child.ID)

	rr := doJSON(t, r, http.MethodPut, base+"/limits", gin.H{"total": 20, "gaming": 20})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	var resp struct {
		Limits budget.Breakdown `json:"daily_limits"`
	}
	decodeBody(t, rr, &resp)
	want := budget.Breakdown{Total: 20, Gaming: 20, Social: 20, Educational: 20}
	if resp.Limits != want {
		t.Fatalf("expected %+v, got %+v", want, resp.Limits)
	}

	rr = doJSON(t, r, http.MethodPut, base+"/limits", gin.H{"total": 90})
	decodeBody(t, rr, &resp)
	if resp.Limits != (budget.Breakdown{Total: 90, Gaming: 20, Social: 20, Educational: 20}) {
		t.Fatalf("raising total must keep sub-limits, got %+v", resp.Limits)
	}

	if rr := doJSON(t, r, http.MethodPut, base+"/limits", gin.H{"total": 10, "social": 15}); rr.Code != http.StatusBadRequest {
		t.Fatalf("explicit sub-limit over total: expected 400, got %d", rr.Code)
	}
}

func TestCheckAllowedUsesSchedule(t *testing.T) {
	f := setupHandlerFixture(t)
	r := routerAs(f.parent, screenTimeRoutes(f.api))
	base := fmt.Sprintf("/screen-time/%d", f.child.ID)

	rr := doJSON(t, r, http.MethodPost, base+"/schedule", gin.H{"day_of_week": "monday", "start_time": "15:00", "end_time": "17:00"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create schedule: expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}

	cases := []struct {
		at   string
		want bool
	}{
		{"2025-04-07T16:00:00Z", true},
		{"2025-04-07T17:00:00Z", false},
		{"2025-04-08T16:00:00Z", true},
	}
	for _, tc := range cases {
		rr := doJSON(t, r, http.MethodGet, base+"/allowed?at="+tc.at, nil)
		var payload struct {
			Allowed bool `json:"allowed"`
		}
		decodeBody(t, rr, &payload)
		if payload.Allowed != tc.want {
			t.Fatalf("allowed at %s: expected %v, got %v", tc.at, tc.want, payload.Allowed)
		}
	}
}

func TestOtherParentForbidden(t *testing.T) {
	f := setupHandlerFixture(t)
	other, err := f.api.accounts.SignupParent(t.Context(), service.AccountInput{Username: "other", Password: "secret123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	r := routerAs(*other, screenTimeRoutes(f.api))
	rr := doJSON(t, r, http.MethodGet, fmt.Sprintf("/screen-time/%d", f.child.ID), nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another parent, got %d", rr.Code)
	}
}
