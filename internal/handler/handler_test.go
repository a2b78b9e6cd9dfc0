package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2025, 4, 7, 16, 0, 0, 0, time.UTC)

type handlerFixture struct {
	api    *API
	db     *gorm.DB
	parent db.User
	child  db.User
}

func setupHandlerFixture(t *testing.T) handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.SeedLessons(gdb); err != nil {
		t.Fatalf("failed to seed lessons: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	api := NewAPI(gdb, Options{
		DefaultLimits: budget.Breakdown{Total: 120, Gaming: 60, Social: 30, Educational: 60},
		Location:      time.UTC,
		Settings:      service.SystemSettings{ScheduleDefaultAllow: true},
	})
	api.SetClock(func() time.Time { return fixedNow })

	accounts := service.NewAccountService(gdb)
	ctx := context.Background()
	parent, err := accounts.SignupParent(ctx, service.AccountInput{Username: "parent", Password: "secret123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	child, err := accounts.CreateChild(ctx, parent.ID, service.AccountInput{Username: "kid", Password: "secret123", DisplayName: "Kid"})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	return handlerFixture{api: api, db: gdb, parent: *parent, child: *child}
}

// routerAs 构造一个以指定账号身份访问的引擎
func routerAs(user db.User, register func(r gin.IRoutes)) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(func(c *gin.Context) {
		c.Set(currentUserContext, user)
		c.Next()
	})
	register(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
}
