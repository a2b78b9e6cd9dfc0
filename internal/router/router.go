package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shepherdtime/internal/handler"
	"github.com/shepherdtime/internal/logging"
)

const sessionName = "shepherdtime_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware())

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/signup", api.Signup)
		authGroup.POST("/login", api.Login)
		authGroup.POST("/logout", api.Logout)
		authGroup.GET("/me", api.AuthRequired(), api.Me)
	}

	// 需要登录的路由
	auth := apiGroup.Group("")
	auth.Use(api.AuthRequired())

	parent := auth.Group("")
	parent.Use(api.ParentRequired())
	{
		parent.GET("/children", api.ListChildren)
		parent.POST("/children", api.CreateChild)

		parent.GET("/alerts", api.ListAlerts)
		parent.PUT("/alerts/:id", api.UpdateAlert)

		parent.GET("/settings/policy", api.GetPolicySettings)
		parent.PUT("/settings/policy", api.UpdatePolicySettings)
	}

	screenTime := auth.Group("/screen-time/:childId")
	{
		screenTime.GET("", api.GetScreenTime)
		screenTime.POST("/usage", api.LogUsage)
		screenTime.GET("/available", api.GetAvailable)
		screenTime.GET("/allowed", api.CheckAllowed)
		screenTime.GET("/schedule", api.ListSchedule)
		screenTime.GET("/apps", api.ListApps)
		screenTime.GET("/apps/check", api.CheckApp)
		screenTime.GET("/games", api.ListGames)
		screenTime.POST("/games", api.ReportGame)
		screenTime.GET("/friend-requests", api.ListFriendRequests)
		screenTime.POST("/friend-requests", api.CreateFriendRequest)

		manage := screenTime.Group("")
		manage.Use(api.ParentRequired())
		{
			manage.PUT("/limits", api.UpdateLimits)
			manage.POST("/rewards", api.CreditReward)
			manage.POST("/schedule", api.CreateScheduleEntry)
			manage.PUT("/schedule/:id", api.UpdateScheduleEntry)
			manage.DELETE("/schedule/:id", api.DeleteScheduleEntry)
			manage.POST("/apps", api.CreateApp)
			manage.PUT("/apps/:id", api.UpdateApp)
			manage.PUT("/games/:id", api.ReviewGame)
			manage.PUT("/friend-requests/:id", api.DecideFriendRequest)
		}
	}

	scripture := auth.Group("/scripture")
	{
		scripture.GET("", api.ListScripture)
		scripture.POST("", api.AssignScripture)
		scripture.POST("/:id/attempt", api.AttemptScripture)
		scripture.POST("/chapters/claim", api.ClaimChapter)
	}

	lessons := auth.Group("/lessons")
	{
		lessons.GET("", api.ListLessons)
		lessons.GET("/progress", api.GetLessonProgress)
		lessons.GET("/:id", api.GetLesson)
		lessons.POST("/:id/complete", api.CompleteLesson)
	}

	prayers := auth.Group("/prayers")
	{
		prayers.GET("", api.ListPrayers)
		prayers.POST("", api.CreatePrayer)
	}

	return r
}
