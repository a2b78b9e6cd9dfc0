package handler

import (
	"time"

	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/schedule"
	"github.com/shepherdtime/internal/service"
	"gorm.io/gorm"
)

// Options 是构造 API 时需要的策略配置
type Options struct {
	DefaultLimits budget.Breakdown
	Location      *time.Location
	Settings      service.SystemSettings
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	location   *time.Location
	accounts   *service.AccountService
	screenTime *service.ScreenTimeService
	schedules  *service.ScheduleService
	apps       *service.AppService
	games      *service.GameService
	friends    *service.FriendRequestService
	alerts     *service.AlertService
	scriptures *service.ScriptureService
	lessons    *service.LessonService
	prayers    *service.PrayerService
	system     *service.SystemSettingService
	now        func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, opts Options) *API {
	location := opts.Location
	if location == nil {
		location = time.Local
	}

	systemService := service.NewSystemSettingService(db, opts.Settings)
	engine := budget.NewEngine(service.NewBudgetStore(db), budget.Policy{
		DefaultLimits: opts.DefaultLimits,
		Location:      location,
		MaxDailyBonus: systemService.MaxDailyBonus,
	})
	scheduleService := service.NewScheduleService(db)
	gate := schedule.NewGate(scheduleService, location, systemService.ScheduleDefaultAllow)
	alertService := service.NewAlertService(db)
	screenTime := service.NewScreenTimeService(engine, gate, alertService)

	return &API{
		db:         db,
		location:   location,
		accounts:   service.NewAccountService(db),
		screenTime: screenTime,
		schedules:  scheduleService,
		apps:       service.NewAppService(db, alertService),
		games:      service.NewGameService(db, screenTime, alertService),
		friends:    service.NewFriendRequestService(db, alertService),
		alerts:     alertService,
		scriptures: service.NewScriptureService(db, engine),
		lessons:    service.NewLessonService(db, engine),
		prayers:    service.NewPrayerService(db),
		system:     systemService,
		now:        time.Now,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// SetClock 替换当前时间来源，主要面向测试场景。
func (a *API) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	a.now = now
}

func (a *API) currentTime() time.Time {
	return a.now().In(a.location)
}
