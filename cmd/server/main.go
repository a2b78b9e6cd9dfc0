package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shepherdtime/internal/config"
	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/handler"
	"github.com/shepherdtime/internal/logging"
	"github.com/shepherdtime/internal/router"
	"github.com/shepherdtime/internal/service"
	log "github.com/sirupsen/logrus"
)

func main() {
	// .env 不存在时直接使用进程环境变量
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFile)
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DSN()); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}

	api := handler.NewAPI(db.DB, handler.Options{
		DefaultLimits: cfg.DefaultLimits,
		Location:      cfg.Location,
		Settings: service.SystemSettings{
			ScheduleDefaultAllow: cfg.ScheduleDefaultAllow,
			MaxDailyBonusMinutes: cfg.MaxDailyBonusMinutes,
		},
	})

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg.SessionSecret)
	log.WithFields(log.Fields{
		"addr":     cfg.ListenAddr,
		"timezone": cfg.Location.String(),
	}).Info("server starting")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.WithError(err).Fatal("failed to run server")
	}
}
