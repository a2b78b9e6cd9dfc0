package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shepherdtime/internal/budget"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string
	Port          string
	DatabasePath  string
	DatabaseURL   string
	SessionSecret string
	GinMode       string
	LogLevel      string
	LogFile       string
	Location      *time.Location

	// ScheduleDefaultAllow 决定某天没有启用时段时是否允许使用设备。
	// 未配置排期的日子默认放行
	ScheduleDefaultAllow bool
	// MaxDailyBonusMinutes 为每日计入 total 的奖励上限，budget.UnlimitedBonus 表示不限。
	MaxDailyBonusMinutes int
	DefaultLimits        budget.Breakdown
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := envString("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	location := time.Local
	if name := strings.TrimSpace(os.Getenv("APP_TIMEZONE")); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			location = loc
		}
	}

	return AppConfig{
		ListenAddr:           listenAddr,
		Port:                 port,
		DatabasePath:         envString("DATABASE_PATH", "shepherdtime.db"),
		DatabaseURL:          strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SessionSecret:        envString("SESSION_SECRET", "shepherdtime-dev-secret"),
		GinMode:              envString("GIN_MODE", "release"),
		LogLevel:             envString("LOG_LEVEL", "info"),
		LogFile:              strings.TrimSpace(os.Getenv("LOG_FILE")),
		Location:             location,
		ScheduleDefaultAllow: envBool("SCHEDULE_DEFAULT_ALLOW", true),
		MaxDailyBonusMinutes: envNonNegativeInt("MAX_DAILY_BONUS_MINUTES", budget.UnlimitedBonus),
		DefaultLimits: budget.Breakdown{
			Total:       envNonNegativeInt("DEFAULT_LIMIT_TOTAL", 120),
			Gaming:      envNonNegativeInt("DEFAULT_LIMIT_GAMING", 60),
			Social:      envNonNegativeInt("DEFAULT_LIMIT_SOCIAL", 30),
			Educational: envNonNegativeInt("DEFAULT_LIMIT_EDUCATIONAL", 60),
		},
	}
}

// DSN 返回数据库连接串，DATABASE_URL 优先于 DATABASE_PATH
func (c AppConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

func envString(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envNonNegativeInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
