package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/shepherdtime/internal/budget"
	"github.com/shepherdtime/internal/config"
	"github.com/shepherdtime/internal/db"
	"github.com/shepherdtime/internal/service"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	demoParent   = "demo_parent"
	demoChild    = "demo_child"
	demoPassword = "demo1234"
)

// 演示数据生成器
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// 初始化数据库
	if err := db.Init(cfg.DSN()); err != nil {
		log.WithError(err).Fatal("数据库初始化失败")
	}

	fmt.Println("开始生成演示数据...")
	if err := seedDemoFamily(context.Background(), db.DB, cfg.DefaultLimits); err != nil {
		log.WithError(err).Fatal("生成演示数据失败")
	}

	fmt.Println("演示数据生成完成！")
	fmt.Printf("家长: %s (密码: %s)\n", demoParent, demoPassword)
	fmt.Printf("孩子: %s (密码: %s)\n", demoChild, demoPassword)
}

// seedDemoFamily 创建一个家长、一个孩子以及时段、应用和经文，已存在时跳过
func seedDemoFamily(ctx context.Context, gdb *gorm.DB, defaults budget.Breakdown) error {
	var count int64
	if err := gdb.Model(&db.User{}).Where("username = ?", demoParent).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		fmt.Println("演示账号已存在，跳过创建")
		return nil
	}

	accounts := service.NewAccountService(gdb)
	parent, err := accounts.SignupParent(ctx, service.AccountInput{Username: demoParent, Password: demoPassword, DisplayName: "Demo Parent"})
	if err != nil {
		return err
	}
	child, err := accounts.CreateChild(ctx, parent.ID, service.AccountInput{Username: demoChild, Password: demoPassword, DisplayName: "Demo Child"})
	if err != nil {
		return err
	}

	engine := budget.NewEngine(service.NewBudgetStore(gdb), budget.Policy{DefaultLimits: defaults})
	if _, err := engine.SetLimits(ctx, child.ID, defaults); err != nil {
		return err
	}

	schedules := service.NewScheduleService(gdb)
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		if _, err := schedules.Create(ctx, child.ID, service.ScheduleInput{DayOfWeek: day, StartTime: "15:00", EndTime: "18:00", Enabled: true}); err != nil {
			return err
		}
	}
	for _, day := range []string{"saturday", "sunday"} {
		if _, err := schedules.Create(ctx, child.ID, service.ScheduleInput{DayOfWeek: day, StartTime: "09:00", EndTime: "12:00", Enabled: true}); err != nil {
			return err
		}
		if _, err := schedules.Create(ctx, child.ID, service.ScheduleInput{DayOfWeek: day, StartTime: "14:00", EndTime: "17:00", Enabled: true}); err != nil {
			return err
		}
	}

	apps := service.NewAppService(gdb, nil)
	demoApps := []service.AppInput{
		{Name: "Minecraft", Category: db.AppCategoryGaming},
		{Name: "Duolingo", Category: db.AppCategoryEducational},
		{Name: "TikTok", Category: db.AppCategorySocial, Blocked: true},
	}
	for _, app := range demoApps {
		if _, err := apps.Create(ctx, child.ID, app); err != nil {
			return err
		}
	}

	scriptures := service.NewScriptureService(gdb, engine)
	passages := []service.PassageInput{
		{Reference: "John 3:16", Content: "For God so loved the world that he gave his one and only Son that whoever believes in him shall not perish but have eternal life"},
		{Reference: "Psalm 23:1", Content: "The Lord is my shepherd I lack nothing"},
		{Reference: "Philippians 4:13", Content: "I can do all this through him who gives me strength"},
	}
	for _, p := range passages {
		if _, err := scriptures.Assign(ctx, child.ID, p); err != nil {
			return err
		}
	}

	return nil
}
