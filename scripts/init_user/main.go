package main

import (
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/shepherdtime/internal/config"
	"github.com/shepherdtime/internal/db"
	log "github.com/sirupsen/logrus"
)

// 创建初始家长账号，账号已存在时不做任何修改
func main() {
	var username, password string
	flag.StringVar(&username, "username", "parent", "parent username")
	flag.StringVar(&password, "password", "", "parent password")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	if password == "" {
		log.Fatal("password is required, pass -password")
	}

	// 初始化数据库
	if err := db.Init(cfg.DSN()); err != nil {
		log.WithError(err).Fatal("数据库初始化失败")
	}

	if err := db.EnsureUser(db.DB, username, password); err != nil {
		log.WithError(err).Fatal("创建用户失败")
	}

	fmt.Printf("家长账号已就绪: %s\n", username)
}
