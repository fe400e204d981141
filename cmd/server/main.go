package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/sixpine/internal/app"
	"github.com/sixpine/internal/config"
	"github.com/sixpine/internal/logger"
	"github.com/sixpine/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	printStartupBanner(mode)

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	log := logger.S()

	release := cfg.Server.Mode == "release"
	for name, secret := range map[string]string{"jwt": cfg.JWT.SecretKey, "user_jwt": cfg.UserJWT.SecretKey} {
		if !isWeakSecret(secret) {
			continue
		}
		if release {
			log.Fatalw("weak_jwt_secret", "key", name)
		}
		log.Warnw("weak_jwt_secret", "key", name)
	}
	if strings.TrimSpace(cfg.Payment.WebhookSecret) == "" {
		log.Warnw("payment_webhook_secret_missing")
	}

	// 初始化数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, !release); err != nil {
		log.Fatalw("db_init_failed", "error", err)
	}

	// 自动迁移数据库表
	if err := models.AutoMigrate(); err != nil {
		log.Fatalw("db_migrate_failed", "error", err)
	}

	if release {
		gin.SetMode(gin.ReleaseMode)
		if cfg.App.DefaultAdminPassword == "admin123" {
			log.Warnw("default_admin_password_unchanged", "username", cfg.App.DefaultAdminUsername)
		}
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  log,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		log.Fatalw("app_run_failed", "error", err)
	}
}

func printStartupBanner(mode string) {
	fmt.Println(ansiCyan + "███████╗██╗██╗  ██╗██████╗ ██╗███╗   ██╗███████╗" + ansiReset)
	fmt.Println(ansiCyan + "██╔════╝██║╚██╗██╔╝██╔══██╗██║████╗  ██║██╔════╝" + ansiReset)
	fmt.Println(ansiCyan + "███████╗██║ ╚███╔╝ ██████╔╝██║██╔██╗ ██║█████╗  " + ansiReset)
	fmt.Println(ansiCyan + "╚════██║██║ ██╔██╗ ██╔═══╝ ██║██║╚██╗██║██╔══╝  " + ansiReset)
	fmt.Println(ansiCyan + "███████║██║██╔╝ ██╗██║     ██║██║ ╚████║███████╗" + ansiReset)
	fmt.Println(ansiCyan + "╚══════╝╚═╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝  ╚═══╝╚══════╝" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Sixpine storefront API" + ansiReset + ansiDim + "  mode=" + mode + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
