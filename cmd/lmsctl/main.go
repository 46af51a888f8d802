package main

import (
	"fmt"
	"os"

	"trainer-lms/config"
	"trainer-lms/internal/cli"
	"trainer-lms/internal/repository"
	"trainer-lms/internal/service"
	"trainer-lms/pkg/database"
	"trainer-lms/pkg/jwt"
	applogger "trainer-lms/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("LMS_CONFIG"))
	if err != nil {
		return err
	}

	logger, err := applogger.NewLogger(&cfg.Log, "lmsctl")
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Database.LogLevel, logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	defer sqlDB.Close()

	repo := repository.NewRepository(db)
	svc := service.NewService(repo, jwt.NewManager(&cfg.Auth), nil, logger)

	app := &cli.App{
		Teams:      svc.Team,
		Enrollment: svc.Enrollment,
		Units:      svc.Unit,
		Directory:  cli.NewDirectory(repo),
		Migrator:   cli.NewMigrator(sqlDB, logger),
	}

	return cli.NewRootCmd(app).Execute()
}
