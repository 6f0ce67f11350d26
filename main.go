package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lms/config"
	"lms/database"
	"lms/logger"
	"lms/routers"
	authService "lms/services/auth"
	courseService "lms/services/course"
	"lms/storage"
	"lms/utils"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	database.ConnectDb()
	db := database.Database.Db

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to configure storage", zap.Error(err))
	}
	local, _ := store.(*storage.LocalStorage)

	var mailer utils.Mailer = utils.ConsoleMailer{Log: log}
	if cfg.SendGridAPIKey != "" {
		mailer = utils.NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailSender, cfg.EmailSenderName)
	}

	courses := courseService.New(db, store, mailer, log, cfg.Storage.SignedURLTTL)

	app := routers.New(routers.Deps{
		APIPrefix:      cfg.APIPrefix,
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      true,
		Auth:           authService.New(db, cfg.SaltRound, log),
		Courses:        courses,
		Local:          local,
	})

	sweeper, err := utils.InitializeBlobSweeper(courses, cfg.BlobSweepSchedule, log)
	if err != nil {
		log.Fatal("Failed to start blob sweeper", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		log.Info("Shutting down")
		<-sweeper.Stop().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("Shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Server is running", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
