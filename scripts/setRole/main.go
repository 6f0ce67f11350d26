// Command setRole grants or revokes the admin role of a registered user.
package main

import (
	"context"
	"flag"
	"strings"

	"go.uber.org/zap"

	"lms/config"
	"lms/database"
	"lms/logger"
	"lms/models"
	authService "lms/services/auth"
)

func main() {
	email := flag.String("email", "", "email of the user")
	role := flag.String("role", models.RoleAdmin, "USER or ADMIN")
	flag.Parse()

	config.LoadConfig()
	log, err := logger.New(config.AppConfig)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if *email == "" {
		log.Fatal("-email is required")
	}

	database.ConnectDb()
	svc := authService.New(database.Database.Db, config.AppConfig.SaltRound, log)

	user, err := svc.SetRole(context.Background(), *email, strings.ToUpper(*role))
	if err != nil {
		log.Fatal("Failed to update role", zap.Error(err))
	}
	log.Info("Role updated", zap.Uint("userId", user.ID), zap.String("email", user.Email), zap.String("role", user.Role))
}
