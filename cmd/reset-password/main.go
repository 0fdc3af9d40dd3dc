// Command reset-password sets a new password for an account and logs out its current session.
package main

import (
	"flag"
	"fmt"
	"os"

	"stocky-api/internal/repository"
	"stocky-api/pkg/config"
	"stocky-api/pkg/database"
	"stocky-api/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("stocky-reset-password")

	email := flag.String("email", cfg.Seed.AdminEmail, "account to reset")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	if len(*password) < 6 {
		fmt.Fprintln(os.Stderr, "-password is required and must be at least 6 characters")
		os.Exit(2)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Server.Env, cfg.ServiceName); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Get()
	defer log.Sync()

	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	userRepo := repository.NewUserRepo(db)

	user, err := userRepo.FindByEmail(*email)
	if err != nil {
		log.Fatal("User not found", zap.String("email", *email), zap.Error(err))
	}

	if err := user.SetPassword(*password); err != nil {
		log.Fatal("Failed to hash password", zap.Error(err))
	}
	user.TokenVersion = uuid.New().String()
	user.UpdatedBy = "reset-password"
	if err := userRepo.Update(user); err != nil {
		log.Fatal("Failed to update password", zap.Error(err))
	}

	log.Info("Password reset", zap.String("email", user.Email))
}
