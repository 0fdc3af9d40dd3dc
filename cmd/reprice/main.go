// Command reprice runs a single pricing pass and prints the report as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stocky-api/internal/repository"
	"stocky-api/internal/service"
	"stocky-api/pkg/config"
	"stocky-api/pkg/database"
	"stocky-api/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("stocky-reprice")
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// no hub: nobody is listening for broadcasts from a one-off run
	pricing := service.NewPricingService(repository.NewProductRepo(db), nil, log)
	report, err := pricing.RunPricingPass(ctx, time.Now())
	if err != nil {
		log.Fatal("Pricing pass failed", zap.Error(err))
	}

	if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
		log.Fatal("Failed to write report", zap.Error(err))
	}
}
