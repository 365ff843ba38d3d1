package main

import (
	"log"
	"os"

	"github.com/iamvkosarev/chat-relay-lambda/config"
	"github.com/iamvkosarev/chat-relay-lambda/internal/app"
	"github.com/iamvkosarev/chat-relay-lambda/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	// .env is only present on developer machines
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err = app.Run(cfg, logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})); err != nil {
		log.Fatalf("failed to run chat relay: %v", err)
	}
}
