package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/iamvkosarev/chat-relay-lambda/config"
	in_memory "github.com/iamvkosarev/chat-relay-lambda/internal/storage/in-memory"
	key_value "github.com/iamvkosarev/chat-relay-lambda/internal/storage/key-value"
	"github.com/iamvkosarev/chat-relay-lambda/internal/usecase"
	openai_tools "github.com/iamvkosarev/chat-relay-lambda/pkg/openai-tools"
	"github.com/redis/go-redis/v9"
)

// Run wires the relay from cfg and hands control to the Lambda runtime.
func Run(cfg *config.Config, log *slog.Logger) error {
	relayApp, err := New(cfg, log)
	if err != nil {
		return err
	}
	log.Info(
		"Starting chat relay",
		"provider", cfg.Generation.Provider,
		"model_id", cfg.Generation.ModelID,
		"usage_driver", cfg.Usage.Driver,
	)
	lambda.Start(relayApp.Handle)
	return nil
}

// New builds the handler and its dependencies once per execution environment.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	httpClient := &http.Client{Timeout: cfg.Generation.RequestTimeout}

	var generator usecase.Generator
	switch cfg.Generation.Provider {
	case config.ProviderOpenAI:
		generator = usecase.NewOpenAIGenerator(cfg.Generation, httpClient)
	default:
		historyGenerator, err := usecase.NewHistoryGenerator(cfg.Generation, httpClient, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create history generator: %w", err)
		}
		generator = historyGenerator
	}

	var tokenCounter usecase.TokenCounter
	if cfg.Generation.MaxContextTokens > 0 {
		tokenCounter = openai_tools.Counter{Model: cfg.Generation.ModelID}
	}

	relayUsecase := usecase.NewRelayUsecase(
		usecase.RelayUsecaseDeps{
			Generator:    generator,
			TokenCounter: tokenCounter,
			Logger:       log,
		}, cfg.Generation,
	)

	var usageStorage usecase.UsageStorage
	switch cfg.Usage.Driver {
	case config.UsageDriverMemory:
		usageStorage = in_memory.NewUsageStorage()
	case config.UsageDriverRedis:
		rdb := redis.NewClient(
			&redis.Options{
				Addr:     cfg.Redis.Endpoint,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
		)
		usageStorage = key_value.NewUsageStorage(rdb)
	}

	usageUsecase := usecase.NewUsageUsecase(
		usecase.UsageUsecaseDeps{
			UsageStorage: usageStorage,
		},
	)

	return NewApp(
		AppDeps{
			Relay:  relayUsecase,
			Usage:  usageUsecase,
			Logger: log,
		},
	), nil
}
