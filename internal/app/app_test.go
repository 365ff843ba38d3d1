package app

import (
	"testing"

	"github.com/iamvkosarev/chat-relay-lambda/config"
	"github.com/iamvkosarev/chat-relay-lambda/pkg/logger"
)

func TestNewWiresProviders(t *testing.T) {
	cases := map[string]func(cfg *config.Config){
		"history provider": func(cfg *config.Config) {},
		"openai provider": func(cfg *config.Config) {
			cfg.Generation.Provider = config.ProviderOpenAI
		},
		"memory usage": func(cfg *config.Config) {
			cfg.Usage.Driver = config.UsageDriverMemory
		},
		"redis usage": func(cfg *config.Config) {
			cfg.Usage.Driver = config.UsageDriverRedis
			cfg.Redis.Endpoint = "localhost:6379"
		},
		"context budget": func(cfg *config.Config) {
			cfg.Generation.MaxContextTokens = 2048
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig("http://localhost:8000/")
			mutate(cfg)
			relayApp, err := New(cfg, logger.Discard())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if relayApp.Relay == nil || relayApp.Usage == nil {
				t.Fatalf("expected wired usecases")
			}
		})
	}
}

func TestNewRejectsMalformedEndpoint(t *testing.T) {
	if _, err := New(testConfig("://bad"), logger.Discard()); err == nil {
		t.Fatalf("expected error for malformed endpoint")
	}
}
