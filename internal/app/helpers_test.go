package app

import (
	"testing"
	"time"

	"github.com/iamvkosarev/chat-relay-lambda/config"
	"github.com/iamvkosarev/chat-relay-lambda/internal/usecase"
)

var usageProbeTime = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

func mustHistoryGenerator(t *testing.T, cfg *config.Config) *usecase.HistoryGenerator {
	t.Helper()
	gen, err := usecase.NewHistoryGenerator(cfg.Generation, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return gen
}
