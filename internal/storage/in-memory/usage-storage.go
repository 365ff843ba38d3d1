package in_memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/chat-relay-lambda/internal/model"
)

// UsageStorage keeps counters for the lifetime of the execution environment only.
type UsageStorage struct {
	mu    sync.Mutex
	usage map[string]*model.Usage
}

func NewUsageStorage() *UsageStorage {
	return &UsageStorage{
		usage: make(map[string]*model.Usage),
	}
}

func (u *UsageStorage) AddExchange(
	_ context.Context,
	user string,
	exchangeID uuid.UUID,
	at time.Time,
) (model.Usage, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	usage, ok := u.usage[user]
	if !ok {
		usage = &model.Usage{User: user}
		u.usage[user] = usage
	}
	usage.Exchanges++
	usage.LastExchangeID = exchangeID
	usage.LastActive = at
	return *usage, nil
}
