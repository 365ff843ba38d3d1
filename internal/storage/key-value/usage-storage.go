package key_value

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/chat-relay-lambda/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	fieldExchanges      = "exchanges"
	fieldLastExchangeID = "last_exchange_id"
	fieldLastActive     = "last_active"
)

type UsageStorage struct {
	rdb *redis.Client
}

func NewUsageStorage(rdb *redis.Client) *UsageStorage {
	return &UsageStorage{
		rdb: rdb,
	}
}

func (u *UsageStorage) AddExchange(
	ctx context.Context,
	user string,
	exchangeID uuid.UUID,
	at time.Time,
) (model.Usage, error) {
	usageKey := getUsageKey(user)

	var exchanges *redis.IntCmd
	_, err := u.rdb.TxPipelined(
		ctx, func(pipe redis.Pipeliner) error {
			exchanges = pipe.HIncrBy(ctx, usageKey, fieldExchanges, 1)
			pipe.HSet(
				ctx, usageKey,
				fieldLastExchangeID, exchangeID.String(),
				fieldLastActive, at.UTC().Format(time.RFC3339Nano),
			)
			return nil
		},
	)
	if err != nil {
		return model.Usage{}, fmt.Errorf("failed to update usage %s: %w", usageKey, err)
	}

	return model.Usage{
		User:           user,
		Exchanges:      exchanges.Val(),
		LastExchangeID: exchangeID,
		LastActive:     at,
	}, nil
}

func getUsageKey(user string) string {
	return fmt.Sprintf("usage_%v", user)
}
