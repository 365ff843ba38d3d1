package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/chat-relay-lambda/internal/model"
)

type UsageStorage interface {
	AddExchange(ctx context.Context, user string, exchangeID uuid.UUID, at time.Time) (model.Usage, error)
}

type UsageUsecaseDeps struct {
	// UsageStorage may be nil, which disables recording.
	UsageStorage UsageStorage
}

type UsageUsecase struct {
	UsageUsecaseDeps
	now func() time.Time
}

func NewUsageUsecase(deps UsageUsecaseDeps) *UsageUsecase {
	return &UsageUsecase{
		UsageUsecaseDeps: deps,
		now:              time.Now,
	}
}

// Record counts one successful exchange for the identity in claims. Anonymous
// invocations are not recorded and report ok=false.
func (u *UsageUsecase) Record(ctx context.Context, claims *model.Claims, exchangeID uuid.UUID) (model.Usage, bool, error) {
	user := claims.Identity()
	if u.UsageStorage == nil || user == "" {
		return model.Usage{}, false, nil
	}
	usage, err := u.UsageStorage.AddExchange(ctx, user, exchangeID, u.now())
	if err != nil {
		return model.Usage{}, false, fmt.Errorf("failed to record usage for %s: %w", user, err)
	}
	return usage, true, nil
}
