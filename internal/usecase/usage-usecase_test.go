package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/chat-relay-lambda/internal/model"
)

type fakeUsageStorage struct {
	users []string
	err   error
}

func (f *fakeUsageStorage) AddExchange(_ context.Context, user string, exchangeID uuid.UUID, at time.Time) (model.Usage, error) {
	if f.err != nil {
		return model.Usage{}, f.err
	}
	f.users = append(f.users, user)
	return model.Usage{User: user, Exchanges: int64(len(f.users)), LastExchangeID: exchangeID, LastActive: at}, nil
}

func TestUsageRecordPrefersEmail(t *testing.T) {
	storage := &fakeUsageStorage{}
	usage := NewUsageUsecase(UsageUsecaseDeps{UsageStorage: storage})

	id := uuid.New()
	got, ok, err := usage.Record(context.Background(), &model.Claims{Email: "alice@example.com", Username: "alice"}, id)
	if err != nil || !ok {
		t.Fatalf("expected usage to be recorded, got ok=%v err=%v", ok, err)
	}
	if got.User != "alice@example.com" || got.LastExchangeID != id {
		t.Fatalf("unexpected usage: %+v", got)
	}

	if _, _, err = usage.Record(context.Background(), &model.Claims{Username: "bob"}, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(storage.users) != 2 || storage.users[1] != "bob" {
		t.Fatalf("expected username fallback, got %v", storage.users)
	}
}

func TestUsageRecordSkipsAnonymous(t *testing.T) {
	storage := &fakeUsageStorage{}
	usage := NewUsageUsecase(UsageUsecaseDeps{UsageStorage: storage})

	for _, claims := range []*model.Claims{nil, {}} {
		_, ok, err := usage.Record(context.Background(), claims, uuid.New())
		if err != nil || ok {
			t.Fatalf("anonymous invocations must not be recorded, got ok=%v err=%v", ok, err)
		}
	}
	if len(storage.users) != 0 {
		t.Fatalf("storage must not be touched: %v", storage.users)
	}
}

func TestUsageRecordDisabled(t *testing.T) {
	usage := NewUsageUsecase(UsageUsecaseDeps{})

	_, ok, err := usage.Record(context.Background(), &model.Claims{Email: "alice@example.com"}, uuid.New())
	if err != nil || ok {
		t.Fatalf("recording without storage must be a no-op, got ok=%v err=%v", ok, err)
	}
}

func TestUsageRecordStorageError(t *testing.T) {
	boom := errors.New("boom")
	usage := NewUsageUsecase(UsageUsecaseDeps{UsageStorage: &fakeUsageStorage{err: boom}})

	_, _, err := usage.Record(context.Background(), &model.Claims{Email: "alice@example.com"}, uuid.New())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}
