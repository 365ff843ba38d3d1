package model

import (
	"time"

	"github.com/google/uuid"
)

type Usage struct {
	User           string
	Exchanges      int64
	LastExchangeID uuid.UUID
	LastActive     time.Time
}
