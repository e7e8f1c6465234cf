package model

import (
	"time"

	"github.com/google/uuid"
)

// CreditTier is a named credit-limit bracket with an ascending cap.
type CreditTier string

const (
	TierBronze   CreditTier = "BRONZE"
	TierSilver   CreditTier = "SILVER"
	TierGold     CreditTier = "GOLD"
	TierPlatinum CreditTier = "PLATINUM"
)

// CreditProfile tracks a customer's credit standing. Exposure is a shared
// counter across the customer's concurrent orders and is only mutated via
// atomic reserve/release operations.
type CreditProfile struct {
	CustomerID  uuid.UUID
	Tier        CreditTier
	CustomLimit int64
	Exposure    int64
	UpdatedAt   time.Time
}

// SalesAggregate accumulates a customer's completed sales volume, from which
// the earned credit limit derives. Strictly additive.
type SalesAggregate struct {
	CustomerID      uuid.UUID
	CumulativeSales int64
	EarnedLimit     int64
	UpdatedAt       time.Time
}
