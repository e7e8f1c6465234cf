package usecase

import (
	"time"

	"github.com/ialim/orderflow/internal/domain/model"
)

// Static per-tier caps in minor currency units.
var tierCaps = map[model.CreditTier]int64{
	model.TierBronze:   100_000_000,
	model.TierSilver:   500_000_000,
	model.TierGold:     2_000_000_000,
	model.TierPlatinum: 10_000_000_000,
}

// Earned-limit thresholds a customer must reach to qualify for each tier,
// checked highest first.
var tierThresholds = []struct {
	Tier model.CreditTier
	Min  int64
}{
	{model.TierPlatinum, 2_000_000_000},
	{model.TierGold, 500_000_000},
	{model.TierSilver, 100_000_000},
	{model.TierBronze, 0},
}

// TierCap returns the customer's nominal limit: the custom limit when one is
// set, else the static cap for the tier.
func TierCap(tier model.CreditTier, customLimit int64) int64 {
	if customLimit > 0 {
		return customLimit
	}
	return tierCaps[tier]
}

// EarnedLimit derives credit capacity from lifetime completed sales: every
// 100 minor units of purchase history earns 1 minor unit of limit.
func EarnedLimit(cumulativeSales int64) int64 {
	if cumulativeSales <= 0 {
		return 0
	}
	return cumulativeSales / 100
}

// TierFromEarned maps an earned limit onto the highest qualifying tier.
func TierFromEarned(earnedLimit int64) model.CreditTier {
	for _, t := range tierThresholds {
		if earnedLimit >= t.Min {
			return t.Tier
		}
	}
	return model.TierBronze
}

// EffectiveLimit is the spendable limit: the nominal cap bounded by what the
// customer has earned.
func EffectiveLimit(tier model.CreditTier, customLimit, earnedLimit int64) int64 {
	if earnedLimit < 0 {
		earnedLimit = 0
	}
	limit := TierCap(tier, customLimit)
	if earnedLimit < limit {
		return earnedLimit
	}
	return limit
}

// Overage is the amount by which the pending order would push exposure past
// the effective limit. Never negative.
func Overage(exposure, orderTotal, effectiveLimit int64) int64 {
	over := exposure + orderTotal - effectiveLimit
	if over < 0 {
		return 0
	}
	return over
}

// CheckCredit runs a full credit check and returns the snapshot recorded on
// the order for audit.
func CheckCredit(profile *model.CreditProfile, earnedLimit, orderTotal int64, now time.Time) model.CreditSnapshot {
	limit := EffectiveLimit(profile.Tier, profile.CustomLimit, earnedLimit)
	return model.CreditSnapshot{
		Tier:           profile.Tier,
		EffectiveLimit: limit,
		Exposure:       profile.Exposure,
		Overage:        Overage(profile.Exposure, orderTotal, limit),
		CheckedAt:      now,
	}
}
