package usecase

import (
	"time"

	"github.com/ialim/orderflow/internal/domain/model"
)

// ClearanceGuard is the single authority for advancing an order to
// ClearedForFulfilment. It holds when the order is fully paid, or when a
// valid admin override exists and any remaining credit overage is covered
// by a valid credit-limit override of sufficient approved amount. An
// undersized credit-limit override keeps the order blocked; there is no
// partial clearance.
func ClearanceGuard(o *model.Order, overrides []model.OverrideRequest, now time.Time) bool {
	if o.CapturedTotal >= o.GrandTotal {
		return true
	}

	var admin, creditCover bool
	var overage int64
	if o.Credit != nil {
		overage = o.Credit.Overage
	}
	for i := range overrides {
		r := &overrides[i]
		if !r.Valid(now) {
			continue
		}
		switch r.Kind {
		case model.OverrideAdmin:
			admin = true
		case model.OverrideCreditLimit:
			if r.ApprovedAmount >= overage {
				creditCover = true
			}
		}
	}

	return admin && (overage == 0 || creditCover)
}
