package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
	testhelpers "github.com/ialim/orderflow/internal/test"
	"github.com/ialim/orderflow/internal/usecase"
)

func newCoordinatorFixture() (*usecase.PhaseCoordinator, *testhelpers.Repos, *testhelpers.PublisherStub) {
	repos := testhelpers.NewRepos()
	publisher := &testhelpers.PublisherStub{}
	c := usecase.NewPhaseCoordinator(&testhelpers.UnitOfWorkStub{Repos: repos}, publisher, testLogger())
	return c, repos, publisher
}

func approvedQuotation(repos *testhelpers.Repos, total int64) *model.Quotation {
	q := testhelpers.NewQuotation(uuid.New(), total)
	now := time.Now()
	q.State = model.QuotationStateMutuallyApproved
	q.BuyerApprovedAt = &now
	q.SellerApprovedAt = &now
	repos.QuotationRows[q.ID] = q
	return q
}

func TestCoordinatorOnQuotationApprovedCreatesOrder(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	q := approvedQuotation(repos, 1_000)

	o, err := c.OnQuotationApproved(context.Background(), q.ID)
	if err != nil {
		t.Fatalf("on approved: %v", err)
	}
	if o.QuotationID != q.ID || o.CustomerID != q.CustomerID {
		t.Fatal("order not derived from the quotation")
	}
	if o.SaleState != model.SaleStateAwaitingPaymentMethod || o.GrandTotal != 1_000 {
		t.Fatalf("unexpected order %s total=%d", o.SaleState, o.GrandTotal)
	}
	rows := repos.TransitionsFor(model.EntityOrder, o.ID)
	if len(rows) != 1 || rows[0].Event != "ORDER_CREATED" {
		t.Fatalf("unexpected audit rows %+v", rows)
	}
}

func TestCoordinatorOnQuotationApprovedIdempotent(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	q := approvedQuotation(repos, 1_000)

	ctx := context.Background()
	first, err := c.OnQuotationApproved(ctx, q.ID)
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	second, err := c.OnQuotationApproved(ctx, q.ID)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("redelivery must return the existing order")
	}
	if len(repos.OrderRows) != 1 {
		t.Fatalf("expected one order, got %d", len(repos.OrderRows))
	}
}

func TestCoordinatorOnQuotationApprovedRequiresMutualApproval(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	q := testhelpers.NewQuotation(uuid.New(), 1_000)
	repos.QuotationRows[q.ID] = q

	if _, err := c.OnQuotationApproved(context.Background(), q.ID); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
}

func TestCoordinatorOnSaleClearedReservesExposure(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	customer := uuid.New()
	o := testhelpers.NewOrder(customer, 1_000, model.SaleStateCleared)
	o.CapturedTotal = 400
	repos.OrderRows[o.ID] = o
	repos.ProfileRows[customer] = testhelpers.NewProfile(customer, model.TierSilver, 50)

	f, err := c.OnSaleCleared(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("on cleared: %v", err)
	}
	if f.State != model.FulfilmentStateAllocatingStock {
		t.Fatalf("expected allocating stock, got %s", f.State)
	}

	stored := repos.OrderRows[o.ID]
	if stored.Phase != model.PhaseFulfilment {
		t.Fatalf("expected fulfilment phase, got %s", stored.Phase)
	}
	if stored.CreditReserved != 600 {
		t.Fatalf("expected 600 reserved, got %d", stored.CreditReserved)
	}
	if repos.ProfileRows[customer].Exposure != 650 {
		t.Fatalf("expected exposure 650, got %d", repos.ProfileRows[customer].Exposure)
	}
}

func TestCoordinatorOnSaleClearedIdempotent(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	customer := uuid.New()
	o := testhelpers.NewOrder(customer, 1_000, model.SaleStateCleared)
	o.CapturedTotal = 1_000
	repos.OrderRows[o.ID] = o
	repos.ProfileRows[customer] = testhelpers.NewProfile(customer, model.TierSilver, 0)

	ctx := context.Background()
	first, err := c.OnSaleCleared(ctx, o.ID)
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	second, err := c.OnSaleCleared(ctx, o.ID)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("redelivery must return the existing fulfilment")
	}
	// Fully paid order reserves nothing.
	if repos.ProfileRows[customer].Exposure != 0 {
		t.Fatalf("expected no exposure, got %d", repos.ProfileRows[customer].Exposure)
	}
}

func TestCoordinatorOnSaleClearedRequiresClearedState(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	o := testhelpers.NewOrder(uuid.New(), 1_000, model.SaleStatePaymentPending)
	repos.OrderRows[o.ID] = o

	if _, err := c.OnSaleCleared(context.Background(), o.ID); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
}

func finalizedFixture(repos *testhelpers.Repos, reserved, cumulative int64, tier model.CreditTier) *model.Order {
	customer := uuid.New()
	o := testhelpers.NewOrder(customer, 1_000, model.SaleStateCleared)
	o.Phase = model.PhaseFulfilment
	o.FulfilmentState = model.FulfilmentStateCompleted
	o.CreditReserved = reserved
	repos.OrderRows[o.ID] = o
	repos.ProfileRows[customer] = testhelpers.NewProfile(customer, tier, reserved)
	if cumulative > 0 {
		repos.AggregateRows[customer] = &model.SalesAggregate{CustomerID: customer, CumulativeSales: cumulative}
	}
	return o
}

func TestCoordinatorOnFulfilmentCompleted(t *testing.T) {
	c, repos, publisher := newCoordinatorFixture()
	o := finalizedFixture(repos, 600, 0, model.TierBronze)

	if err := c.OnFulfilmentCompleted(context.Background(), o.ID); err != nil {
		t.Fatalf("on completed: %v", err)
	}

	stored := repos.OrderRows[o.ID]
	if stored.FinalizedAt == nil {
		t.Fatal("expected finalized timestamp")
	}
	if stored.CreditReserved != 0 {
		t.Fatalf("expected reservation released, got %d", stored.CreditReserved)
	}
	if repos.ProfileRows[o.CustomerID].Exposure != 0 {
		t.Fatalf("expected exposure 0, got %d", repos.ProfileRows[o.CustomerID].Exposure)
	}

	agg := repos.AggregateRows[o.CustomerID]
	if agg == nil || agg.CumulativeSales != 1_000 {
		t.Fatalf("unexpected aggregate %+v", agg)
	}
	if agg.EarnedLimit != 10 {
		t.Fatalf("expected earned limit 10, got %d", agg.EarnedLimit)
	}

	topics := publisher.Topics()
	if len(topics) != 1 || topics[0] != usecase.TopicOrderCompleted {
		t.Fatalf("expected completed event, got %v", topics)
	}
}

func TestCoordinatorOnFulfilmentCompletedIdempotent(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	o := finalizedFixture(repos, 600, 0, model.TierBronze)

	ctx := context.Background()
	if err := c.OnFulfilmentCompleted(ctx, o.ID); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := c.OnFulfilmentCompleted(ctx, o.ID); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if repos.AggregateRows[o.CustomerID].CumulativeSales != 1_000 {
		t.Fatalf("redelivery double-counted the sale: %d", repos.AggregateRows[o.CustomerID].CumulativeSales)
	}
}

func TestCoordinatorOnFulfilmentCompletedRequiresCompleted(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	o := finalizedFixture(repos, 0, 0, model.TierBronze)
	o.FulfilmentState = model.FulfilmentStateShipped
	repos.OrderRows[o.ID] = o

	if err := c.OnFulfilmentCompleted(context.Background(), o.ID); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
}

func TestCoordinatorTierUpgradeOnThreshold(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	// History just below the silver threshold; this sale crosses it.
	o := finalizedFixture(repos, 0, 10_000_000_000-1_000, model.TierBronze)

	if err := c.OnFulfilmentCompleted(context.Background(), o.ID); err != nil {
		t.Fatalf("on completed: %v", err)
	}
	if got := repos.ProfileRows[o.CustomerID].Tier; got != model.TierSilver {
		t.Fatalf("expected silver upgrade, got %s", got)
	}
}

func TestCoordinatorTierNeverDowngrades(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	o := finalizedFixture(repos, 0, 0, model.TierGold)

	if err := c.OnFulfilmentCompleted(context.Background(), o.ID); err != nil {
		t.Fatalf("on completed: %v", err)
	}
	if got := repos.ProfileRows[o.CustomerID].Tier; got != model.TierGold {
		t.Fatalf("tier moved down to %s", got)
	}
}

func TestCoordinatorOnOrderCancelledReleasesExposure(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	customer := uuid.New()
	o := testhelpers.NewOrder(customer, 1_000, model.SaleStateCancelled)
	o.CreditReserved = 600
	repos.OrderRows[o.ID] = o
	repos.ProfileRows[customer] = testhelpers.NewProfile(customer, model.TierSilver, 600)

	if err := c.OnOrderCancelled(context.Background(), o.ID); err != nil {
		t.Fatalf("on cancelled: %v", err)
	}
	if repos.ProfileRows[customer].Exposure != 0 {
		t.Fatalf("expected exposure released, got %d", repos.ProfileRows[customer].Exposure)
	}
	if repos.OrderRows[o.ID].CreditReserved != 0 {
		t.Fatal("reservation not cleared on the order")
	}

	// Second delivery is a no-op.
	if err := c.OnOrderCancelled(context.Background(), o.ID); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if repos.ProfileRows[customer].Exposure != 0 {
		t.Fatal("redelivery must not re-release")
	}
}

func TestCoordinatorFinalizeRefund(t *testing.T) {
	c, repos, publisher := newCoordinatorFixture()
	customer := uuid.New()
	o := testhelpers.NewOrder(customer, 1_000, model.SaleStateCleared)
	o.Phase = model.PhaseFulfilment
	o.FulfilmentState = model.FulfilmentStateRefunded
	o.CapturedTotal = 1_000
	o.PaymentMethod = "CARD"
	o.CreditReserved = 0
	repos.OrderRows[o.ID] = o
	repos.ProfileRows[customer] = testhelpers.NewProfile(customer, model.TierSilver, 0)

	if err := c.FinalizeRefund(context.Background(), o.ID, "admin:1"); err != nil {
		t.Fatalf("finalize refund: %v", err)
	}

	stored := repos.OrderRows[o.ID]
	if stored.CapturedTotal != 0 {
		t.Fatalf("expected captured total reset, got %d", stored.CapturedTotal)
	}
	if len(repos.PaymentRows) != 1 || repos.PaymentRows[0].Amount != -1_000 {
		t.Fatalf("unexpected payments %+v", repos.PaymentRows)
	}
	if !repos.PaymentRows[0].Refund() {
		t.Fatal("expected a refund payment")
	}
	topics := publisher.Topics()
	if len(topics) != 1 || topics[0] != usecase.TopicOrderRefunded {
		t.Fatalf("expected refunded event, got %v", topics)
	}
}

func TestCoordinatorFinalizeRefundRequiresRefundedState(t *testing.T) {
	c, repos, _ := newCoordinatorFixture()
	o := testhelpers.NewOrder(uuid.New(), 1_000, model.SaleStateCleared)
	o.Phase = model.PhaseFulfilment
	o.FulfilmentState = model.FulfilmentStateDelivered
	repos.OrderRows[o.ID] = o

	if err := c.FinalizeRefund(context.Background(), o.ID, "admin:1"); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
}
