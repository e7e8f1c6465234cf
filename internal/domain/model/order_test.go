package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSaleStateCanMove(t *testing.T) {
	cases := []struct {
		from, to SaleState
		want     bool
	}{
		{SaleStateAwaitingPaymentMethod, SaleStatePaymentInitiated, true},
		{SaleStateAwaitingPaymentMethod, SaleStateCleared, false},
		{SaleStatePaymentInitiated, SaleStateOverrideReview, true},
		{SaleStatePaymentInitiated, SaleStateCleared, true},
		{SaleStatePaymentPending, SaleStateCleared, true},
		{SaleStatePaymentPending, SaleStatePaymentInitiated, false},
		{SaleStateOverrideReview, SaleStatePaymentInitiated, true},
		{SaleStateOverrideReview, SaleStatePaymentPending, false},
		{SaleStatePaymentFailed, SaleStatePaymentInitiated, true},
		{SaleStateCleared, SaleStateCancelled, false},
		{SaleStateCancelled, SaleStatePaymentInitiated, false},
	}
	for _, c := range cases {
		if got := c.from.CanMove(c.to); got != c.want {
			t.Errorf("%s -> %s: expected %v, got %v", c.from, c.to, c.want, got)
		}
	}
}

func TestSaleStateTerminal(t *testing.T) {
	if !SaleStateCleared.Terminal() || !SaleStateCancelled.Terminal() {
		t.Fatal("expected cleared and cancelled to be terminal")
	}
	if SaleStatePaymentPending.Terminal() {
		t.Fatal("payment pending must not be terminal")
	}
}

func TestNewOrderFromQuotationFreezesTerms(t *testing.T) {
	now := time.Now()
	q := &Quotation{
		ID:              uuid.New(),
		CustomerID:      uuid.New(),
		Items:           []QuotationItem{{SKU: "SKU-1", Quantity: 2, UnitPrice: 300}},
		FulfilmentType:  FulfilmentDelivery,
		DeliveryAddress: "12 Marina Rd",
		ReceiverName:    "A. Receiver",
		ConfirmationPIN: "4321",
		DeliveryFee:     50,
		State:           QuotationStateMutuallyApproved,
		Version:         4,
	}

	o := NewOrderFromQuotation(q, now)
	if o.Phase != PhaseSale || o.SaleState != SaleStateAwaitingPaymentMethod {
		t.Fatalf("unexpected initial state %s/%s", o.Phase, o.SaleState)
	}
	if o.GrandTotal != 650 {
		t.Fatalf("expected grand total 650, got %d", o.GrandTotal)
	}
	if o.QuotationID != q.ID || o.CustomerID != q.CustomerID {
		t.Fatal("order not linked to quotation")
	}
	if o.Terms.ConfirmationPIN != "4321" || o.Terms.QuotationVersion != 4 {
		t.Fatalf("terms not frozen: %+v", o.Terms)
	}

	// The snapshot must not alias the quotation's line slice.
	q.Items[0].UnitPrice = 999
	if o.Terms.Items[0].UnitPrice != 300 {
		t.Fatal("order terms alias the quotation items")
	}
}

func TestOrderOutstanding(t *testing.T) {
	o := &Order{GrandTotal: 1000, CapturedTotal: 400}
	if got := o.Outstanding(); got != 600 {
		t.Fatalf("expected 600, got %d", got)
	}
	o.CapturedTotal = 1500
	if got := o.Outstanding(); got != 0 {
		t.Fatalf("expected 0 for overpaid order, got %d", got)
	}
}

func TestOrderStateRefFollowsPhase(t *testing.T) {
	o := &Order{Phase: PhaseSale, SaleState: SaleStatePaymentPending}
	ref := o.StateRef()
	if ref.Machine != MachineSale || ref.Tag != string(SaleStatePaymentPending) {
		t.Fatalf("unexpected ref %+v", ref)
	}

	o.Phase = PhaseFulfilment
	o.FulfilmentState = FulfilmentStateShipped
	ref = o.StateRef()
	if ref.Machine != MachineFulfilment || ref.Tag != string(FulfilmentStateShipped) {
		t.Fatalf("unexpected ref %+v", ref)
	}
}
