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

func newOverrideFixture() (*usecase.OverrideUseCase, *testhelpers.Repos) {
	repos := testhelpers.NewRepos()
	uc := usecase.NewOverrideUseCase(&testhelpers.UnitOfWorkStub{Repos: repos}, testLogger())
	return uc, repos
}

func TestOverrideUseCaseRequest(t *testing.T) {
	uc, repos := newOverrideFixture()
	o := testhelpers.NewOrder(uuid.New(), 1_000, model.SaleStateOverrideReview)
	repos.OrderRows[o.ID] = o

	req, err := uc.Request(context.Background(), o.ID, model.OverrideAdmin, "stock urgently needed", "user:2")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Status != model.OverrideStatusPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	rows := repos.TransitionsFor(model.EntityOverride, req.ID)
	if len(rows) != 1 || rows[0].Event != "OVERRIDE_REQUESTED" {
		t.Fatalf("unexpected audit rows %+v", rows)
	}
}

func TestOverrideUseCaseRequestRequiresOrder(t *testing.T) {
	uc, _ := newOverrideFixture()
	if _, err := uc.Request(context.Background(), uuid.New(), model.OverrideAdmin, "r", "user:2"); !errors.Is(err, domainErrors.ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}

func TestOverrideUseCaseDuplicateKindRejected(t *testing.T) {
	uc, repos := newOverrideFixture()
	o := testhelpers.NewOrder(uuid.New(), 1_000, model.SaleStateOverrideReview)
	repos.OrderRows[o.ID] = o

	ctx := context.Background()
	if _, err := uc.Request(ctx, o.ID, model.OverrideAdmin, "first", "user:2"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := uc.Request(ctx, o.ID, model.OverrideAdmin, "second", "user:3"); !errors.Is(err, domainErrors.ErrOverrideAlreadyActive) {
		t.Fatalf("expected already active, got %v", err)
	}
	// A different kind is a separate slot.
	if _, err := uc.Request(ctx, o.ID, model.OverrideCreditLimit, "cover overage", "user:2"); err != nil {
		t.Fatalf("credit-limit request: %v", err)
	}
}

func TestOverrideUseCaseRequestAfterDenial(t *testing.T) {
	uc, repos := newOverrideFixture()
	o := testhelpers.NewOrder(uuid.New(), 1_000, model.SaleStateOverrideReview)
	repos.OrderRows[o.ID] = o

	ctx := context.Background()
	req, err := uc.Request(ctx, o.ID, model.OverrideAdmin, "first", "user:2")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := uc.Deny(ctx, req.ID, "admin:1"); err != nil {
		t.Fatalf("deny: %v", err)
	}
	// A denied request frees the slot.
	if _, err := uc.Request(ctx, o.ID, model.OverrideAdmin, "retry", "user:2"); err != nil {
		t.Fatalf("request after denial: %v", err)
	}
}

func TestOverrideUseCaseApprove(t *testing.T) {
	uc, repos := newOverrideFixture()
	o := testhelpers.NewOrder(uuid.New(), 1_000, model.SaleStateOverrideReview)
	repos.OrderRows[o.ID] = o

	ctx := context.Background()
	req, err := uc.Request(ctx, o.ID, model.OverrideCreditLimit, "cover overage", "user:2")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	// Credit-limit approvals demand a positive amount.
	if _, err := uc.Approve(ctx, req.ID, "admin:1", nil, 0); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}

	expires := time.Now().Add(24 * time.Hour)
	got, err := uc.Approve(ctx, req.ID, "admin:1", &expires, 600)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != model.OverrideStatusApproved || got.ApprovedAmount != 600 {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.ApprovedBy != "admin:1" {
		t.Fatalf("approver not recorded: %q", got.ApprovedBy)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
		t.Fatalf("expiry not recorded: %v", got.ExpiresAt)
	}

	// Approval is not repeatable.
	if _, err := uc.Approve(ctx, req.ID, "admin:1", nil, 600); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
}

func TestOverrideUseCaseRevokeRequiresApproved(t *testing.T) {
	uc, repos := newOverrideFixture()
	o := testhelpers.NewOrder(uuid.New(), 1_000, model.SaleStateOverrideReview)
	repos.OrderRows[o.ID] = o

	ctx := context.Background()
	req, err := uc.Request(ctx, o.ID, model.OverrideAdmin, "r", "user:2")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := uc.Revoke(ctx, req.ID, "admin:1"); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("revoke pending: expected illegal transition, got %v", err)
	}
	if _, err := uc.Approve(ctx, req.ID, "admin:1", nil, 0); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, err := uc.Revoke(ctx, req.ID, "admin:1")
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if got.Status != model.OverrideStatusRevoked {
		t.Fatalf("expected revoked, got %s", got.Status)
	}
}

func TestOverrideUseCaseExpireStale(t *testing.T) {
	uc, repos := newOverrideFixture()
	o := testhelpers.NewOrder(uuid.New(), 1_000, model.SaleStateOverrideReview)
	repos.OrderRows[o.ID] = o

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	stale := &model.OverrideRequest{
		ID: uuid.New(), OrderID: o.ID, Kind: model.OverrideAdmin,
		Status: model.OverrideStatusApproved, ExpiresAt: &past,
	}
	live := &model.OverrideRequest{
		ID: uuid.New(), OrderID: o.ID, Kind: model.OverrideCreditLimit,
		Status: model.OverrideStatusApproved, ExpiresAt: &future, ApprovedAmount: 100,
	}
	repos.OverrideRows[stale.ID] = stale
	repos.OverrideRows[live.ID] = live

	n, err := uc.ExpireStale(context.Background(), 10, "system")
	if err != nil {
		t.Fatalf("expire stale: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one expiry, got %d", n)
	}
	if repos.OverrideRows[stale.ID].Status != model.OverrideStatusExpired {
		t.Fatalf("stale override not expired: %s", repos.OverrideRows[stale.ID].Status)
	}
	if repos.OverrideRows[live.ID].Status != model.OverrideStatusApproved {
		t.Fatal("live override must be untouched")
	}
}

func TestOverrideUseCaseActiveForOrder(t *testing.T) {
	uc, repos := newOverrideFixture()
	o := testhelpers.NewOrder(uuid.New(), 1_000, model.SaleStateOverrideReview)
	repos.OrderRows[o.ID] = o

	ctx := context.Background()
	if _, err := uc.Request(ctx, o.ID, model.OverrideAdmin, "r", "user:2"); err != nil {
		t.Fatalf("request: %v", err)
	}
	list, err := uc.ActiveForOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].OrderID != o.ID {
		t.Fatalf("unexpected list %+v", list)
	}
}
