package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
	testhelpers "github.com/ialim/orderflow/internal/test"
	"github.com/ialim/orderflow/internal/usecase"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newQuotationFixture() (*usecase.QuotationUseCase, *testhelpers.Repos, *testhelpers.PublisherStub) {
	repos := testhelpers.NewRepos()
	publisher := &testhelpers.PublisherStub{}
	uc := usecase.NewQuotationUseCase(&testhelpers.UnitOfWorkStub{Repos: repos}, publisher, testLogger())
	return uc, repos, publisher
}

func TestQuotationUseCaseCreateDraft(t *testing.T) {
	uc, repos, _ := newQuotationFixture()
	customer := uuid.New()

	q, err := uc.CreateDraft(context.Background(), usecase.QuotationDraft{
		CustomerID: customer,
		Items:      []model.QuotationItem{{SKU: "SKU-1", Quantity: 2, UnitPrice: 500}},
		ValidUntil: time.Now().Add(7 * 24 * time.Hour),
	}, "user:1")
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if q.State != model.QuotationStateDraft || q.Version != 1 {
		t.Fatalf("unexpected draft %s v%d", q.State, q.Version)
	}
	if q.FulfilmentType != model.FulfilmentDelivery {
		t.Fatalf("expected delivery default, got %s", q.FulfilmentType)
	}
	rows := repos.TransitionsFor(model.EntityQuotation, q.ID)
	if len(rows) != 1 || rows[0].Event != "CREATED" {
		t.Fatalf("expected one CREATED audit row, got %+v", rows)
	}
}

func TestQuotationUseCaseCreateDraftValidityWindow(t *testing.T) {
	uc, _, _ := newQuotationFixture()
	items := []model.QuotationItem{{SKU: "SKU-1", Quantity: 1, UnitPrice: 100}}

	before := time.Now()
	q, err := uc.CreateDraft(context.Background(), usecase.QuotationDraft{
		CustomerID: uuid.New(),
		Items:      items,
		ValidDays:  7,
	}, "user:1")
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	want := before.AddDate(0, 0, 7)
	if q.ValidUntil.Before(want) || q.ValidUntil.After(want.Add(time.Minute)) {
		t.Fatalf("expected deadline ~%s, got %s", want, q.ValidUntil)
	}

	q, err = uc.CreateDraft(context.Background(), usecase.QuotationDraft{
		CustomerID: uuid.New(),
		Items:      items,
	}, "user:1")
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	want = before.AddDate(0, 0, 14)
	if q.ValidUntil.Before(want) || q.ValidUntil.After(want.Add(time.Minute)) {
		t.Fatalf("expected 14 day default, got %s", q.ValidUntil)
	}

	deadline := time.Now().Add(48 * time.Hour)
	q, err = uc.CreateDraft(context.Background(), usecase.QuotationDraft{
		CustomerID: uuid.New(),
		Items:      items,
		ValidDays:  30,
		ValidUntil: deadline,
	}, "user:1")
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if !q.ValidUntil.Equal(deadline) {
		t.Fatalf("expected explicit deadline to win, got %s", q.ValidUntil)
	}
}

func TestQuotationUseCaseCreateDraftValidation(t *testing.T) {
	uc, _, _ := newQuotationFixture()

	if _, err := uc.CreateDraft(context.Background(), usecase.QuotationDraft{CustomerID: uuid.New()}, "user:1"); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for empty items, got %v", err)
	}
	_, err := uc.CreateDraft(context.Background(), usecase.QuotationDraft{
		CustomerID: uuid.New(),
		Items:      []model.QuotationItem{{SKU: "SKU-1", Quantity: 0, UnitPrice: 10}},
	}, "user:1")
	if !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for zero quantity, got %v", err)
	}
}

func TestQuotationUseCaseApprovalFlowPublishes(t *testing.T) {
	uc, repos, publisher := newQuotationFixture()
	q := testhelpers.NewQuotation(uuid.New(), 1_000)
	repos.QuotationRows[q.ID] = q

	ctx := context.Background()
	if _, err := uc.Share(ctx, q.ID, "user:1"); err != nil {
		t.Fatalf("share: %v", err)
	}
	if _, err := uc.BuyerApprove(ctx, q.ID, "user:2"); err != nil {
		t.Fatalf("buyer approve: %v", err)
	}
	if len(publisher.Events) != 0 {
		t.Fatal("one-sided approval must not publish")
	}

	got, err := uc.SellerApprove(ctx, q.ID, "user:1")
	if err != nil {
		t.Fatalf("seller approve: %v", err)
	}
	if got.State != model.QuotationStateMutuallyApproved {
		t.Fatalf("expected mutually approved, got %s", got.State)
	}
	if got.Version != 4 {
		t.Fatalf("expected version 4 after three transitions, got %d", got.Version)
	}
	if len(publisher.Events) != 1 || publisher.Events[0].Topic != usecase.TopicQuotationApproved {
		t.Fatalf("expected one approval event, got %v", publisher.Topics())
	}
	if publisher.Events[0].Payload["quotation_id"] != q.ID.String() {
		t.Fatalf("unexpected payload %+v", publisher.Events[0].Payload)
	}
	rows := repos.TransitionsFor(model.EntityQuotation, q.ID)
	if len(rows) != 3 {
		t.Fatalf("expected three audit rows, got %d", len(rows))
	}
}

func TestQuotationUseCaseEditResetsApprovals(t *testing.T) {
	uc, repos, _ := newQuotationFixture()
	q := testhelpers.NewQuotation(uuid.New(), 1_000)
	repos.QuotationRows[q.ID] = q

	ctx := context.Background()
	if _, err := uc.Share(ctx, q.ID, "user:1"); err != nil {
		t.Fatalf("share: %v", err)
	}
	if _, err := uc.BuyerApprove(ctx, q.ID, "user:2"); err != nil {
		t.Fatalf("buyer approve: %v", err)
	}

	got, err := uc.Edit(ctx, q.ID, []model.QuotationItem{{SKU: "SKU-2", Quantity: 1, UnitPrice: 750}}, "user:1")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got.State != model.QuotationStateRevised {
		t.Fatalf("expected revised, got %s", got.State)
	}
	if got.BuyerApprovedAt != nil {
		t.Fatal("edit must clear the buyer approval")
	}
	if got.GrandTotal() != 750 {
		t.Fatalf("expected new total 750, got %d", got.GrandTotal())
	}
}

func TestQuotationUseCaseEditRequiresItems(t *testing.T) {
	uc, repos, _ := newQuotationFixture()
	q := testhelpers.NewQuotation(uuid.New(), 1_000)
	repos.QuotationRows[q.ID] = q

	if _, err := uc.Edit(context.Background(), q.ID, nil, "user:1"); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestQuotationUseCaseIllegalEventLeavesNoAudit(t *testing.T) {
	uc, repos, _ := newQuotationFixture()
	q := testhelpers.NewQuotation(uuid.New(), 1_000)
	repos.QuotationRows[q.ID] = q

	if _, err := uc.BuyerApprove(context.Background(), q.ID, "user:2"); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
	if rows := repos.TransitionsFor(model.EntityQuotation, q.ID); len(rows) != 0 {
		t.Fatalf("rejected event must not be audited, got %+v", rows)
	}
	if repos.QuotationRows[q.ID].State != model.QuotationStateDraft {
		t.Fatal("rejected event mutated stored state")
	}
}

func TestQuotationUseCaseNotFound(t *testing.T) {
	uc, _, _ := newQuotationFixture()
	if _, err := uc.Get(context.Background(), uuid.New()); !errors.Is(err, domainErrors.ErrQuotationNotFound) {
		t.Fatalf("expected quotation not found, got %v", err)
	}
}

func TestQuotationUseCaseExtendValidity(t *testing.T) {
	uc, repos, _ := newQuotationFixture()
	q := testhelpers.NewQuotation(uuid.New(), 1_000)
	repos.QuotationRows[q.ID] = q
	before := q.ValidUntil

	got, err := uc.ExtendValidity(context.Background(), q.ID, 5, "user:1")
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if !got.ValidUntil.Equal(before.AddDate(0, 0, 5)) {
		t.Fatalf("unexpected deadline %s", got.ValidUntil)
	}
	if got.Version != 2 {
		t.Fatalf("expected version bump, got %d", got.Version)
	}
}

func TestQuotationUseCaseExpireStale(t *testing.T) {
	uc, repos, _ := newQuotationFixture()

	stale := testhelpers.NewQuotation(uuid.New(), 1_000)
	stale.ValidUntil = time.Now().Add(-time.Hour)
	repos.QuotationRows[stale.ID] = stale

	fresh := testhelpers.NewQuotation(uuid.New(), 1_000)
	repos.QuotationRows[fresh.ID] = fresh

	terminal := testhelpers.NewQuotation(uuid.New(), 1_000)
	terminal.ValidUntil = time.Now().Add(-time.Hour)
	terminal.State = model.QuotationStateRejected
	repos.QuotationRows[terminal.ID] = terminal

	n, err := uc.ExpireStale(context.Background(), 10, "system")
	if err != nil {
		t.Fatalf("expire stale: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one expiry, got %d", n)
	}
	if repos.QuotationRows[stale.ID].State != model.QuotationStateExpired {
		t.Fatalf("stale quotation not expired: %s", repos.QuotationRows[stale.ID].State)
	}
	if repos.QuotationRows[fresh.ID].State != model.QuotationStateDraft {
		t.Fatal("fresh quotation must be untouched")
	}
}
