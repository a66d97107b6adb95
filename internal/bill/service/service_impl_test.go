package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	billdomain "github.com/techverse/billdesk/internal/bill/domain"
	"github.com/techverse/billdesk/internal/clock"
	"github.com/techverse/billdesk/internal/events"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&billdomain.Bill{}, &events.BillEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestStore(t *testing.T, db *gorm.DB) *Store {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewStore(ServiceParam{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.SystemClock{},
		Outbox: events.NewOutbox(db, node),
	})
}

func loadedStore(t *testing.T) *Store {
	t.Helper()
	store := newTestStore(t, setupStoreTestDB(t))
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return store
}

func draft(invoiceNumber int64, items ...billdomain.LineItem) billdomain.CreateBillRequest {
	return billdomain.CreateBillRequest{
		InvoiceNumber: invoiceNumber,
		Date:          "2026-02-01",
		CustomerName:  "Acme",
		Items:         items,
		Total:         billdomain.ComputeTotal(items),
	}
}

func TestNextInvoiceNumber(t *testing.T) {
	store := loadedStore(t)
	ctx := context.Background()

	if got := store.NextInvoiceNumber(ctx); got != 1 {
		t.Fatalf("expected 1 for empty ledger, got %d", got)
	}

	for _, number := range []int64{3, 7, 5} {
		if _, err := store.Add(ctx, draft(number, billdomain.LineItem{Description: "Widget", Price: 10})); err != nil {
			t.Fatalf("add %d: %v", number, err)
		}
	}
	if got := store.NextInvoiceNumber(ctx); got != 8 {
		t.Fatalf("expected max+1 = 8, got %d", got)
	}

	// Advisory only: calling twice without a save yields the same value.
	if got := store.NextInvoiceNumber(ctx); got != 8 {
		t.Fatalf("expected repeated call to stay at 8, got %d", got)
	}
}

func TestAddRejectsInvalidDrafts(t *testing.T) {
	store := loadedStore(t)
	ctx := context.Background()

	noName := draft(1, billdomain.LineItem{Description: "Widget", Price: 10})
	noName.CustomerName = "  "
	if _, err := store.Add(ctx, noName); !errors.Is(err, billdomain.ErrInvalidCustomerName) {
		t.Fatalf("expected invalid customer name, got %v", err)
	}

	blankItem := draft(1,
		billdomain.LineItem{Description: "Widget", Price: 10},
		billdomain.LineItem{Description: "", Price: 5},
	)
	if _, err := store.Add(ctx, blankItem); !errors.Is(err, billdomain.ErrInvalidItemDescription) {
		t.Fatalf("expected invalid item description, got %v", err)
	}

	badTotal := draft(1, billdomain.LineItem{Description: "Widget", Price: 10})
	badTotal.Total = 11
	if _, err := store.Add(ctx, badTotal); !errors.Is(err, billdomain.ErrTotalMismatch) {
		t.Fatalf("expected total mismatch, got %v", err)
	}

	if list := store.List(ctx); len(list.Bills) != 0 {
		t.Fatalf("collection must stay unchanged after rejected adds, got %d bills", len(list.Bills))
	}
}

func TestAddPrependsAndComputesTotal(t *testing.T) {
	store := loadedStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, draft(1, billdomain.LineItem{Description: "Widget", Price: 500}))
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	second, err := store.Add(ctx, draft(2,
		billdomain.LineItem{Description: "Design", Price: 100},
		billdomain.LineItem{Description: "Build", Price: 250},
		billdomain.LineItem{Description: "Ship", Price: 50},
	))
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if second.Total != 400 {
		t.Fatalf("expected total 400, got %v", second.Total)
	}
	for _, item := range second.Items {
		if item.ID == "" {
			t.Fatalf("expected generated line item ids")
		}
	}

	list := store.List(ctx)
	if len(list.Bills) != 2 {
		t.Fatalf("expected 2 bills, got %d", len(list.Bills))
	}
	if list.Bills[0].ID != second.ID {
		t.Fatalf("expected newest bill at index 0, got %s", list.Bills[0].ID)
	}
	if list.Bills[1].ID != first.ID {
		t.Fatalf("expected older bill at index 1, got %s", list.Bills[1].ID)
	}
}

func TestDeleteRemovesAndIgnoresUnknown(t *testing.T) {
	store := loadedStore(t)
	ctx := context.Background()

	saved, err := store.Add(ctx, draft(1,
		billdomain.LineItem{Description: "Design", Price: 100},
		billdomain.LineItem{Description: "Build", Price: 250},
		billdomain.LineItem{Description: "Ship", Price: 50},
	))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := store.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting the same id again is a no-op, not a failure.
	if err := store.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}

	if list := store.List(ctx); len(list.Bills) != 0 {
		t.Fatalf("expected empty ledger after delete, got %d", len(list.Bills))
	}

	// Gone from the durable store too: a fresh load stays empty.
	fresh := newTestStore(t, store.db)
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if list := fresh.List(ctx); len(list.Bills) != 0 {
		t.Fatalf("expected deleted bill to be gone after refetch, got %d", len(list.Bills))
	}
}

func TestDeleteAcceptsNonCanonicalID(t *testing.T) {
	store := loadedStore(t)
	ctx := context.Background()

	saved, err := store.Add(ctx, draft(1, billdomain.LineItem{Description: "Widget", Price: 10}))
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// Same numeric id, different spelling. Memory and the durable
	// store must agree afterwards.
	if err := store.Delete(ctx, " 0"+saved.ID+" "); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if list := store.List(ctx); len(list.Bills) != 0 {
		t.Fatalf("expected empty in-memory ledger, got %d bills", len(list.Bills))
	}

	fresh := newTestStore(t, store.db)
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if list := fresh.List(ctx); len(list.Bills) != 0 {
		t.Fatalf("expected empty durable store, got %d bills", len(list.Bills))
	}
}

func TestDeleteRejectsMalformedID(t *testing.T) {
	store := loadedStore(t)
	if err := store.Delete(context.Background(), "not-a-snowflake"); !errors.Is(err, billdomain.ErrInvalidBillID) {
		t.Fatalf("expected invalid bill id, got %v", err)
	}
}

func TestEmptyStoreScenario(t *testing.T) {
	store := loadedStore(t)
	ctx := context.Background()

	if got := store.NextInvoiceNumber(ctx); got != 1 {
		t.Fatalf("expected next number 1, got %d", got)
	}

	saved, err := store.Add(ctx, draft(1, billdomain.LineItem{Description: "Widget", Price: 500}))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if saved.Total != 500 {
		t.Fatalf("expected total 500, got %v", saved.Total)
	}

	list := store.List(ctx)
	if len(list.Bills) != 1 || list.Bills[0].Total != 500 {
		t.Fatalf("expected exactly one bill with total 500, got %+v", list.Bills)
	}
	if got := store.NextInvoiceNumber(ctx); got != 2 {
		t.Fatalf("expected next number 2, got %d", got)
	}
}

func TestLoadFailureDegradesToEmptyLedger(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	store := newTestStore(t, db)
	ctx := context.Background()

	// No bills table yet: the initial fetch fails.
	if err := store.Load(ctx); !errors.Is(err, billdomain.ErrLoadFailed) {
		t.Fatalf("expected load failure, got %v", err)
	}
	if !errors.Is(store.LoadErr(), billdomain.ErrLoadFailed) {
		t.Fatalf("expected recorded load error, got %v", store.LoadErr())
	}

	list := store.List(ctx)
	if list.Loading {
		t.Fatalf("store must reach ready state after a failed load")
	}
	if len(list.Bills) != 0 {
		t.Fatalf("expected empty collection, got %d bills", len(list.Bills))
	}

	// Once the durable store is back, mutations work normally.
	if err := db.AutoMigrate(&billdomain.Bill{}, &events.BillEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := store.Add(ctx, draft(1, billdomain.LineItem{Description: "Widget", Price: 500})); err != nil {
		t.Fatalf("add after failed load: %v", err)
	}
	if list := store.List(ctx); len(list.Bills) != 1 {
		t.Fatalf("expected one bill, got %d", len(list.Bills))
	}
}

func TestLoadingFlagBeforeInitialFetch(t *testing.T) {
	store := newTestStore(t, setupStoreTestDB(t))
	if list := store.List(context.Background()); !list.Loading {
		t.Fatalf("expected loading=true before the initial fetch")
	}
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if list := store.List(context.Background()); list.Loading {
		t.Fatalf("expected loading=false after the initial fetch")
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	store := loadedStore(t)
	ctx := context.Background()

	req := draft(9, billdomain.LineItem{Description: "Consulting", Price: 150})
	req.Total = 0 // preview recomputes, callers need not supply it
	req.Kind = billdomain.DocumentKindQuotation

	preview, err := store.Preview(ctx, req)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.ID != billdomain.DraftBillID {
		t.Fatalf("expected draft sentinel id, got %q", preview.ID)
	}
	if preview.Total != 150 {
		t.Fatalf("expected recomputed total 150, got %v", preview.Total)
	}
	if list := store.List(ctx); len(list.Bills) != 0 {
		t.Fatalf("preview must not persist, got %d bills", len(list.Bills))
	}
}

func TestAddWritesOutboxEvent(t *testing.T) {
	store := loadedStore(t)
	ctx := context.Background()

	saved, err := store.Add(ctx, draft(1, billdomain.LineItem{Description: "Widget", Price: 500}))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var types []string
	if err := store.db.Model(&events.BillEvent{}).Order("created_at asc").Pluck("event_type", &types).Error; err != nil {
		t.Fatalf("read outbox: %v", err)
	}
	if len(types) != 2 || types[0] != events.EventBillCreated || types[1] != events.EventBillDeleted {
		t.Fatalf("expected created+deleted events, got %v", types)
	}
}

func TestAddRollsBackWhenOutboxWriteFails(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Bills table only: the outbox insert inside the transaction fails.
	if err := db.AutoMigrate(&billdomain.Bill{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := newTestStore(t, db)
	ctx := context.Background()
	if err := store.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := store.Add(ctx, draft(1, billdomain.LineItem{Description: "Widget", Price: 10})); !errors.Is(err, billdomain.ErrPersistenceFailed) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	if list := store.List(ctx); len(list.Bills) != 0 {
		t.Fatalf("failed add must leave memory untouched, got %d bills", len(list.Bills))
	}

	var count int64
	if err := db.Model(&billdomain.Bill{}).Count(&count).Error; err != nil {
		t.Fatalf("count bills: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rolled-back insert, found %d durable rows", count)
	}
}

func TestVersionBumpsOnMutation(t *testing.T) {
	store := loadedStore(t)
	ctx := context.Background()

	before := store.List(ctx).Version
	saved, err := store.Add(ctx, draft(1, billdomain.LineItem{Description: "Widget", Price: 10}))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	afterAdd := store.List(ctx).Version
	if afterAdd <= before {
		t.Fatalf("expected version bump on add: %d -> %d", before, afterAdd)
	}
	if err := store.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if v := store.List(ctx).Version; v <= afterAdd {
		t.Fatalf("expected version bump on delete: %d -> %d", afterAdd, v)
	}
}

func TestLoadOrdersNewestFirst(t *testing.T) {
	db := setupStoreTestDB(t)
	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		record := billdomain.Bill{
			ID:            node.Generate(),
			InvoiceNumber: int64(i + 1),
			CustomerName:  "Acme",
			Date:          "2026-03-01",
			Items:         []byte(`[{"id":"x","description":"Widget","price":10}]`),
			Total:         10,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&record).Error; err != nil {
			t.Fatalf("seed bill: %v", err)
		}
	}

	store := newTestStore(t, db)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	list := store.List(context.Background())
	if len(list.Bills) != 3 {
		t.Fatalf("expected 3 bills, got %d", len(list.Bills))
	}
	if list.Bills[0].InvoiceNumber != 3 || list.Bills[2].InvoiceNumber != 1 {
		t.Fatalf("expected newest-first ordering, got %+v", list.Bills)
	}
}
