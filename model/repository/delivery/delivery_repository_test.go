package delivery

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	entity "garment.GO/model/entity"
)

func testRepo(t *testing.T) (*DeliveryRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.Store{}, &entity.Supplier{}, &entity.GarmentType{},
		&entity.Order{}, &entity.OrderLine{}, &entity.Delivery{},
		&entity.LedgerAudit{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewDeliveryRepository(db), db
}

func seedLine(t *testing.T, db *gorm.DB, initial, remaining int) *entity.OrderLine {
	t.Helper()
	store := entity.Store{Name: "Downtown"}
	supplier := entity.Supplier{Name: "Textil Norte"}
	gtype := entity.GarmentType{Name: "T-Shirt"}
	for _, m := range []interface{}{&store, &supplier, &gtype} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed ref: %v", err)
		}
	}
	order := entity.Order{StoreID: store.ID, SupplierID: supplier.ID}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	line := entity.OrderLine{
		OrderID:       order.ID,
		GarmentTypeID: gtype.ID,
		InitialQty:    initial,
		RemainingQty:  remaining,
		UnitPrice:     decimal.NewFromFloat(19.90),
		Color:         "navy",
	}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("seed line: %v", err)
	}
	return &line
}

func remaining(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var l entity.OrderLine
	if err := db.First(&l, id).Error; err != nil {
		t.Fatalf("reload line: %v", err)
	}
	return l.RemainingQty
}

func TestDecrementRemaining_Guard(t *testing.T) {
	repo, db := testRepo(t)
	line := seedLine(t, db, 10, 3)
	ctx := context.Background()

	ok, err := repo.DecrementRemaining(ctx, line.ID, 3)
	if err != nil || !ok {
		t.Fatalf("exact decrement: ok=%v err=%v", ok, err)
	}
	if got := remaining(t, db, line.ID); got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}

	// Nothing left: the guard must reject without touching the row.
	ok, err = repo.DecrementRemaining(ctx, line.ID, 1)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if ok {
		t.Error("decrement past zero accepted")
	}
	if got := remaining(t, db, line.ID); got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}
}

func TestDecrementRemaining_ConcurrentNeverNegative(t *testing.T) {
	repo, db := testRepo(t)
	line := seedLine(t, db, 10, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	accepted := make(chan int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := repo.DecrementRemaining(ctx, line.ID, 3); err == nil && ok {
				accepted <- 3
			}
		}()
	}
	wg.Wait()
	close(accepted)

	taken := 0
	for q := range accepted {
		taken += q
	}
	got := remaining(t, db, line.ID)
	if got < 0 {
		t.Fatalf("remaining went negative: %d", got)
	}
	if got != 10-taken {
		t.Errorf("remaining = %d, want %d (%d taken)", got, 10-taken, taken)
	}
}

func TestRestoreRemaining_Guard(t *testing.T) {
	repo, db := testRepo(t)
	line := seedLine(t, db, 10, 4)
	ctx := context.Background()

	ok, err := repo.RestoreRemaining(ctx, line.ID, 6)
	if err != nil || !ok {
		t.Fatalf("restore to full: ok=%v err=%v", ok, err)
	}
	if got := remaining(t, db, line.ID); got != 10 {
		t.Errorf("remaining = %d, want 10", got)
	}

	// Restoring past initial must be rejected.
	ok, err = repo.RestoreRemaining(ctx, line.ID, 1)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if ok {
		t.Error("restore past initial accepted")
	}
	if got := remaining(t, db, line.ID); got != 10 {
		t.Errorf("remaining = %d, want 10", got)
	}
}

func TestDelete_ReportsRowsAffected(t *testing.T) {
	repo, db := testRepo(t)
	line := seedLine(t, db, 10, 10)
	ctx := context.Background()

	d := &entity.Delivery{Quantity: 2, OrderLineID: line.ID, UserID: "ana"}
	if err := repo.Insert(ctx, d); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rows, err := repo.Delete(ctx, d.ID)
	if err != nil || rows != 1 {
		t.Fatalf("first delete: rows=%d err=%v", rows, err)
	}
	rows, err = repo.Delete(ctx, d.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if rows != 0 {
		t.Errorf("second delete rows = %d, want 0", rows)
	}
}

func TestSumForLine(t *testing.T) {
	repo, db := testRepo(t)
	line := seedLine(t, db, 10, 10)
	ctx := context.Background()

	if got, err := repo.SumForLine(ctx, line.ID); err != nil || got != 0 {
		t.Fatalf("empty ledger sum = %d err=%v, want 0", got, err)
	}
	for _, q := range []int{2, 3} {
		if err := repo.Insert(ctx, &entity.Delivery{Quantity: q, OrderLineID: line.ID, UserID: "ana"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if got, err := repo.SumForLine(ctx, line.ID); err != nil || got != 5 {
		t.Errorf("ledger sum = %d err=%v, want 5", got, err)
	}
}
