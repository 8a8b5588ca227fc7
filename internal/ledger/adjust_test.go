package ledger

import (
	"testing"

	"eczane-backend/internal/models"
)

func TestAdjustBatchIncrease(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Parol"})

	// parti yokken pozitif düzeltme yeni parti açar
	err := AdjustBatch(db, AdjustInput{
		ProductID:  p.ID,
		BatchNo:    "SAYIM-1",
		ExpiryDate: date(2027, 1, 1),
		QtyChange:  4,
	})
	if err != nil {
		t.Fatalf("düzeltme başarısız: %v", err)
	}
	if got := batchQty(t, db, p.ID, "SAYIM-1", date(2027, 1, 1)); !almostEqual(got, 4) {
		t.Errorf("miktar %v, 4 bekleniyordu", got)
	}
}

func TestAdjustBatchPreservesCostWhenUnspecified(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Parol"})

	seedBatches(t, db, p, []PurchaseItemInput{
		{ProductID: p.ID, BatchNo: "B1", ExpiryDate: date(2027, 1, 1), Qty: 5, UnitCost: 3, UnitPrice: 6},
	})

	// maliyet/fiyat verilmeden artış: eldeki değerler korunur
	if err := AdjustBatch(db, AdjustInput{
		ProductID:  p.ID,
		BatchNo:    "B1",
		ExpiryDate: date(2027, 1, 1),
		QtyChange:  2,
	}); err != nil {
		t.Fatal(err)
	}

	fresh := loadProduct(t, db, p.ID)
	b := FindBatch(fresh, NewBatchKey("B1", date(2027, 1, 1)))
	if b.UnitCost != 3 || b.UnitPrice != 6 {
		t.Errorf("maliyet/fiyat korunmadı: %v / %v", b.UnitCost, b.UnitPrice)
	}
	if !almostEqual(b.Qty, 7) {
		t.Errorf("miktar %v, 7 bekleniyordu", b.Qty)
	}

	// maliyet verilirse tazelenir
	cost := 3.5
	if err := AdjustBatch(db, AdjustInput{
		ProductID:  p.ID,
		BatchNo:    "B1",
		ExpiryDate: date(2027, 1, 1),
		QtyChange:  1,
		UnitCost:   &cost,
	}); err != nil {
		t.Fatal(err)
	}
	fresh = loadProduct(t, db, p.ID)
	b = FindBatch(fresh, NewBatchKey("B1", date(2027, 1, 1)))
	if b.UnitCost != 3.5 {
		t.Errorf("maliyet tazelenmedi: %v", b.UnitCost)
	}
}

func TestAdjustBatchDecreaseGuards(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Parol"})

	seedBatches(t, db, p, []PurchaseItemInput{
		{ProductID: p.ID, BatchNo: "B1", ExpiryDate: date(2027, 1, 1), Qty: 5, UnitCost: 3, UnitPrice: 6},
	})

	// stoktan fazla düşüş reddedilir
	err := AdjustBatch(db, AdjustInput{
		ProductID:  p.ID,
		BatchNo:    "B1",
		ExpiryDate: date(2027, 1, 1),
		QtyChange:  -6,
	})
	if !IsKind(err, KindInsufficientStock) {
		t.Errorf("InsufficientStock bekleniyordu, %v geldi", err)
	}
	if got := batchQty(t, db, p.ID, "B1", date(2027, 1, 1)); !almostEqual(got, 5) {
		t.Errorf("başarısız düzeltme miktarı değiştirdi: %v", got)
	}

	// olmayan partiden düşüş reddedilir
	err = AdjustBatch(db, AdjustInput{
		ProductID:  p.ID,
		BatchNo:    "YOK",
		ExpiryDate: date(2027, 1, 1),
		QtyChange:  -1,
	})
	if !IsKind(err, KindBatchNotFound) {
		t.Errorf("BatchNotFound bekleniyordu, %v geldi", err)
	}

	// geçerli düşüş
	if err := AdjustBatch(db, AdjustInput{
		ProductID:  p.ID,
		BatchNo:    "B1",
		ExpiryDate: date(2027, 1, 1),
		QtyChange:  -2,
	}); err != nil {
		t.Fatal(err)
	}
	if got := batchQty(t, db, p.ID, "B1", date(2027, 1, 1)); !almostEqual(got, 3) {
		t.Errorf("miktar %v, 3 bekleniyordu", got)
	}
}

func TestAdjustBatchRejectsZeroChange(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, &models.Product{Name: "Parol"})

	err := AdjustBatch(db, AdjustInput{ProductID: p.ID, BatchNo: "B1", QtyChange: 0})
	if !IsKind(err, KindInvalidQuantity) {
		t.Errorf("InvalidQuantity bekleniyordu, %v geldi", err)
	}
}
