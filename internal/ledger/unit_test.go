package ledger

import (
	"testing"

	"eczane-backend/internal/models"
)

func stripProduct(pps float64) *models.Product {
	return &models.Product{Unit: models.UnitStrip, PiecesPerStrip: pps}
}

func TestToStockUnits(t *testing.T) {
	p := stripProduct(10)

	// 5 adet = 0.5 şerit
	if got := ToStockUnits(p, 5, models.UnitPiece); !almostEqual(got, 0.5) {
		t.Errorf("5 adet -> %v şerit, 0.5 bekleniyordu", got)
	}
	// şerit girilirse değişmez
	if got := ToStockUnits(p, 3, models.UnitStrip); got != 3 {
		t.Errorf("3 şerit -> %v, 3 bekleniyordu", got)
	}
	// katsayı 1 olan üründe adet=şerit
	flat := stripProduct(1)
	if got := ToStockUnits(flat, 7, models.UnitPiece); got != 7 {
		t.Errorf("katsayısız üründe 7 -> %v, 7 bekleniyordu", got)
	}
}

func TestUnitConversionRoundTrip(t *testing.T) {
	// Dönüşüm cebirsel olarak tersinir olmalı; 3'lü katsayı gibi tam
	// bölünmeyen değerlerde de tolerans içinde geri dönmeli.
	for _, pps := range []float64{1, 2, 3, 7, 10, 12} {
		p := stripProduct(pps)
		for _, qty := range []float64{1, 2, 5, 0.5, 17} {
			stock := ToStockUnits(p, qty, models.UnitPiece)
			back := ToEnteredUnit(p, stock, models.UnitPiece)
			if !almostEqual(back, qty) {
				t.Errorf("pps=%v qty=%v: gidiş-dönüş %v verdi", pps, qty, back)
			}
		}
	}
}

func TestPerPieceAndPerStockUnit(t *testing.T) {
	p := stripProduct(10)

	// şerit fiyatı 50 -> adet fiyatı 5
	if got := PerPiece(p, 50, models.UnitStrip); !almostEqual(got, 5) {
		t.Errorf("PerPiece(50, strip) = %v, 5 bekleniyordu", got)
	}
	// adet fiyatı zaten adet bazında
	if got := PerPiece(p, 5, models.UnitPiece); !almostEqual(got, 5) {
		t.Errorf("PerPiece(5, piece) = %v, 5 bekleniyordu", got)
	}
	// adet fiyatı 5 -> şerit başına 50
	if got := PerStockUnit(p, 5, models.UnitPiece); !almostEqual(got, 50) {
		t.Errorf("PerStockUnit(5, piece) = %v, 50 bekleniyordu", got)
	}
}

func TestToPieces(t *testing.T) {
	p := stripProduct(10)
	if got := ToPieces(p, 2.5); !almostEqual(got, 25) {
		t.Errorf("2.5 şerit = %v adet, 25 bekleniyordu", got)
	}
	flat := stripProduct(1)
	if got := ToPieces(flat, 4); got != 4 {
		t.Errorf("katsayısız üründe 4 -> %v, 4 bekleniyordu", got)
	}
}

func TestPiecesPerStripClampsToOne(t *testing.T) {
	// Eski kayıtlarda 0 kalmış katsayı bölme hatasına yol açmamalı
	p := &models.Product{Unit: models.UnitStrip, PiecesPerStrip: 0}
	if got := ToStockUnits(p, 5, models.UnitPiece); got != 5 {
		t.Errorf("katsayı 0 iken 5 -> %v, 5 bekleniyordu", got)
	}
}
