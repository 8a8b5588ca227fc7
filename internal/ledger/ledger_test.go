package ledger

import (
	"math"
	"testing"
	"time"

	"eczane-backend/internal/database"
	"eczane-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Testler bellek içi sqlite üzerinde koşar. Tek bağlantı zorunlu; aksi halde
// havuzdaki her bağlantı ayrı bir boş veritabanı görür.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB alınamadı: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migration başarısız: %v", err)
	}
	return db
}

func createProduct(t *testing.T, db *gorm.DB, p *models.Product) *models.Product {
	t.Helper()
	if p.Unit == "" {
		p.Unit = models.UnitStrip
	}
	if p.PiecesPerStrip == 0 {
		p.PiecesPerStrip = 1
	}
	if p.SalePolicy == "" {
		p.SalePolicy = models.SalePolicyFEFO
	}
	p.IsActive = true
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("ürün oluşturulamadı: %v", err)
	}
	return p
}

func loadProduct(t *testing.T, db *gorm.DB, id uint) *models.Product {
	t.Helper()
	var p models.Product
	if err := db.Preload("Batches").First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("ürün okunamadı: %v", err)
	}
	return &p
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func batchQty(t *testing.T, db *gorm.DB, productID uint, batchNo string, expiry time.Time) float64 {
	t.Helper()
	p := loadProduct(t, db, productID)
	b := FindBatch(p, NewBatchKey(batchNo, expiry))
	if b == nil {
		t.Fatalf("parti bulunamadı: %s", batchNo)
	}
	return b.Qty
}
