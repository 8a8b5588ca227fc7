package database

import (
	"fmt"

	"eczane-backend/internal/config"
	"eczane-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open: veritabanı bağlantısını açar ve migration'ları çalıştırır.
// Global handle yok; dönen *gorm.DB, handler'lara açıkça enjekte edilir.
// Process başında açılır, kapanışta Close ile bırakılır.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate: şemayı oluşturur/günceller. Testlerde sqlite üzerinde de çağrılır.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Supplier{},
		&models.Customer{},
		&models.Product{},
		&models.ProductBatch{},
		&models.Purchase{},
		&models.PurchaseItem{},
		&models.Sale{},
		&models.SaleItem{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}
	return nil
}

// Close: altta yatan sql.DB bağlantısını kapatır.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
