package dashboard

import (
	"time"

	"eczane-backend/internal/ledger"
	"eczane-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LowStockProduct struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	TotalQty float64 `json:"total_qty"`
	MinStock float64 `json:"min_stock"`
}

type SummaryResponse struct {
	TodayRevenue  float64 `json:"today_revenue"`
	TodayProfit   float64 `json:"today_profit"`
	TodaySales    int64   `json:"today_sales"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalProfit   float64 `json:"total_profit"`
	ProductCount  int64   `json:"product_count"`
	CustomerCount int64   `json:"customer_count"`
	SupplierCount int64   `json:"supplier_count"`

	LowStockProducts []LowStockProduct `json:"low_stock_products"`
}

// GET /api/dashboard/summary
func SummaryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		var resp SummaryResponse

		// bugünün satışları
		type sumRow struct {
			Revenue float64
			Profit  float64
			Count   int64
		}
		var today sumRow
		if err := db.Model(&models.Sale{}).
			Select("COALESCE(SUM(total_revenue),0) AS revenue, COALESCE(SUM(profit),0) AS profit, COUNT(*) AS count").
			Where("sold_at >= ?", todayStart).
			Scan(&today).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Günlük özet hesaplanamadı")
		}
		resp.TodayRevenue = today.Revenue
		resp.TodayProfit = today.Profit
		resp.TodaySales = today.Count

		// tüm zamanlar
		var allTime sumRow
		if err := db.Model(&models.Sale{}).
			Select("COALESCE(SUM(total_revenue),0) AS revenue, COALESCE(SUM(profit),0) AS profit, COUNT(*) AS count").
			Scan(&allTime).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Genel özet hesaplanamadı")
		}
		resp.TotalRevenue = allTime.Revenue
		resp.TotalProfit = allTime.Profit

		db.Model(&models.Product{}).Where("is_active = ?", true).Count(&resp.ProductCount)
		db.Model(&models.Customer{}).Count(&resp.CustomerCount)
		db.Model(&models.Supplier{}).Count(&resp.SupplierCount)

		// kritik stok: eldeki toplam < min_stock olan aktif ürünler
		var products []models.Product
		if err := db.Preload("Batches").
			Where("is_active = ? AND min_stock > 0", true).
			Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok bilgisi alınamadı")
		}

		resp.LowStockProducts = make([]LowStockProduct, 0)
		for i := range products {
			p := &products[i]
			total := ledger.TotalQuantity(p)
			if total < p.MinStock {
				resp.LowStockProducts = append(resp.LowStockProducts, LowStockProduct{
					ID:       p.ID,
					Name:     p.Name,
					TotalQty: total,
					MinStock: p.MinStock,
				})
			}
		}

		return c.JSON(resp)
	}
}
