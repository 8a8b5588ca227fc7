package sales

import (
	"errors"
	"strconv"
	"time"

	"eczane-backend/internal/audit"
	"eczane-backend/internal/auth"
	"eczane-backend/internal/ledger"
	"eczane-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SaleItemRequest struct {
	ProductID uint    `json:"product_id"`
	Qty       float64 `json:"qty"`
	QtyUnit   string  `json:"qty_unit"` // strip | piece; boşsa şerit ürünlerde piece
	UnitPrice float64 `json:"unit_price"`
}

type CreateSaleRequest struct {
	CustomerID    *uint             `json:"customer_id"`
	CustomerName  string            `json:"customer_name"`
	PaymentMethod string            `json:"payment_method"` // cash | card
	SoldAt        string            `json:"sold_at"`        // opsiyonel, RFC3339
	Notes         string            `json:"notes"`
	Items         []SaleItemRequest `json:"items"`
}

func ledgerError(err error) error {
	var le *ledger.Error
	if !errors.As(err, &le) {
		return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
	}
	switch le.Kind {
	case ledger.KindProductNotFound, ledger.KindBatchNotFound, ledger.KindNotFound:
		return fiber.NewError(fiber.StatusNotFound, le.Message)
	case ledger.KindInvalidQuantity:
		return fiber.NewError(fiber.StatusBadRequest, le.Message)
	case ledger.KindInsufficientStock, ledger.KindWouldGoNegative:
		return fiber.NewError(fiber.StatusConflict, le.Message)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, le.Message)
	}
}

func currentUser(db *gorm.DB, c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	return userID, user.Name, nil
}

// POST /api/sales
func CreateSaleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.PaymentMethod != "" &&
			body.PaymentMethod != models.PaymentMethodCash &&
			body.PaymentMethod != models.PaymentMethodCard {
			return fiber.NewError(fiber.StatusBadRequest, "Ödeme yöntemi 'cash' veya 'card' olmalı")
		}

		var soldAt time.Time
		if body.SoldAt != "" {
			t, err := time.Parse(time.RFC3339, body.SoldAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satış tarihi")
			}
			soldAt = t
		}

		in := ledger.SaleInput{
			CustomerID:    body.CustomerID,
			CustomerName:  body.CustomerName,
			PaymentMethod: body.PaymentMethod,
			SoldAt:        soldAt,
			Notes:         body.Notes,
			Items:         make([]ledger.SaleItemInput, 0, len(body.Items)),
		}
		for _, it := range body.Items {
			in.Items = append(in.Items, ledger.SaleItemInput{
				ProductID: it.ProductID,
				Qty:       it.Qty,
				QtyUnit:   it.QtyUnit,
				UnitPrice: it.UnitPrice,
			})
		}

		sale, err := ledger.ApplySale(db, in)
		if err != nil {
			return ledgerError(err)
		}

		if userID, userName, uerr := currentUser(db, c); uerr == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "sale",
				EntityID:    sale.ID,
				Action:      models.AuditActionCreate,
				Description: "Satış kaydı",
				After:       sale,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":            sale.ID,
			"total_revenue": sale.TotalRevenue,
			"total_cost":    sale.TotalCost,
			"profit":        sale.Profit,
		})
	}
}

// GET /api/sales?start_date=2026-01-01&end_date=2026-01-31
func ListSalesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Sale{}).Preload("Items")

		if s := c.Query("start_date"); s != "" {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz başlangıç tarihi")
			}
			dbq = dbq.Where("sold_at >= ?", t)
		}
		if s := c.Query("end_date"); s != "" {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz bitiş tarihi")
			}
			dbq = dbq.Where("sold_at < ?", t.AddDate(0, 0, 1))
		}
		if s := c.Query("customer_id"); s != "" {
			dbq = dbq.Where("customer_id = ?", s)
		}
		if s := c.Query("payment_method"); s != "" {
			dbq = dbq.Where("payment_method = ?", s)
		}

		var sales []models.Sale
		if err := dbq.Order("sold_at desc").Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}
		return c.JSON(sales)
	}
}

// GET /api/sales/:id
func GetSaleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sale models.Sale
		if err := db.Preload("Items").First(&sale, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}
		return c.JSON(sale)
	}
}

// DELETE /api/sales/:id
// Düşülen miktarlar partilere geri eklenir; parti bu arada silinmişse
// satırdaki anlık görüntüden yeniden oluşturulur.
func DeleteSaleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		saleID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satış ID")
		}

		var before models.Sale
		if err := db.Preload("Items").First(&before, "id = ?", saleID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		if err := ledger.ReverseSale(db, uint(saleID)); err != nil {
			return ledgerError(err)
		}

		if userID, userName, uerr := currentUser(db, c); uerr == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "sale",
				EntityID:    uint(saleID),
				Action:      models.AuditActionDelete,
				Description: "Satış geri alındı",
				Before:      before,
			})
		}

		return c.JSON(fiber.Map{"message": "Satış geri alındı, stok iade edildi"})
	}
}
