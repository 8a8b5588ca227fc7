package purchasing

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

type PurchaseItemRequest struct {
	ProductID  uint    `json:"product_id"`
	BatchNo    string  `json:"batch_no"`
	ExpiryDate string  `json:"expiry_date"` // "2027-03-01"
	Qty        float64 `json:"qty"`
	QtyUnit    string  `json:"qty_unit"` // strip | piece; boşsa ürünün stok birimi
	UnitCost   float64 `json:"unit_cost"`
	UnitPrice  float64 `json:"unit_price"`
}

type CreatePurchaseRequest struct {
	SupplierID  *uint                 `json:"supplier_id"`
	InvoiceNo   string                `json:"invoice_no"`
	PurchasedAt string                `json:"purchased_at"` // opsiyonel, RFC3339
	Notes       string                `json:"notes"`
	Items       []PurchaseItemRequest `json:"items"`
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

// POST /api/purchases
func CreatePurchaseHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var purchasedAt time.Time
		if body.PurchasedAt != "" {
			t, err := time.Parse(time.RFC3339, body.PurchasedAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz alış tarihi")
			}
			purchasedAt = t
		}

		in := ledger.PurchaseInput{
			SupplierID:  body.SupplierID,
			InvoiceNo:   body.InvoiceNo,
			PurchasedAt: purchasedAt,
			Notes:       body.Notes,
			Items:       make([]ledger.PurchaseItemInput, 0, len(body.Items)),
		}
		for i, it := range body.Items {
			var expiry time.Time
			if it.ExpiryDate != "" {
				t, err := time.Parse("2006-01-02", it.ExpiryDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Satır "+strconv.Itoa(i+1)+": geçersiz son kullanma tarihi")
				}
				expiry = t
			}
			in.Items = append(in.Items, ledger.PurchaseItemInput{
				ProductID:  it.ProductID,
				BatchNo:    it.BatchNo,
				ExpiryDate: expiry,
				Qty:        it.Qty,
				QtyUnit:    it.QtyUnit,
				UnitCost:   it.UnitCost,
				UnitPrice:  it.UnitPrice,
			})
		}

		purchase, err := ledger.ApplyPurchase(db, in)
		if err != nil {
			return ledgerError(err)
		}

		if userID, userName, uerr := currentUser(db, c); uerr == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "purchase",
				EntityID:    purchase.ID,
				Action:      models.AuditActionCreate,
				Description: "Alış kaydı: " + purchase.InvoiceNo,
				After:       purchase,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":         purchase.ID,
			"total_cost": purchase.TotalCost,
		})
	}
}

// GET /api/purchases?start_date=2026-01-01&end_date=2026-01-31
func ListPurchasesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Purchase{}).Preload("Items")

		if s := c.Query("start_date"); s != "" {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz başlangıç tarihi")
			}
			dbq = dbq.Where("purchased_at >= ?", t)
		}
		if s := c.Query("end_date"); s != "" {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz bitiş tarihi")
			}
			dbq = dbq.Where("purchased_at < ?", t.AddDate(0, 0, 1))
		}
		if s := c.Query("supplier_id"); s != "" {
			dbq = dbq.Where("supplier_id = ?", s)
		}

		var purchases []models.Purchase
		if err := dbq.Order("purchased_at desc").Find(&purchases).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Alışlar listelenemedi")
		}
		return c.JSON(purchases)
	}
}

// GET /api/purchases/:id
func GetPurchaseHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var purchase models.Purchase
		if err := db.Preload("Items").First(&purchase, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Alış bulunamadı")
		}
		return c.JSON(purchase)
	}
}

// DELETE /api/purchases/:id
// Alışın stok etkisi birebir geri alınır. Araya giren satışlar partiyi
// tüketmişse 409 döner; kayıt silinmez.
func DeletePurchaseHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		purchaseID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz alış ID")
		}

		var before models.Purchase
		if err := db.Preload("Items").First(&before, "id = ?", purchaseID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Alış bulunamadı")
		}

		if err := ledger.ReversePurchase(db, uint(purchaseID)); err != nil {
			return ledgerError(err)
		}

		if userID, userName, uerr := currentUser(db, c); uerr == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "purchase",
				EntityID:    uint(purchaseID),
				Action:      models.AuditActionDelete,
				Description: "Alış geri alındı: " + before.InvoiceNo,
				Before:      before,
			})
		}

		return c.JSON(fiber.Map{"message": "Alış geri alındı, stok düşüldü"})
	}
}
