package inventory

import (
	"errors"
	"strconv"
	"time"

	"eczane-backend/internal/audit"
	"eczane-backend/internal/ledger"
	"eczane-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdjustBatchRequest struct {
	BatchNo    string   `json:"batch_no"`
	ExpiryDate string   `json:"expiry_date"` // "2026-05-01"
	QtyChange  float64  `json:"qty_change"`  // stok birimi cinsinden
	UnitCost   *float64 `json:"unit_cost"`
	UnitPrice  *float64 `json:"unit_price"`
	Reason     string   `json:"reason"`
}

// ledgerError: ledger hatalarını HTTP durum kodlarına çevirir.
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

// POST /api/products/:id/batches/adjust
// Sayım farkı, fire, kırık kutu gibi manuel düzeltmeler için.
func AdjustBatchHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün ID")
		}

		var body AdjustBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var expiry time.Time
		if body.ExpiryDate != "" {
			expiry, err = time.Parse("2006-01-02", body.ExpiryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz son kullanma tarihi (YYYY-AA-GG bekleniyor)")
			}
		}

		in := ledger.AdjustInput{
			ProductID:  uint(productID),
			BatchNo:    body.BatchNo,
			ExpiryDate: expiry,
			QtyChange:  body.QtyChange,
			UnitCost:   body.UnitCost,
			UnitPrice:  body.UnitPrice,
		}

		if err := ledger.AdjustBatch(db, in); err != nil {
			return ledgerError(err)
		}

		userID, userName, uerr := currentUser(db, c)
		if uerr == nil {
			desc := "Stok düzeltmesi"
			if body.Reason != "" {
				desc = "Stok düzeltmesi: " + body.Reason
			}
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "batch_adjustment",
				EntityID:    uint(productID),
				Action:      models.AuditActionUpdate,
				Description: desc,
				After:       body,
			})
		}

		return c.JSON(fiber.Map{"message": "Stok düzeltmesi uygulandı"})
	}
}
