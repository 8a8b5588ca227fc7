package inventory

import (
	"log"
	"strconv"
	"strings"

	"eczane-backend/internal/audit"
	"eczane-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type BulkImportResult struct {
	CreatedCount int      `json:"created_count"`
	SkippedCount int      `json:"skipped_count"`
	Errors       []string `json:"errors"`
}

// POST /api/products/bulk-import
// XLSX dosyasından toplu ürün kaydı. Beklenen kolonlar:
// Ürün Adı | Etken Madde | Marka | Birim | Kutu İçi Adet | Alış Fiyatı | Satış Fiyatı | Min Stok
func BulkImportProductsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		// İlk satır başlık satırı mı?
		startIndex := 0
		if len(rows[0]) > 0 {
			firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
			if strings.Contains(firstCell, "ÜRÜN") || strings.Contains(firstCell, "PRODUCT") || strings.Contains(firstCell, "AD") {
				startIndex = 1
				log.Printf("İlk satır başlık satırı olarak algılandı, atlanıyor")
			}
		}

		result := BulkImportResult{Errors: make([]string, 0)}

		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) == 0 {
				continue
			}

			name := strings.TrimSpace(row[0])
			if name == "" {
				continue
			}

			var existing models.Product
			if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
				result.SkippedCount++
				result.Errors = append(result.Errors, "Satır "+strconv.Itoa(i+1)+": '"+name+"' zaten kayıtlı, atlandı")
				continue
			}

			cell := func(idx int) string {
				if idx < len(row) {
					return strings.TrimSpace(row[idx])
				}
				return ""
			}
			num := func(idx int) float64 {
				v, err := strconv.ParseFloat(strings.ReplaceAll(cell(idx), ",", "."), 64)
				if err != nil {
					return 0
				}
				return v
			}

			unit := cell(3)
			if unit == "" {
				unit = models.UnitStrip
			}
			pps := num(4)
			if pps < 1 {
				pps = 1
			}

			p := models.Product{
				Name:                 name,
				GenericName:          cell(1),
				Brand:                cell(2),
				Unit:                 unit,
				PiecesPerStrip:       pps,
				PurchasePriceDefault: num(5),
				SalePriceDefault:     num(6),
				MinStock:             num(7),
				SalePolicy:           models.SalePolicyFEFO,
				IsActive:             true,
			}

			if err := db.Create(&p).Error; err != nil {
				result.SkippedCount++
				result.Errors = append(result.Errors, "Satır "+strconv.Itoa(i+1)+": '"+name+"' kaydedilemedi")
				continue
			}
			result.CreatedCount++
		}

		userID, userName, uerr := currentUser(db, c)
		if uerr == nil {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				Action:      models.AuditActionCreate,
				Description: "Toplu ürün içe aktarımı: " + strconv.Itoa(result.CreatedCount) + " kayıt",
				After:       result,
			})
		}

		return c.JSON(result)
	}
}
