package dashboard

import (
	"fmt"
	"time"

	"eczane-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RevenueChartPoint struct {
	Label   string  `json:"label"` // ay başlangıcı
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
}

type RevenueChartResponse struct {
	From   string              `json:"from"`
	To     string              `json:"to"`
	Points []RevenueChartPoint `json:"points"`
}

// GET /api/dashboard/revenue-chart?months=6
func RevenueChartHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		months := 6
		if s := c.Query("months"); s != "" {
			if _, err := fmt.Sscan(s, &months); err != nil || months <= 0 || months > 36 {
				return fiber.NewError(fiber.StatusBadRequest, "months geçersiz")
			}
		}

		now := time.Now()
		loc := now.Location()
		// bu ayın başı
		end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		start := end.AddDate(0, -(months - 1), 0)

		type row struct {
			Bucket  time.Time `gorm:"column:bucket"`
			Revenue float64   `gorm:"column:revenue"`
			Cost    float64   `gorm:"column:cost"`
			Profit  float64   `gorm:"column:profit"`
		}
		var rows []row

		sql := `
			SELECT date_trunc('month', sold_at)::date AS bucket,
				   SUM(total_revenue) AS revenue,
				   SUM(total_cost) AS cost,
				   SUM(profit) AS profit
			FROM sales
			WHERE sold_at >= ? AND sold_at < ?
			GROUP BY bucket
			ORDER BY bucket ASC;
		`

		chartEnd := end.AddDate(0, 1, 0)
		if err := db.Raw(sql, start, chartEnd).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}

		// boş aylar sıfırla doldurulur ki grafikte boşluk kalmasın
		byBucket := make(map[string]row)
		for _, r := range rows {
			byBucket[r.Bucket.Format("2006-01")] = r
		}

		points := make([]RevenueChartPoint, 0, months)
		for m := start; m.Before(chartEnd); m = m.AddDate(0, 1, 0) {
			label := m.Format("2006-01")
			r := byBucket[label]
			points = append(points, RevenueChartPoint{
				Label:   label,
				Revenue: r.Revenue,
				Cost:    r.Cost,
				Profit:  r.Profit,
			})
		}

		return c.JSON(RevenueChartResponse{
			From:   start.Format("2006-01-02"),
			To:     chartEnd.AddDate(0, 0, -1).Format("2006-01-02"),
			Points: points,
		})
	}
}

type PaymentPieSlice struct {
	Method  string  `json:"method"`
	Revenue float64 `json:"revenue"`
	Count   int64   `json:"count"`
}

// GET /api/dashboard/payment-pie?start_date=2026-01-01&end_date=2026-01-31
func PaymentPieHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Sale{})

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

		var slices []PaymentPieSlice
		if err := dbq.
			Select("payment_method AS method, COALESCE(SUM(total_revenue),0) AS revenue, COUNT(*) AS count").
			Group("payment_method").
			Order("revenue DESC").
			Scan(&slices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}

		return c.JSON(slices)
	}
}
