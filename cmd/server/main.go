package main

import (
	"log"
	"strings"

	"eczane-backend/internal/audit"
	"eczane-backend/internal/auth"
	"eczane-backend/internal/catalog"
	"eczane-backend/internal/config"
	"eczane-backend/internal/dashboard"
	"eczane-backend/internal/database"
	"eczane-backend/internal/inventory"
	"eczane-backend/internal/purchasing"
	"eczane-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("Veritabanına bağlanılamadı:", err)
	}
	defer database.Close(db)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den temizle
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/setup", auth.SetupHandler(db))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))
	api.Post("/auth/logout", auth.LogoutHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Kategoriler
	protected.Post("/categories", catalog.CreateCategoryHandler(db))
	protected.Get("/categories", catalog.ListCategoriesHandler(db))
	protected.Get("/categories/:id", catalog.GetCategoryHandler(db))
	protected.Put("/categories/:id", catalog.UpdateCategoryHandler(db))
	protected.Delete("/categories/:id", catalog.DeleteCategoryHandler(db))

	// Tedarikçiler
	protected.Post("/suppliers", catalog.CreateSupplierHandler(db))
	protected.Get("/suppliers", catalog.ListSuppliersHandler(db))
	protected.Get("/suppliers/:id", catalog.GetSupplierHandler(db))
	protected.Put("/suppliers/:id", catalog.UpdateSupplierHandler(db))
	protected.Delete("/suppliers/:id", catalog.DeleteSupplierHandler(db))

	// Müşteriler
	protected.Post("/customers", catalog.CreateCustomerHandler(db))
	protected.Get("/customers", catalog.ListCustomersHandler(db))
	protected.Get("/customers/:id", catalog.GetCustomerHandler(db))
	protected.Put("/customers/:id", catalog.UpdateCustomerHandler(db))
	protected.Delete("/customers/:id", catalog.DeleteCustomerHandler(db))

	// Ürünler
	protected.Post("/products", inventory.CreateProductHandler(db))
	protected.Get("/products", inventory.ListProductsHandler(db))
	protected.Get("/products/:id", inventory.GetProductHandler(db))
	protected.Put("/products/:id", inventory.UpdateProductHandler(db))
	protected.Delete("/products/:id", inventory.DeleteProductHandler(db))
	protected.Post("/products/:id/batches/adjust", inventory.AdjustBatchHandler(db))
	protected.Post("/products/bulk-import", inventory.BulkImportProductsHandler(db))

	// Alışlar
	protected.Post("/purchases", purchasing.CreatePurchaseHandler(db))
	protected.Get("/purchases", purchasing.ListPurchasesHandler(db))
	protected.Get("/purchases/:id", purchasing.GetPurchaseHandler(db))
	protected.Delete("/purchases/:id", purchasing.DeletePurchaseHandler(db))

	// Satışlar
	protected.Post("/sales", sales.CreateSaleHandler(db))
	protected.Get("/sales", sales.ListSalesHandler(db))
	protected.Get("/sales/:id", sales.GetSaleHandler(db))
	protected.Delete("/sales/:id", sales.DeleteSaleHandler(db))

	// Dashboard
	protected.Get("/dashboard/summary", dashboard.SummaryHandler(db))
	protected.Get("/dashboard/revenue-chart", dashboard.RevenueChartHandler(db))
	protected.Get("/dashboard/payment-pie", dashboard.PaymentPieHandler(db))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
