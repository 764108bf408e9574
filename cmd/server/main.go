package main

import (
	"log"
	"strings"

	"boya-backend/internal/audit"
	"boya-backend/internal/auth"
	"boya-backend/internal/cache"
	"boya-backend/internal/config"
	"boya-backend/internal/customer"
	"boya-backend/internal/dashboard"
	"boya-backend/internal/database"
	"boya-backend/internal/inventory"
	"boya-backend/internal/models"
	"boya-backend/internal/production"
	"boya-backend/internal/report"
	"boya-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	cache.Init(cfg)

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

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
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
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Dashboard
	protected.Get("/dashboard/stats", dashboard.StatsHandler())

	// Hammaddeler
	protected.Get("/inventory/raw-materials", inventory.ListRawMaterialsHandler())
	protected.Post("/inventory/raw-materials", inventory.CreateRawMaterialHandler())
	protected.Put("/inventory/raw-materials/:id", inventory.UpdateRawMaterialHandler())

	// Ürünler
	protected.Get("/inventory/products", inventory.ListProductsHandler())
	protected.Post("/inventory/products", inventory.CreateProductHandler())
	protected.Put("/inventory/products/:id", inventory.UpdateProductHandler())

	// Tedarikçiler
	protected.Get("/inventory/suppliers", inventory.ListSuppliersHandler())
	protected.Post("/inventory/suppliers", inventory.CreateSupplierHandler())
	protected.Put("/inventory/suppliers/:id", inventory.UpdateSupplierHandler())

	// Alımlar
	protected.Post("/inventory/restock", inventory.RestockHandler())
	protected.Post("/inventory/restock/parse-invoice", inventory.ParseInvoiceHandler())
	protected.Get("/inventory/purchases", inventory.ListPurchasesHandler())

	// Stok hareketleri
	protected.Get("/inventory/stock-movements", inventory.ListStockMovementsHandler())

	// Reçeteler
	protected.Get("/production/recipes", production.ListRecipesHandler())
	protected.Get("/production/recipes/:id", production.GetRecipeHandler())
	protected.Post("/production/recipes", production.CreateRecipeHandler())
	protected.Put("/production/recipes/:id", production.UpdateRecipeHandler())

	// Üretim
	protected.Get("/production/runs", production.ListRunsHandler())
	protected.Post("/production/runs", production.ExecuteRunHandler())
	protected.Post("/production/requirements", production.RequirementsHandler())

	// Müşteriler
	protected.Get("/customers", customer.ListCustomersHandler())
	protected.Post("/customers", customer.CreateCustomerHandler())
	protected.Put("/customers/:id", customer.UpdateCustomerHandler())

	// Satışlar
	protected.Get("/sales", sales.ListSalesHandler())
	protected.Get("/sales/form-data", sales.SaleFormDataHandler())
	protected.Get("/sales/:id", sales.GetSaleHandler())
	protected.Post("/sales", sales.CreateSaleHandler())

	// Taksitler
	protected.Get("/installments", sales.ListInstallmentsHandler())
	protected.Get("/installments/due-soon", sales.DueSoonInstallmentsHandler())
	protected.Post("/installments/:id/pay", sales.PayInstallmentHandler())

	// Raporlar
	protected.Get("/reports/sales", report.SalesReportHandler())
	protected.Get("/reports/inventory", report.InventoryReportHandler())
	protected.Get("/reports/purchases", report.PurchasesReportHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Silme işlemleri sadece admin
	adminOnly := protected.Group("")
	adminOnly.Use(auth.RequireRole(models.RoleAdmin))
	adminOnly.Delete("/inventory/raw-materials/:id", inventory.DeleteRawMaterialHandler())
	adminOnly.Delete("/inventory/products/:id", inventory.DeleteProductHandler())
	adminOnly.Delete("/inventory/suppliers/:id", inventory.DeleteSupplierHandler())
	adminOnly.Delete("/production/recipes/:id", production.DeleteRecipeHandler())
	adminOnly.Delete("/customers/:id", customer.DeleteCustomerHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
