package http

import (
	"github.com/gofiber/fiber/v2"
	appaudit "github.com/yms2/mes-core/internal/application/audit"
	appbom "github.com/yms2/mes-core/internal/application/bom"
	"github.com/yms2/mes-core/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ExplodeUC   *appbom.ExplodeUseCase
	AdjustStock *inventory.AdjustStockUseCase
	LotUC       *inventory.LotUseCase
	ReconcileUC *inventory.ReconcileUseCase
	AuditUC     *appaudit.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// BOM (protegido, lectura)
	bomGroup := protected.Group("/bom")
	bomHandler := NewBomHandler(deps.ExplodeUC)
	bomGroup.Post("/explode", bomHandler.Explode)

	// Inventory (protegido; mutaciones restringidas por rol)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AdjustStock, deps.LotUC, deps.ReconcileUC)
	mutate := RequireRole("admin", "almacen", "produccion")
	invGroup.Post("/change", mutate, inventoryHandler.Change)
	invGroup.Post("/set", mutate, inventoryHandler.Set)
	invGroup.Post("/change-batch", mutate, inventoryHandler.ChangeBatch)
	invGroup.Post("/lots/receive", mutate, inventoryHandler.ReceiveLot)
	invGroup.Post("/lots/consume", mutate, inventoryHandler.ConsumeLot)
	invGroup.Get("/lots/:code", inventoryHandler.ListLots)

	// Reconciliación de transacciones origen (solo admin y almacén)
	reconcile := invGroup.Group("/reconcile", RequireRole("admin", "almacen"))
	reconcile.Post("/receiving/revise", inventoryHandler.ReviseReceiving)
	reconcile.Post("/receiving/cancel", inventoryHandler.CancelReceiving)
	reconcile.Post("/delivery/revise", inventoryHandler.ReviseDelivery)
	reconcile.Post("/delivery/cancel", inventoryHandler.CancelDelivery)

	// Audit (protegido, lectura)
	auditGroup := protected.Group("/audit")
	auditHandler := NewAuditHandler(deps.AuditUC)
	auditGroup.Get("/logs", auditHandler.Logs)
	auditGroup.Get("/statistics", auditHandler.Statistics)
	auditGroup.Get("/period-summary", auditHandler.PeriodSummary)
	auditGroup.Get("/stock-status", auditHandler.StockStatus)
}
