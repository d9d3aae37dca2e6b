package http

import (
	"github.com/gofiber/fiber/v2"

	appstock "github.com/tavolo-pos/inventory-api/internal/application/stock"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	Adjust    *appstock.AdjustUseCase
	Catalog   *appstock.CatalogUseCase
	JWTSecret string
}

// Router registers the API routes. Everything under /api requires a Bearer
// token from the auth subsystem; mutations additionally need the actor id
// it carries.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	handler := NewStockHandler(deps.Adjust, deps.Catalog)

	items := api.Group("/stock/items")
	items.Post("/", handler.CreateItem)
	items.Get("/", handler.ListItems)
	items.Get("/:id", handler.GetItem)
	items.Post("/:id/adjustments", handler.Adjust)
	items.Get("/:id/adjustments", handler.History)
	items.Post("/:id/deactivate", handler.Deactivate)

	api.Get("/stock/low", handler.LowStock)
	api.Get("/stock/valuation", handler.Valuation)
}
