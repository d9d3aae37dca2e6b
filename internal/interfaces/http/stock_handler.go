package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tavolo-pos/inventory-api/internal/application/dto"
	appstock "github.com/tavolo-pos/inventory-api/internal/application/stock"
	"github.com/tavolo-pos/inventory-api/internal/domain"
	"github.com/tavolo-pos/inventory-api/pkg/validator"
)

// StockHandler serves the stock catalog and the adjustment ledger.
type StockHandler struct {
	adjust  *appstock.AdjustUseCase
	catalog *appstock.CatalogUseCase
}

// NewStockHandler builds the handler.
func NewStockHandler(adjust *appstock.AdjustUseCase, catalog *appstock.CatalogUseCase) *StockHandler {
	return &StockHandler{adjust: adjust, catalog: catalog}
}

// CreateItem godoc
// @Summary      Onboard a stock item
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "kind, name, unit, thresholds, unit_cost"
// @Success      201  {object}  dto.StockItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/items [post]
func (h *StockHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "malformed body"})
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(errs)})
	}
	view, err := h.catalog.CreateItem(c.Context(), appstock.CreateItemInput{
		Kind:         in.Kind,
		Name:         in.Name,
		Unit:         in.Unit,
		InitialStock: in.InitialStock,
		MinStock:     in.MinStock,
		MaxStock:     in.MaxStock,
		UnitCost:     in.UnitCost,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockItemResponse(view))
}

// GetItem godoc
// @Summary      Stock item with derived status and value
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Item ID"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id} [get]
func (h *StockHandler) GetItem(c *fiber.Ctx) error {
	view, err := h.catalog.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewStockItemResponse(view))
}

// ListItems godoc
// @Summary      List stock items
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        kind    query  string  false  "product | ingredient"
// @Param        status  query  string  false  "ok | low | out"
// @Param        active  query  bool    false  "filter by active flag"
// @Param        limit   query  int     false  "page size"
// @Param        offset  query  int     false  "page offset"
// @Success      200  {array}  dto.StockItemResponse
// @Router       /api/stock/items [get]
func (h *StockHandler) ListItems(c *fiber.Ctx) error {
	var in dto.ListItemsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "malformed query"})
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(errs)})
	}
	in.DefaultPage()
	views, err := h.catalog.ListItems(c.Context(), appstock.ListFilter{
		Kind:   in.Kind,
		Status: in.Status,
		Active: in.Active,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.StockItemResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.NewStockItemResponse(v))
	}
	return c.JSON(fiber.Map{
		"page":  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
		"items": out,
	})
}

// Adjust godoc
// @Summary      Apply a stock adjustment
// @Description  The only way quantity changes: atomic catalog write plus
// @Description  ledger append, serialized per item.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "Item ID"
// @Param        body  body  dto.AdjustStockRequest  true  "operation, quantity, reason, notes"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id}/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "malformed body"})
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(errs)})
	}
	view, err := h.adjust.Adjust(c.Context(), appstock.AdjustInput{
		ItemID:    c.Params("id"),
		Operation: in.Operation,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		Notes:     in.Notes,
		ActorID:   actorID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewStockItemResponse(view))
}

// History godoc
// @Summary      Adjustment history for an item
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "Item ID"
// @Param        limit   query  int     false  "page size"
// @Param        offset  query  int     false  "page offset"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id}/adjustments [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "malformed query"})
	}
	page.DefaultPage()
	records, total, err := h.catalog.History(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := dto.HistoryResponse{
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
		Records: make([]dto.AdjustmentResponse, 0, len(records)),
	}
	for _, r := range records {
		out.Records = append(out.Records, dto.NewAdjustmentResponse(r))
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Deactivate a stock item
// @Description  Items referenced by the ledger are never deleted.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Item ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/items/{id}/deactivate [post]
func (h *StockHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.catalog.DeactivateItem(c.Context(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LowStock godoc
// @Summary      Items at or below their low-stock threshold
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockItemResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	views, err := h.catalog.LowStock(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.StockItemResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.NewStockItemResponse(v))
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// Valuation godoc
// @Summary      Aggregate value of the active catalog
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/stock/valuation [get]
func (h *StockHandler) Valuation(c *fiber.Ctx) error {
	total, count, err := h.catalog.Valuation(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.ValuationResponse{TotalValue: total, ItemCount: count})
}

// errorResponse maps domain errors to HTTP statuses.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "item not found or inactive"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "an item with this name already exists for this kind"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "remove would drive stock negative"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "concurrent adjustments, retry the request"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func validationMessage(errs []validator.FieldError) string {
	first := errs[0]
	msg := "field " + first.FailedField + " failed on " + first.Tag
	if first.Param != "" {
		msg += "=" + first.Param
	}
	return msg
}
