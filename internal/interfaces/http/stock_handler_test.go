package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolo-pos/inventory-api/internal/application/dto"
	appstock "github.com/tavolo-pos/inventory-api/internal/application/stock"
	"github.com/tavolo-pos/inventory-api/internal/domain/stock"
	"github.com/tavolo-pos/inventory-api/internal/infrastructure/memory"
	apphttp "github.com/tavolo-pos/inventory-api/internal/interfaces/http"
	pkgjwt "github.com/tavolo-pos/inventory-api/pkg/jwt"
)

// buildStockApp wires the full API over the in-memory store.
func buildStockApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	classifier := stock.NewClassifier(decimal.Zero)
	adjustUC := appstock.NewAdjustUseCase(store, classifier, nil, appstock.AdjustConfig{
		MaxRetries: 2,
		Backoff:    5 * time.Millisecond,
		Timeout:    time.Second,
	})
	catalogUC := appstock.NewCatalogUseCase(store.Items(), store.Ledger(), classifier)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Adjust:    adjustUC,
		Catalog:   catalogUC,
		JWTSecret: testJWTSecret,
	})
	return app
}

func authedRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := pkgjwt.Generate(testJWTSecret, testActorID, "manager", testIssuer, 60)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeItem(t *testing.T, resp *http.Response) dto.StockItemResponse {
	t.Helper()
	defer resp.Body.Close()
	var out dto.StockItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createTestItem(t *testing.T, app *fiber.App) dto.StockItemResponse {
	t.Helper()
	resp, err := app.Test(authedRequest(t, http.MethodPost, "/api/stock/items", dto.CreateItemRequest{
		Kind:         "ingredient",
		Name:         "mozzarella",
		Unit:         "kg",
		InitialStock: decimal.NewFromInt(20),
		MinStock:     decimal.NewFromInt(10),
		MaxStock:     decimal.NewFromInt(100),
		UnitCost:     decimal.RequireFromString("8.40"),
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decodeItem(t, resp)
}

func TestStockAPI_CreateAndGet(t *testing.T) {
	app := buildStockApp(t)
	created := createTestItem(t, app)
	assert.Equal(t, "ok", created.Status)
	assert.True(t, created.TotalValue.Equal(decimal.RequireFromString("168")))

	resp, err := app.Test(authedRequest(t, http.MethodGet, "/api/stock/items/"+created.ID, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decodeItem(t, resp)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.CurrentStock.Equal(decimal.NewFromInt(20)))
}

func TestStockAPI_CreateValidation(t *testing.T) {
	app := buildStockApp(t)
	resp, err := app.Test(authedRequest(t, http.MethodPost, "/api/stock/items", dto.CreateItemRequest{
		Kind: "equipment",
		Name: "oven",
		Unit: "pcs",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStockAPI_AdjustFlow(t *testing.T) {
	app := buildStockApp(t)
	item := createTestItem(t, app)
	base := fmt.Sprintf("/api/stock/items/%s/adjustments", item.ID)

	// Remove more than on hand: conflict, nothing changes.
	resp, err := app.Test(authedRequest(t, http.MethodPost, base, dto.AdjustStockRequest{
		Operation: "remove", Quantity: decimal.NewFromInt(25), Reason: "sale",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Valid add.
	resp, err = app.Test(authedRequest(t, http.MethodPost, base, dto.AdjustStockRequest{
		Operation: "add", Quantity: decimal.NewFromInt(5), Reason: "purchase", Notes: "weekly delivery",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decodeItem(t, resp)
	assert.True(t, updated.CurrentStock.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "ok", updated.Status)
	assert.NotNil(t, updated.LastRestockedAt)

	// Remove down into low status.
	resp, err = app.Test(authedRequest(t, http.MethodPost, base, dto.AdjustStockRequest{
		Operation: "remove", Quantity: decimal.NewFromInt(20), Reason: "sale",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated = decodeItem(t, resp)
	assert.True(t, updated.CurrentStock.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "low", updated.Status)

	// History: two records, newest first, actor attached.
	resp, err = app.Test(authedRequest(t, http.MethodGet, base, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var history dto.HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	resp.Body.Close()
	require.Len(t, history.Records, 2)
	assert.Equal(t, 2, history.Page.Total)
	assert.Equal(t, "remove", history.Records[0].Operation)
	assert.Equal(t, testActorID, history.Records[0].ActorID)
	assert.True(t, history.Records[1].PreviousStock.Equal(decimal.NewFromInt(20)))
}

func TestStockAPI_AdjustValidation(t *testing.T) {
	app := buildStockApp(t)
	item := createTestItem(t, app)
	base := fmt.Sprintf("/api/stock/items/%s/adjustments", item.ID)

	// Reason outside the closed enum is rejected at the boundary.
	resp, err := app.Test(authedRequest(t, http.MethodPost, base, dto.AdjustStockRequest{
		Operation: "add", Quantity: decimal.NewFromInt(1), Reason: "shrinkage",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Zero quantity passes the enum check but fails the engine.
	resp, err = app.Test(authedRequest(t, http.MethodPost, base, dto.AdjustStockRequest{
		Operation: "add", Quantity: decimal.Zero, Reason: "purchase",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	// Unknown item.
	resp, err = app.Test(authedRequest(t, http.MethodPost, "/api/stock/items/nope/adjustments", dto.AdjustStockRequest{
		Operation: "add", Quantity: decimal.NewFromInt(1), Reason: "purchase",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStockAPI_LowAndValuation(t *testing.T) {
	app := buildStockApp(t)
	item := createTestItem(t, app)

	// Drain below the minimum.
	resp, err := app.Test(authedRequest(t, http.MethodPost, fmt.Sprintf("/api/stock/items/%s/adjustments", item.ID), dto.AdjustStockRequest{
		Operation: "remove", Quantity: decimal.NewFromInt(15), Reason: "sale",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(authedRequest(t, http.MethodGet, "/api/stock/low", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var low struct {
		Total int                     `json:"total"`
		Items []dto.StockItemResponse `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&low))
	resp.Body.Close()
	require.Equal(t, 1, low.Total)
	assert.Equal(t, "low", low.Items[0].Status)

	resp, err = app.Test(authedRequest(t, http.MethodGet, "/api/stock/valuation", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var val dto.ValuationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&val))
	resp.Body.Close()
	assert.Equal(t, 1, val.ItemCount)
	assert.True(t, val.TotalValue.Equal(decimal.RequireFromString("42")), "5 * 8.40, got %s", val.TotalValue)
}

func TestStockAPI_Deactivate(t *testing.T) {
	app := buildStockApp(t)
	item := createTestItem(t, app)

	resp, err := app.Test(authedRequest(t, http.MethodPost, fmt.Sprintf("/api/stock/items/%s/deactivate", item.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// Adjusting a deactivated item reads as not found.
	resp, err = app.Test(authedRequest(t, http.MethodPost, fmt.Sprintf("/api/stock/items/%s/adjustments", item.ID), dto.AdjustStockRequest{
		Operation: "add", Quantity: decimal.NewFromInt(1), Reason: "purchase",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStockAPI_RequiresAuth(t *testing.T) {
	app := buildStockApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/stock/items", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
