package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitpro/inventory-engine/api"
	"github.com/profitpro/inventory-engine/ledger"
	"github.com/profitpro/inventory-engine/ledger/store"
	"github.com/profitpro/inventory-engine/report"
	"github.com/profitpro/inventory-engine/roster"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const (
	adminID = "user-admin"
	agentID = "user-agent"
)

func newTestRouter(t *testing.T) (http.Handler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.InsertUser(ctx, &ledger.User{
		ID: adminID, FirstName: "Ada", LastName: "Okafor",
		Email: "ada@example.com", Role: ledger.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, mem.InsertUser(ctx, &ledger.User{
		ID: agentID, FirstName: "Sam", LastName: "Reyes",
		Email: "sam@example.com", Role: ledger.RoleAgent,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, mem.CreateProduct(ctx, &ledger.Product{
		ID:           "prod-1",
		Name:         "Wireless Mouse",
		CostPrice:    decimal.NewFromInt(15),
		SellingPrice: decimal.NewFromInt(30),
		Stock:        10,
		CreatedAt:    time.Now().UTC(),
	}))

	led := ledger.NewService(mem, nil)
	ros := roster.NewService(roster.NewMemoryIdentity(), mem, nil)
	h := api.NewHandler(mem, led, ros, report.Static{}, nil)
	return api.NewRouter(h), mem
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func productStock(t *testing.T, mem *store.Memory, id string) int {
	t.Helper()
	p, err := mem.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

// =============================================================================
// SALES
// =============================================================================

func TestAPI_RecordSale(t *testing.T) {
	router, mem := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/sales", map[string]any{
		"product_id":     "prod-1",
		"quantity":       4,
		"sales_agent_id": agentID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.RecordSaleResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.SaleID)
	assert.Equal(t, 120.0, resp.TotalRevenue)
	assert.Equal(t, "Sale recorded successfully.", resp.Message)
	assert.Equal(t, 6, productStock(t, mem, "prod-1"))
}

func TestAPI_RecordSale_InsufficientStock(t *testing.T) {
	// GIVEN: stock=10 and a request for 25 units
	// THEN:  409 with the exact user-facing message, stock untouched

	router, mem := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/sales", map[string]any{
		"product_id":     "prod-1",
		"quantity":       25,
		"sales_agent_id": agentID,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp api.MessageResponse
	decodeBody(t, rec, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "Insufficient stock. Only 10 units available.", resp.Message)
	assert.Equal(t, 10, productStock(t, mem, "prod-1"))
}

func TestAPI_RecordSale_ValidationRejectsZeroQuantity(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/sales", map[string]any{
		"product_id":     "prod-1",
		"quantity":       0,
		"sales_agent_id": agentID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_RecordSale_UnknownProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/sales", map[string]any{
		"product_id":     "ghost",
		"quantity":       1,
		"sales_agent_id": agentID,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp api.MessageResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Product not found.", resp.Message)
}

func TestAPI_ReviseSale_AdminOnly(t *testing.T) {
	router, mem := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/sales", map[string]any{
		"product_id": "prod-1", "quantity": 4, "sales_agent_id": agentID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created api.RecordSaleResponse
	decodeBody(t, rec, &created)

	// Agents cannot revise.
	rec = doJSON(t, router, http.MethodPut, "/api/sales/"+created.SaleID, map[string]any{
		"quantity": 6, "actor_id": agentID,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 6, productStock(t, mem, "prod-1"))

	// Admins can.
	rec = doJSON(t, router, http.MethodPut, "/api/sales/"+created.SaleID, map[string]any{
		"quantity": 6, "actor_id": adminID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, productStock(t, mem, "prod-1"))
}

func TestAPI_RetractSale(t *testing.T) {
	router, mem := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/sales", map[string]any{
		"product_id": "prod-1", "quantity": 4, "sales_agent_id": agentID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created api.RecordSaleResponse
	decodeBody(t, rec, &created)

	// Missing actor parameter is a client error.
	rec = doJSON(t, router, http.MethodDelete, "/api/sales/"+created.SaleID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete,
		fmt.Sprintf("/api/sales/%s?actor=%s", created.SaleID, adminID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, productStock(t, mem, "prod-1"))

	sales, err := mem.ListSales(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sales)
}

// =============================================================================
// PRODUCTS
// =============================================================================

func TestAPI_CreateProduct_AdminOnly(t *testing.T) {
	router, _ := newTestRouter(t)

	body := map[string]any{
		"name": "USB Hub", "cost_price": 10, "selling_price": 25, "stock": 40,
		"actor_id": agentID,
	}
	rec := doJSON(t, router, http.MethodPost, "/api/products", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body["actor_id"] = adminID
	rec = doJSON(t, router, http.MethodPost, "/api/products", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.MessageResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "USB Hub")
}

func TestAPI_GetProduct_Missing(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/products/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ListProducts(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []api.ProductDTO
	decodeBody(t, rec, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Wireless Mouse", products[0].Name)
	assert.Equal(t, 30.0, products[0].SellingPrice)
}

// =============================================================================
// USERS AND ADMIN
// =============================================================================

func TestAPI_CreateUser_RejectsUnknownRole(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]any{
		"first_name": "Noa", "last_name": "Kim",
		"email": "noa@example.com", "password": "hunter22", "role": "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_CreateUser_ShortPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]any{
		"first_name": "Noa", "last_name": "Kim",
		"email": "noa@example.com", "password": "abc", "role": "agent",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.MessageResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Password must be at least 6 characters long.", resp.Message)
}

func TestAPI_Setup_RefusedOnceAdminExists(t *testing.T) {
	// The seeded roster already has an admin, so the unauthenticated setup
	// endpoint must refuse.

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/admin/setup", map[string]any{
		"first_name": "Eve", "last_name": "Mallory",
		"email": "eve@example.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_SetAdminRole(t *testing.T) {
	router, mem := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/admin/role", map[string]any{
		"email": "sam@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.MessageResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Message, "Successfully granted admin role to user: sam@example.com")

	u, err := mem.GetUser(context.Background(), agentID)
	require.NoError(t, err)
	assert.Equal(t, ledger.RoleAdmin, u.Role)
}

func TestAPI_SetAdminRole_UnknownEmail(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/admin/role", map[string]any{
		"email": "nobody@example.com",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp api.MessageResponse
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Message, "signed up in the application first")
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestAPI_Dashboard(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/sales", map[string]any{
		"product_id": "prod-1", "quantity": 4, "sales_agent_id": agentID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/dashboard/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var overview api.OverviewDTO
	decodeBody(t, rec, &overview)
	assert.Equal(t, 120.0, overview.TotalRevenue)
	assert.Equal(t, 60.0, overview.TotalProfit)
	assert.Equal(t, 1, overview.TotalSales)

	rec = doJSON(t, router, http.MethodGet, "/api/dashboard/chart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var series []api.MonthPointDTO
	decodeBody(t, rec, &series)
	require.Len(t, series, 1)
	assert.Equal(t, 120.0, series[0].Revenue)

	rec = doJSON(t, router, http.MethodGet, "/api/dashboard/trend", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var trend api.TrendDTO
	decodeBody(t, rec, &trend)
	assert.NotEmpty(t, trend.Analysis)
}

func TestAPI_Trend_NoSales(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/dashboard/trend", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var trend api.TrendDTO
	decodeBody(t, rec, &trend)
	assert.Equal(t, report.NoSalesMessage, trend.Analysis)
}

func TestAPI_Healthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
