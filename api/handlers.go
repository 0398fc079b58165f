/*
handlers.go - HTTP API handlers

PURPOSE:
  Exposes the inventory ledger, roster and reporting over REST. Handlers
  parse and validate input, delegate to domain services, and map domain
  errors to HTTP statuses.

ENDPOINTS:
  Products:
    GET    /api/products          List catalog
    POST   /api/products          Create product (admin)
    GET    /api/products/{id}     Get product
    PUT    /api/products/{id}     Update product (admin)
    DELETE /api/products/{id}     Delete product (admin)

  Sales:
    GET    /api/sales             List sales, newest first
    POST   /api/sales             Record a sale (agent or admin)
    PUT    /api/sales/{id}        Revise quantity (admin)
    DELETE /api/sales/{id}?actor= Retract a sale (admin)

  Users:
    GET    /api/users             List users
    POST   /api/users             Create user
    PUT    /api/users/{id}        Update user / change role
    DELETE /api/users/{id}        Delete user

  Admin:
    POST   /api/admin/setup       Bootstrap the first admin
    POST   /api/admin/role        Grant admin by email

  Dashboard:
    GET    /api/dashboard/overview  Revenue/profit/sale-count cards
    GET    /api/dashboard/chart     Monthly revenue & profit series
    GET    /api/dashboard/trend     AI trend summary

ERROR MAPPING:
  400 validation / bad input      403 role violations
  404 missing product/sale/user   409 insufficient stock, duplicate email
  500 storage and compensation failures

SEE ALSO:
  - dto.go:    request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/profitpro/inventory-engine/ledger"
	"github.com/profitpro/inventory-engine/report"
	"github.com/profitpro/inventory-engine/roster"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  ledger.CatalogStore
	Ledger *ledger.Service
	Roster *roster.Service
	Trend  report.Analyzer
	Log    *zap.Logger

	validate *validator.Validate
}

// NewHandler wires the handler with its services.
func NewHandler(store ledger.CatalogStore, led *ledger.Service, ros *roster.Service, trend report.Analyzer, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Ledger:   led,
		Roster:   ros,
		Trend:    trend,
		Log:      log,
		validate: validator.New(),
	}
}

// decodeValid decodes the request body into v and runs struct validation.
func (h *Handler) decodeValid(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := h.validate.Struct(v); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.Ledger.CreateProduct(r.Context(), req.ActorID, ledger.Product{
		Name:         req.Name,
		CostPrice:    decimal.NewFromFloat(req.CostPrice),
		SellingPrice: decimal.NewFromFloat(req.SellingPrice),
		Stock:        req.Stock,
		ImageURL:     req.ImageURL,
		ImageHint:    req.ImageHint,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Product %q created successfully.", p.Name),
	})
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.Ledger.UpdateProduct(r.Context(), req.ActorID, ledger.Product{
		ID:           chi.URLParam(r, "id"),
		Name:         req.Name,
		CostPrice:    decimal.NewFromFloat(req.CostPrice),
		SellingPrice: decimal.NewFromFloat(req.SellingPrice),
		Stock:        req.Stock,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Product %q updated successfully.", req.Name),
	})
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor := r.URL.Query().Get("actor")
	if actor == "" {
		writeError(w, http.StatusBadRequest, "actor query parameter is required")
		return
	}
	if err := h.Ledger.DeleteProduct(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Product deleted successfully."})
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSales(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]SaleDTO, len(sales))
	for i, s := range sales {
		dtos[i] = toSaleDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.Ledger.RecordSale(r.Context(), req.ProductID, req.Quantity, req.AgentID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RecordSaleResponse{
		SaleID:       receipt.SaleID,
		TotalRevenue: receipt.TotalRevenue.InexactFloat64(),
		Message:      "Sale recorded successfully.",
	})
}

func (h *Handler) ReviseSale(w http.ResponseWriter, r *http.Request) {
	var req ReviseSaleRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.Ledger.ReviseSale(r.Context(), chi.URLParam(r, "id"), req.Quantity, req.ActorID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Sale updated successfully."})
}

func (h *Handler) RetractSale(w http.ResponseWriter, r *http.Request) {
	actor := r.URL.Query().Get("actor")
	if actor == "" {
		writeError(w, http.StatusBadRequest, "actor query parameter is required")
		return
	}
	if err := h.Ledger.RetractSale(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Sale deleted successfully."})
}

// =============================================================================
// USER HANDLERS
// =============================================================================

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Roster.ListUsers(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.Roster.CreateUser(r.Context(), roster.NewUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      ledger.Role(req.Role),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	roleLabel := "Sales Agent"
	if user.Role == ledger.RoleAdmin {
		roleLabel = "Admin"
	}
	writeJSON(w, http.StatusCreated, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("%s %s created successfully.", roleLabel, user.FullName()),
	})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.Roster.UpdateUser(r.Context(), chi.URLParam(r, "id"), roster.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      ledger.Role(req.Role),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "User updated successfully."})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Roster.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "User deleted successfully."})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	var req SetupRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err := h.Roster.Setup(r.Context(), roster.NewUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageResponse{
		Success: true,
		Message: "Admin account created successfully! You can now login with your credentials.",
	})
}

func (h *Handler) SetAdminRole(w http.ResponseWriter, r *http.Request) {
	var req SetAdminRoleRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Roster.SetAdminRole(r.Context(), req.Email); err != nil {
		if errors.Is(err, ledger.ErrUserNotFound) {
			writeError(w, http.StatusNotFound,
				"User not found. Please make sure the user has signed up in the application first.")
			return
		}
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully granted admin role to user: %s. Please log out and log back in to see the changes.", req.Email),
	})
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSales(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	o := report.Summarize(sales)
	writeJSON(w, http.StatusOK, OverviewDTO{
		TotalRevenue: o.TotalRevenue.InexactFloat64(),
		TotalProfit:  o.TotalProfit.InexactFloat64(),
		TotalSales:   o.TotalSales,
	})
}

func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSales(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	series := report.MonthlySeries(sales)
	dtos := make([]MonthPointDTO, len(series))
	for i, p := range series {
		dtos[i] = MonthPointDTO{
			Month:   p.Label,
			Revenue: p.Revenue.InexactFloat64(),
			Profit:  p.Profit.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) TrendAnalysis(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSales(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	analysis := report.TrendSummary(r.Context(), h.Trend, h.Log, sales)
	writeJSON(w, http.StatusOK, TrendDTO{Analysis: analysis})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Success: false, Message: message})
}

// writeDomainError maps domain errors to HTTP statuses. Error messages from
// the ledger are user-facing by contract and returned verbatim.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *ledger.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		writeError(w, http.StatusConflict, stockErr.Error())
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, capitalizeSentinel(err))
	case errors.Is(err, ledger.ErrForbidden):
		writeError(w, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, ledger.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1.")
	case errors.Is(err, roster.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long.")
	case errors.Is(err, roster.ErrEmailTaken):
		writeError(w, http.StatusConflict, "A user with this email already exists.")
	case errors.Is(err, roster.ErrAdminExists):
		writeError(w, http.StatusConflict, "An admin account already exists.")
	case errors.Is(err, ledger.ErrCompensationFailed):
		h.Log.Error("compensation failure, state may be inconsistent", zap.Error(err))
		writeError(w, http.StatusInternalServerError,
			"The operation failed and could not be fully rolled back. Please contact an administrator.")
	default:
		h.Log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

func capitalizeSentinel(err error) string {
	switch {
	case errors.Is(err, ledger.ErrProductNotFound):
		return "Product not found."
	case errors.Is(err, ledger.ErrSaleNotFound):
		return "Sale not found."
	default:
		return "User not found."
	}
}

// =============================================================================
// DTO CONVERTERS
// =============================================================================

func toProductDTO(p *ledger.Product) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		CostPrice:    p.CostPrice.InexactFloat64(),
		SellingPrice: p.SellingPrice.InexactFloat64(),
		Stock:        p.Stock,
		ImageURL:     p.ImageURL,
		ImageHint:    p.ImageHint,
	}
}

func toSaleDTO(s *ledger.Sale) SaleDTO {
	return SaleDTO{
		ID:           s.ID,
		ProductID:    s.ProductID,
		ProductName:  s.ProductName,
		Quantity:     s.Quantity,
		TotalRevenue: s.TotalRevenue.InexactFloat64(),
		TotalCost:    s.TotalCost.InexactFloat64(),
		Profit:       s.Profit.InexactFloat64(),
		AgentID:      s.AgentID,
		Date:         s.SoldAt.UTC().Format(time.RFC3339),
	}
}

func toUserDTO(u *ledger.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
	}
}
