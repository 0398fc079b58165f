/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the domain types.
  Money crosses the wire as JSON numbers (what the dashboard charts
  consume); internally everything stays decimal.

NAMING CONVENTION:
  - *DTO:     response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Request structs carry go-playground/validator tags, checked in handlers
  before any domain call.
*/
package api

// =============================================================================
// PRODUCTS
// =============================================================================

type ProductDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CostPrice    float64 `json:"cost_price"`
	SellingPrice float64 `json:"selling_price"`
	Stock        int     `json:"stock"`
	ImageURL     string  `json:"image_url,omitempty"`
	ImageHint    string  `json:"image_hint,omitempty"`
}

type CreateProductRequest struct {
	Name         string  `json:"name" validate:"required"`
	CostPrice    float64 `json:"cost_price" validate:"gte=0"`
	SellingPrice float64 `json:"selling_price" validate:"gte=0"`
	Stock        int     `json:"stock" validate:"gte=0"`
	ImageURL     string  `json:"image_url"`
	ImageHint    string  `json:"image_hint"`
	ActorID      string  `json:"actor_id" validate:"required"`
}

type UpdateProductRequest struct {
	Name         string  `json:"name" validate:"required"`
	CostPrice    float64 `json:"cost_price" validate:"gte=0"`
	SellingPrice float64 `json:"selling_price" validate:"gte=0"`
	Stock        int     `json:"stock" validate:"gte=0"`
	ActorID      string  `json:"actor_id" validate:"required"`
}

// =============================================================================
// SALES
// =============================================================================

type SaleDTO struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalCost    float64 `json:"total_cost"`
	Profit       float64 `json:"profit"`
	AgentID      string  `json:"sales_agent_id"`
	Date         string  `json:"date"`
}

type RecordSaleRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	AgentID   string `json:"sales_agent_id" validate:"required"`
}

type RecordSaleResponse struct {
	SaleID       string  `json:"sale_id"`
	TotalRevenue float64 `json:"total_revenue"`
	Message      string  `json:"message"`
}

type ReviseSaleRequest struct {
	Quantity int    `json:"quantity" validate:"required,min=1"`
	ActorID  string `json:"actor_id" validate:"required"`
}

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=admin agent"`
}

type UpdateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Role      string `json:"role" validate:"omitempty,oneof=admin agent"`
}

type SetAdminRoleRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SetupRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

type OverviewDTO struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalProfit  float64 `json:"total_profit"`
	TotalSales   int     `json:"total_sales"`
}

type MonthPointDTO struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

type TrendDTO struct {
	Analysis string `json:"analysis"`
}

// =============================================================================
// SHARED
// =============================================================================

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
