package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest una línea de venta directa.
type SaleItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// CreateSaleRequest entrada para una venta directa (no originada en condicional).
type CreateSaleRequest struct {
	ClientName    string            `json:"client_name"`
	ClientPhone   string            `json:"client_phone"`
	PaymentMethod string            `json:"payment_method" validate:"required"`
	Discount      decimal.Decimal   `json:"discount"`
	Notes         string            `json:"notes,omitempty"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1"`
}

// SaleItemResponse una línea vendida.
type SaleItemResponse struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID            int64              `json:"id"`
	ClientName    string             `json:"client_name,omitempty"`
	ClientPhone   string             `json:"client_phone,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	Total         decimal.Decimal    `json:"total"`
	Discount      decimal.Decimal    `json:"discount"`
	FinalAmount   decimal.Decimal    `json:"final_amount"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	Items         []SaleItemResponse `json:"items"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Sales []SaleResponse `json:"sales"`
	Page  PageResponse   `json:"page"`
}
