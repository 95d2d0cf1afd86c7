package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear una prenda.
type CreateItemRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"min=0"`
}

// UpdateItemRequest entrada para actualizar una prenda (patch parcial).
type UpdateItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Size        *string          `json:"size"`
	Color       *string          `json:"color"`
	Brand       *string          `json:"brand"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Status      *string          `json:"status"`
}

// ItemResponse salida de una prenda.
type ItemResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de prendas.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ItemImageResponse metadatos de una imagen de ítem.
type ItemImageResponse struct {
	ID        string    `json:"id"`
	ItemID    int64     `json:"item_id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}
