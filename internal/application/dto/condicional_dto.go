package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CondicionalItemRequest una entrada de ítem al crear una condicional.
// Debe venir item_id o name; quantity siempre > 0.
type CondicionalItemRequest struct {
	ItemID   int64  `json:"item_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity"`
}

// CreateCondicionalRequest body para POST /api/condicionales.
// ReturnDate en formato "2006-01-02"; la comparación "no en el pasado" es
// solo de fecha, sin hora.
type CreateCondicionalRequest struct {
	ClientID   int64                    `json:"client_id"`
	ReturnDate string                   `json:"return_date"`
	Notes      string                   `json:"notes,omitempty"`
	Items      []CondicionalItemRequest `json:"items"`
}

// UpdateCondicionalRequest body para PUT /api/condicionales/:id.
// Semántica de patch parcial: solo los campos presentes cambian.
// ClientID llega como string y debe parsear a entero positivo.
type UpdateCondicionalRequest struct {
	ClientID   *string `json:"client_id,omitempty"`
	ReturnDate *string `json:"return_date,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// ReturnItemRequest body para POST /api/condicionales/:id/return.
type ReturnItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// ReturnItemResult resultado de una devolución parcial o total.
type ReturnItemResult struct {
	QuantityReturned   int `json:"quantity_returned"`
	RemainingItemCount int `json:"remaining_item_count"`
}

// FinalizeCondicionalRequest body para POST /api/condicionales/:id/finalize.
// Returned permite forzar el flag (por defecto true).
type FinalizeCondicionalRequest struct {
	Notes    *string `json:"notes,omitempty"`
	Returned *bool   `json:"returned,omitempty"`
}

// SoldItemRequest una entrada de la lista explícita de items_sold.
type SoldItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// SoldSelection acepta el valor "all" o una lista de {item_id, quantity}.
type SoldSelection struct {
	All   bool
	Items []SoldItemRequest
}

// UnmarshalJSON acepta la cadena "all" o un arreglo de entradas.
func (s *SoldSelection) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		if str != "all" {
			return fmt.Errorf("items_sold: valor %q no soportado", str)
		}
		s.All = true
		s.Items = nil
		return nil
	}
	var items []SoldItemRequest
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("items_sold: debe ser \"all\" o una lista: %w", err)
	}
	s.All = false
	s.Items = items
	return nil
}

// MarshalJSON produce "all" o la lista, simétrico con UnmarshalJSON.
func (s SoldSelection) MarshalJSON() ([]byte, error) {
	if s.All {
		return json.Marshal("all")
	}
	return json.Marshal(s.Items)
}

// ConvertCondicionalRequest body para POST /api/condicionales/:id/convert.
type ConvertCondicionalRequest struct {
	ItemsSold     SoldSelection   `json:"items_sold"`
	Discount      decimal.Decimal `json:"discount"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
}

// SoldLineDTO una línea vendida en el resultado de la conversión.
type SoldLineDTO struct {
	ItemID    int64           `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ConvertSummaryDTO resumen monetario de la conversión.
type ConvertSummaryDTO struct {
	Total                decimal.Decimal `json:"total"`
	Discount             decimal.Decimal `json:"discount"`
	FinalAmount          decimal.Decimal `json:"final_amount"`
	CondicionalFinalized bool            `json:"condicional_finalized"`
}

// ConvertCondicionalResult resultado completo de la conversión a venta.
// ItemsReturned queda siempre vacío: la conversión jamás repone stock.
type ConvertCondicionalResult struct {
	Sale          *SaleResponse        `json:"sale,omitempty"`
	Condicional   *CondicionalResponse `json:"updated_condicional,omitempty"`
	ItemsSold     []SoldLineDTO        `json:"items_sold"`
	ItemsReturned []SoldLineDTO        `json:"items_returned"`
	Summary       ConvertSummaryDTO    `json:"summary"`
}

// CondicionalItemResponse línea de condicional en respuestas.
type CondicionalItemResponse struct {
	ID       int64           `json:"id"`
	ItemID   int64           `json:"item_id"`
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// CondicionalResponse representación completa de una condicional.
type CondicionalResponse struct {
	ID         int64                     `json:"id"`
	ClientID   int64                     `json:"client_id"`
	ClientName string                    `json:"client_name,omitempty"`
	ReturnDate time.Time                 `json:"return_date"`
	Returned   bool                      `json:"returned"`
	Notes      string                    `json:"notes,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
	Items      []CondicionalItemResponse `json:"items"`
}

// DeletedCondicionalResult marcador de borrado.
type DeletedCondicionalResult struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}
