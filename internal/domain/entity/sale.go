package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentCash     = "efectivo"
	PaymentCard     = "tarjeta"
	PaymentTransfer = "transferencia"
	PaymentPix      = "pix"
)

// Sale representa una venta cerrada, sea directa o producto de la conversión
// de una condicional. Los montos usan decimal para evitar errores de redondeo.
type Sale struct {
	ID            int64
	ClientName    string
	ClientPhone   string
	PaymentMethod string
	Total         decimal.Decimal
	Discount      decimal.Decimal
	FinalAmount   decimal.Decimal
	Notes         string
	CreatedAt     time.Time

	Items []*SaleItem
}

// SaleItem representa una línea vendida. ItemName y UnitPrice se copian al
// momento de la venta: el registro histórico no cambia si la prenda cambia
// de precio o de nombre después.
type SaleItem struct {
	ID        int64
	SaleID    int64
	ItemID    int64
	ItemName  string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
