package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados válidos de un ítem (prenda). El estado se persiste y se restaura
// al valor previo real cuando el ítem vuelve de una condicional; nunca se
// asume un valor por defecto global.
const (
	ItemStatusDisponible  = "disponible"
	ItemStatusCondicional = "condicional"
	ItemStatusVendido     = "vendido"
)

// Item representa una prenda del inventario. Quantity es el stock disponible;
// se descuenta al crear una condicional y se repone al devolver, finalizar o
// eliminar (nunca al convertir en venta).
type Item struct {
	ID          int64
	Name        string
	Description string
	Size        string
	Color       string
	Brand       string
	Price       decimal.Decimal
	Quantity    int
	Status      string // ver constantes ItemStatus*
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
