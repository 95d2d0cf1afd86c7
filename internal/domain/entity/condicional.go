package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Condicional representa un préstamo temporal de prendas a un cliente,
// pendiente de venta o devolución. Es la raíz del agregado: las líneas
// (CondicionalItem) le pertenecen en exclusiva.
//
// Invariante: Returned == true implica cero líneas asociadas; una condicional
// devuelta no admite update/return/finalize (solo delete).
type Condicional struct {
	ID         int64
	ClientID   int64
	ReturnDate time.Time
	Returned   bool
	Notes      string
	// Acumulados de devolución: cantidad y valor repuestos a stock por
	// return/finalize/delete. Se actualizan en la misma transacción que
	// repone el stock; la conversión a venta no los toca. Las líneas se
	// eliminan al llegar a cero, así que el reporte de devueltas deriva
	// sus totales de estos campos.
	ReturnedItems int
	ReturnedValue decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Relaciones cargadas eager por el repositorio.
	Client *Client
	Items  []*CondicionalItem
}

// RemainingQuantity suma las cantidades retenidas en todas las líneas.
func (c *Condicional) RemainingQuantity() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// FindItem devuelve la línea del ítem indicado, o nil si no está en la condicional.
func (c *Condicional) FindItem(itemID int64) *CondicionalItem {
	for _, it := range c.Items {
		if it.ItemID == itemID {
			return it
		}
	}
	return nil
}

// CondicionalItem representa una línea (ítem, cantidad) dentro de una condicional.
// Quantity > 0 mientras la fila exista; al llegar a cero la fila se elimina,
// nunca se deja en cero. PreviousStatus guarda el estado real del ítem antes
// de entrar en condicional, para restaurarlo en la devolución.
type CondicionalItem struct {
	ID             int64
	CondicionalID  int64
	ItemID         int64
	Quantity       int
	PreviousStatus string
	CreatedAt      time.Time

	Item *Item
}
