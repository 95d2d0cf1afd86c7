package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/condicional-api/internal/domain/entity"
)

// CondicionalFilter filtros comunes de consulta para condicionales.
// Los punteros nil significan "sin filtro".
type CondicionalFilter struct {
	ClientID    *int64
	DateFrom    *time.Time
	DateTo      *time.Time
	ExpiredOnly bool // solo reporte de activas
}

// CondicionalRepository define el puerto de persistencia del agregado
// Condicional y sus líneas. Las mutaciones de líneas y de la cabecera se
// llaman siempre dentro de la transacción del motor (TxRunner).
type CondicionalRepository interface {
	// Create persiste la cabecera y asigna el ID.
	Create(cond *entity.Condicional) error
	// GetByID carga la condicional con cliente y líneas (con su ítem) eager.
	GetByID(id int64) (*entity.Condicional, error)
	// GetForUpdate como GetByID pero bloqueando la cabecera (SELECT FOR UPDATE).
	GetForUpdate(id int64) (*entity.Condicional, error)
	Update(cond *entity.Condicional) error
	SetReturned(id int64, returned bool) error
	// AccumulateReturned suma cantidad y valor devueltos a los acumulados
	// de la cabecera (misma transacción que la reposición de stock).
	AccumulateReturned(id int64, quantity int, value decimal.Decimal) error
	Delete(id int64) error

	// AddItem persiste una línea y asigna su ID.
	AddItem(line *entity.CondicionalItem) error
	UpdateItemQuantity(lineID int64, quantity int) error
	DeleteItem(lineID int64) error

	// ListActive devuelve condicionales con returned = false, orden por
	// fecha de devolución ascendente (la más próxima primero).
	ListActive(filter CondicionalFilter) ([]*entity.Condicional, error)
	// ListReturned devuelve condicionales con returned = true, orden por
	// fecha de creación descendente.
	ListReturned(filter CondicionalFilter) ([]*entity.Condicional, error)
	// CountByStatus devuelve (total, activas, devueltas) según el rango de fechas de creación.
	CountByStatus(filter CondicionalFilter) (total, active, returned int, err error)
}
