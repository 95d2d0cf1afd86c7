package repository

import "github.com/jhoicas/condicional-api/internal/domain/entity"

// SaleRepository define el puerto de persistencia para ventas.
// Create se invoca también dentro de la transacción de conversión de una
// condicional, por lo que la implementación debe ser usable con pool o tx.
type SaleRepository interface {
	// Create persiste la venta con sus líneas y asigna los IDs.
	Create(sale *entity.Sale) error
	GetByID(id int64) (*entity.Sale, error)
	List(limit, offset int) ([]*entity.Sale, error)
}
