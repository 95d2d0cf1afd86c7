package repository

import "github.com/jhoicas/condicional-api/internal/domain/entity"

// ItemRepository define el puerto de persistencia para Item (prendas).
// Usado dentro de transacciones para garantizar consistencia de stock.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id int64) (*entity.Item, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(id int64) (*entity.Item, error)
	// GetByExactName busca por nombre normalizado exacto (trim + lower + sin tildes).
	GetByExactName(name string) (*entity.Item, error)
	// SearchByName busca por subcadena del nombre normalizado, orden por ID ascendente.
	SearchByName(name string) ([]*entity.Item, error)
	List(limit, offset int) ([]*entity.Item, error)
	Update(item *entity.Item) error
	// AdjustQuantity suma delta (puede ser negativo) a la cantidad disponible.
	AdjustQuantity(id int64, delta int) error
	UpdateStatus(id int64, status string) error
	Delete(id int64) error
}
