package condicional

import (
	"context"

	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// condicionales: toda mutación de stock, líneas y cabecera dentro de una
// operación se confirma o revierte completa.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		condRepo repository.CondicionalRepository,
		itemRepo repository.ItemRepository,
		saleRepo repository.SaleRepository,
		clientRepo repository.ClientRepository,
	) error) error
}
