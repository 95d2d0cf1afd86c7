package condicional

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// ReturnItem devuelve quantity unidades de un ítem a stock. Si la devolución
// agota la línea, la fila se elimina (nunca queda en cero); si tras la
// operación no quedan líneas, la condicional pasa a returned = true.
func (uc *CondicionalUseCase) ReturnItem(ctx context.Context, condID, itemID int64, quantity int) (*dto.ReturnItemResult, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var result *dto.ReturnItemResult
	err := uc.txRunner.Run(ctx, func(
		condRepo repository.CondicionalRepository,
		itemRepo repository.ItemRepository,
		_ repository.SaleRepository,
		_ repository.ClientRepository,
	) error {
		cond, err := condRepo.GetForUpdate(condID)
		if err != nil {
			return err
		}
		if cond == nil {
			return domain.ErrCondicionalNotFound
		}
		if cond.Returned {
			return domain.ErrCondicionalReturned
		}
		line := cond.FindItem(itemID)
		if line == nil {
			return &domain.ItemNotInCondicionalError{CondicionalID: condID, ItemID: itemID}
		}
		if quantity > line.Quantity {
			return &domain.InvalidReturnQuantityError{Requested: quantity, Held: line.Quantity}
		}

		item, err := itemRepo.GetForUpdate(itemID)
		if err != nil {
			return err
		}

		remaining := len(cond.Items)
		if quantity == line.Quantity {
			if err := condRepo.DeleteItem(line.ID); err != nil {
				return err
			}
			// La línea desaparece: el ítem recupera su estado previo real.
			if err := itemRepo.UpdateStatus(itemID, line.PreviousStatus); err != nil {
				return err
			}
			remaining--
		} else {
			if err := condRepo.UpdateItemQuantity(line.ID, line.Quantity-quantity); err != nil {
				return err
			}
		}
		if err := itemRepo.AdjustQuantity(itemID, quantity); err != nil {
			return err
		}
		if err := condRepo.AccumulateReturned(condID, quantity, returnedValue(item, quantity)); err != nil {
			return err
		}
		if remaining == 0 {
			if err := condRepo.SetReturned(condID, true); err != nil {
				return err
			}
		}
		result = &dto.ReturnItemResult{QuantityReturned: quantity, RemainingItemCount: remaining}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Finalize devuelve a stock todas las líneas restantes y cierra la
// condicional. Una condicional vacía pero no devuelta es un estado de error,
// no se auto-devuelve. Returned permite forzar el flag (por defecto true).
func (uc *CondicionalUseCase) Finalize(ctx context.Context, id int64, in dto.FinalizeCondicionalRequest) (*dto.CondicionalResponse, error) {
	var finalized *entity.Condicional
	err := uc.txRunner.Run(ctx, func(
		condRepo repository.CondicionalRepository,
		itemRepo repository.ItemRepository,
		_ repository.SaleRepository,
		_ repository.ClientRepository,
	) error {
		cond, err := condRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if cond == nil {
			return domain.ErrCondicionalNotFound
		}
		if cond.Returned {
			return domain.ErrCondicionalReturned
		}
		if len(cond.Items) == 0 {
			return domain.ErrNoItemsToFinalize
		}

		for _, line := range cond.Items {
			item, err := itemRepo.GetForUpdate(line.ItemID)
			if err != nil {
				return err
			}
			if err := itemRepo.AdjustQuantity(line.ItemID, line.Quantity); err != nil {
				return err
			}
			if err := itemRepo.UpdateStatus(line.ItemID, line.PreviousStatus); err != nil {
				return err
			}
			if err := condRepo.AccumulateReturned(id, line.Quantity, returnedValue(item, line.Quantity)); err != nil {
				return err
			}
			if err := condRepo.DeleteItem(line.ID); err != nil {
				return err
			}
		}

		returned := true
		if in.Returned != nil {
			returned = *in.Returned
		}
		if err := condRepo.SetReturned(id, returned); err != nil {
			return err
		}
		if in.Notes != nil {
			cond.Notes = *in.Notes
			cond.Returned = returned
			cond.UpdatedAt = time.Now()
			if err := condRepo.Update(cond); err != nil {
				return err
			}
		}

		finalized, err = condRepo.GetByID(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToCondicionalResponse(finalized), nil
}

// Delete elimina la condicional reponiendo el stock de las líneas restantes.
// Sobre una condicional ya devuelta no hay líneas, así que la reposición es
// un no-op seguro y solo cae la fila.
func (uc *CondicionalUseCase) Delete(ctx context.Context, id int64) (*dto.DeletedCondicionalResult, error) {
	err := uc.txRunner.Run(ctx, func(
		condRepo repository.CondicionalRepository,
		itemRepo repository.ItemRepository,
		_ repository.SaleRepository,
		_ repository.ClientRepository,
	) error {
		cond, err := condRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if cond == nil {
			return domain.ErrCondicionalNotFound
		}
		for _, line := range cond.Items {
			if err := itemRepo.AdjustQuantity(line.ItemID, line.Quantity); err != nil {
				return err
			}
			if err := itemRepo.UpdateStatus(line.ItemID, line.PreviousStatus); err != nil {
				return err
			}
			if err := condRepo.DeleteItem(line.ID); err != nil {
				return err
			}
		}
		return condRepo.Delete(id)
	})
	if err != nil {
		return nil, err
	}
	return &dto.DeletedCondicionalResult{ID: id, Deleted: true}, nil
}

// returnedValue calcula el valor repuesto (precio actual × cantidad) para los
// acumulados del reporte de devueltas.
func returnedValue(item *entity.Item, quantity int) decimal.Decimal {
	if item == nil {
		return decimal.Zero
	}
	return item.Price.Mul(decimal.NewFromInt(int64(quantity)))
}
