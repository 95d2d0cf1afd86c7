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

// ConvertResult envuelve el resultado de la conversión. AlreadyFinished marca
// el no-op idempotente sobre una condicional ya cerrada: a diferencia del
// resto de operaciones no es un error duro, el borde HTTP responde éxito con
// código CONDICIONAL_ALREADY_FINISHED.
type ConvertResult struct {
	dto.ConvertCondicionalResult
	AlreadyFinished bool
}

// ConvertToSale convierte parte o todas las líneas de la condicional en una
// venta, en una sola transacción. El stock vendido salió del inventario al
// crear la condicional y NO se repone: la mercancía vendida abandona el
// inventario de forma permanente. Las líneas no mencionadas quedan intactas;
// las vendidas parcialmente retienen el remanente; si no queda ninguna, la
// condicional pasa a returned = true sin reponer stock.
func (uc *CondicionalUseCase) ConvertToSale(ctx context.Context, condID int64, in dto.ConvertCondicionalRequest) (*ConvertResult, error) {
	if !in.ItemsSold.All && len(in.ItemsSold.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.PaymentMethod == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Discount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var result *ConvertResult
	err := uc.txRunner.Run(ctx, func(
		condRepo repository.CondicionalRepository,
		itemRepo repository.ItemRepository,
		saleRepo repository.SaleRepository,
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
			// Idempotente: ya estaba cerrada, no hay nada que vender.
			result = &ConvertResult{
				ConvertCondicionalResult: dto.ConvertCondicionalResult{
					Condicional:   ToCondicionalResponse(cond),
					ItemsSold:     []dto.SoldLineDTO{},
					ItemsReturned: []dto.SoldLineDTO{},
				},
				AlreadyFinished: true,
			}
			return nil
		}

		// Resolver las líneas vendidas contra las líneas actuales.
		type soldPlan struct {
			line *entity.CondicionalItem
			qty  int
		}
		var plans []soldPlan
		if in.ItemsSold.All {
			for _, line := range cond.Items {
				plans = append(plans, soldPlan{line: line, qty: line.Quantity})
			}
		} else {
			// Entradas duplicadas para el mismo ítem se rechazan: resolverían
			// a la misma línea y duplicarían venta y conteo de restantes.
			seen := make(map[int64]bool, len(in.ItemsSold.Items))
			for _, req := range in.ItemsSold.Items {
				if req.Quantity <= 0 {
					return domain.ErrInvalidInput
				}
				if seen[req.ItemID] {
					return domain.ErrInvalidInput
				}
				seen[req.ItemID] = true
				line := cond.FindItem(req.ItemID)
				if line == nil {
					return &domain.ItemNotInCondicionalError{CondicionalID: condID, ItemID: req.ItemID}
				}
				if req.Quantity > line.Quantity {
					name := ""
					if line.Item != nil {
						name = line.Item.Name
					}
					return &domain.InvalidSaleQuantityError{
						ItemName:  name,
						Requested: req.Quantity,
						Available: line.Quantity,
					}
				}
				plans = append(plans, soldPlan{line: line, qty: req.Quantity})
			}
		}

		now := time.Now()
		total := decimal.Zero
		soldLines := make([]dto.SoldLineDTO, 0, len(plans))
		saleItems := make([]*entity.SaleItem, 0, len(plans))
		for _, p := range plans {
			price := decimal.Zero
			name := ""
			if p.line.Item != nil {
				price = p.line.Item.Price
				name = p.line.Item.Name
			}
			subtotal := price.Mul(decimal.NewFromInt(int64(p.qty)))
			total = total.Add(subtotal)
			soldLines = append(soldLines, dto.SoldLineDTO{
				ItemID:    p.line.ItemID,
				ItemName:  name,
				Quantity:  p.qty,
				UnitPrice: price,
				Subtotal:  subtotal,
			})
			saleItems = append(saleItems, &entity.SaleItem{
				ItemID:    p.line.ItemID,
				ItemName:  name,
				Quantity:  p.qty,
				UnitPrice: price,
				Subtotal:  subtotal,
			})
		}
		total = total.Round(2)
		finalAmount := total.Sub(in.Discount).Round(2)

		sale := &entity.Sale{
			PaymentMethod: in.PaymentMethod,
			Total:         total,
			Discount:      in.Discount,
			FinalAmount:   finalAmount,
			Notes:         in.Notes,
			CreatedAt:     now,
			Items:         saleItems,
		}
		if cond.Client != nil {
			sale.ClientName = cond.Client.Name
			sale.ClientPhone = cond.Client.Phone
		}
		if err := saleRepo.Create(sale); err != nil {
			return err
		}

		// Aplicar la venta a las líneas. Sin reposición de stock: lo vendido
		// sale del inventario de forma permanente.
		remaining := len(cond.Items)
		for _, p := range plans {
			if p.qty == p.line.Quantity {
				if err := condRepo.DeleteItem(p.line.ID); err != nil {
					return err
				}
				remaining--
				item, err := itemRepo.GetForUpdate(p.line.ItemID)
				if err != nil {
					return err
				}
				if item != nil {
					status := p.line.PreviousStatus
					if item.Quantity == 0 {
						status = entity.ItemStatusVendido
					}
					if err := itemRepo.UpdateStatus(item.ID, status); err != nil {
						return err
					}
				}
			} else {
				if err := condRepo.UpdateItemQuantity(p.line.ID, p.line.Quantity-p.qty); err != nil {
					return err
				}
			}
		}

		finalizedCond := remaining == 0
		if finalizedCond {
			if err := condRepo.SetReturned(condID, true); err != nil {
				return err
			}
		}

		updated, err := condRepo.GetByID(condID)
		if err != nil {
			return err
		}
		result = &ConvertResult{
			ConvertCondicionalResult: dto.ConvertCondicionalResult{
				Sale:          ToSaleResponse(sale),
				Condicional:   ToCondicionalResponse(updated),
				ItemsSold:     soldLines,
				ItemsReturned: []dto.SoldLineDTO{}, // la conversión jamás repone stock
				Summary: dto.ConvertSummaryDTO{
					Total:                total,
					Discount:             in.Discount,
					FinalAmount:          finalAmount,
					CondicionalFinalized: finalizedCond,
				},
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
