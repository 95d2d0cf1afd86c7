package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	appcond "github.com/jhoicas/condicional-api/internal/application/condicional"
	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// SaleUseCase crea ventas directas (mostrador) y consulta ventas existentes.
// La venta directa descuenta stock en la misma transacción que persiste la
// venta; las ventas por conversión de condicional las crea el motor y no
// pasan por aquí.
type SaleUseCase struct {
	txRunner appcond.TxRunner
	saleRepo repository.SaleRepository
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(txRunner appcond.TxRunner, saleRepo repository.SaleRepository) *SaleUseCase {
	return &SaleUseCase{txRunner: txRunner, saleRepo: saleRepo}
}

// Create registra una venta directa: bloquea cada ítem, verifica stock,
// descuenta y persiste cabecera y líneas en una sola transacción.
func (uc *SaleUseCase) Create(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 || in.PaymentMethod == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Discount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ItemID <= 0 || it.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	var created *entity.Sale

	err := uc.txRunner.Run(ctx, func(
		_ repository.CondicionalRepository,
		itemRepo repository.ItemRepository,
		saleRepo repository.SaleRepository,
		_ repository.ClientRepository,
	) error {
		total := decimal.Zero
		lines := make([]*entity.SaleItem, 0, len(in.Items))
		for _, req := range in.Items {
			item, err := itemRepo.GetForUpdate(req.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return &domain.ItemNotFoundError{ID: req.ItemID}
			}
			if item.Quantity < req.Quantity {
				return &domain.InsufficientStockError{
					ItemName:  item.Name,
					Requested: req.Quantity,
					Available: item.Quantity,
				}
			}
			if err := itemRepo.AdjustQuantity(item.ID, -req.Quantity); err != nil {
				return err
			}
			if item.Quantity == req.Quantity {
				if err := itemRepo.UpdateStatus(item.ID, entity.ItemStatusVendido); err != nil {
					return err
				}
			}
			subtotal := item.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
			total = total.Add(subtotal)
			lines = append(lines, &entity.SaleItem{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Quantity:  req.Quantity,
				UnitPrice: item.Price,
				Subtotal:  subtotal,
			})
		}
		total = total.Round(2)

		created = &entity.Sale{
			ClientName:    in.ClientName,
			ClientPhone:   in.ClientPhone,
			PaymentMethod: in.PaymentMethod,
			Total:         total,
			Discount:      in.Discount,
			FinalAmount:   total.Sub(in.Discount).Round(2),
			Notes:         in.Notes,
			CreatedAt:     now,
			Items:         lines,
		}
		return saleRepo.Create(created)
	})
	if err != nil {
		return nil, err
	}
	return appcond.ToSaleResponse(created), nil
}

// GetByID obtiene una venta por ID.
func (uc *SaleUseCase) GetByID(id int64) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return appcond.ToSaleResponse(sale), nil
}

// GetEntityByID obtiene la entidad venta (para el generador de recibos PDF).
func (uc *SaleUseCase) GetEntityByID(id int64) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// List lista ventas con paginación.
func (uc *SaleUseCase) List(limit, offset int) (*dto.SaleListResponse, error) {
	list, err := uc.saleRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	sales := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		sales = append(sales, *appcond.ToSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Sales: sales,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}
