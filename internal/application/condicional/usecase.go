package condicional

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// CondicionalUseCase es el motor del ciclo de vida de condicionales: crea,
// actualiza, devuelve, finaliza, elimina y convierte a venta manteniendo el
// stock consistente en cada transición. Cada operación mutadora corre en una
// sola transacción (TxRunner) con Commit/Rollback y bloqueo de fila
// (SELECT FOR UPDATE) sobre los ítems afectados.
type CondicionalUseCase struct {
	txRunner TxRunner
	condRepo repository.CondicionalRepository
}

// NewCondicionalUseCase construye el caso de uso. condRepo va atado al pool
// (lecturas fuera de transacción); las validaciones de las mutaciones usan los
// repos de la transacción.
func NewCondicionalUseCase(
	txRunner TxRunner,
	condRepo repository.CondicionalRepository,
) *CondicionalUseCase {
	return &CondicionalUseCase{txRunner: txRunner, condRepo: condRepo}
}

// ── Política de fechas ────────────────────────────────────────────────────────
// Todas las comparaciones "no en el pasado" son solo de fecha calendario:
// ambos lados truncados a medianoche local, sin tolerancia de hora.

// DateOnly trunca un instante a su fecha calendario (medianoche local).
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today devuelve la fecha calendario de hoy.
func Today() time.Time {
	return DateOnly(time.Now())
}

// ParseDate interpreta una fecha "2006-01-02".
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// Create crea una condicional con sus líneas en una sola transacción:
// valida el cliente, resuelve cada ítem (por ID o nombre), verifica stock
// suficiente, crea cabecera y líneas y descuenta stock. Cada línea guarda el
// estado previo real del ítem para restaurarlo en la devolución.
func (uc *CondicionalUseCase) Create(ctx context.Context, in dto.CreateCondicionalRequest) (*dto.CondicionalResponse, error) {
	if in.ClientID <= 0 || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	returnDate, err := ParseDate(in.ReturnDate)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if DateOnly(returnDate).Before(Today()) {
		return nil, domain.ErrPastReturnDate
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if it.ItemID <= 0 && strings.TrimSpace(it.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	var created *entity.Condicional

	err = uc.txRunner.Run(ctx, func(
		condRepo repository.CondicionalRepository,
		itemRepo repository.ItemRepository,
		_ repository.SaleRepository,
		clientRepo repository.ClientRepository,
	) error {
		client, err := clientRepo.GetByID(in.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return domain.ErrClientNotFound
		}

		// Resolver y bloquear todos los ítems antes de mutar nada. Dos
		// entradas que resuelvan al mismo ítem se rechazan: el chequeo de
		// stock es por entrada y no puede validar la suma.
		type plan struct {
			item *entity.Item
			qty  int
		}
		plans := make([]plan, 0, len(in.Items))
		seen := make(map[int64]bool, len(in.Items))
		for _, it := range in.Items {
			resolved, err := ResolveItem(itemRepo, ItemRef{ID: it.ItemID, Name: it.Name})
			if err != nil {
				return err
			}
			if seen[resolved.ID] {
				return domain.ErrInvalidInput
			}
			seen[resolved.ID] = true
			item, err := itemRepo.GetForUpdate(resolved.ID)
			if err != nil {
				return err
			}
			if item == nil {
				return &domain.ItemNotFoundError{ID: resolved.ID}
			}
			if item.Quantity < it.Quantity {
				return &domain.InsufficientStockError{
					ItemName:  item.Name,
					Requested: it.Quantity,
					Available: item.Quantity,
				}
			}
			plans = append(plans, plan{item: item, qty: it.Quantity})
		}

		cond := &entity.Condicional{
			ClientID:   in.ClientID,
			ReturnDate: DateOnly(returnDate),
			Notes:      in.Notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := condRepo.Create(cond); err != nil {
			return err
		}
		for _, p := range plans {
			line := &entity.CondicionalItem{
				CondicionalID:  cond.ID,
				ItemID:         p.item.ID,
				Quantity:       p.qty,
				PreviousStatus: p.item.Status,
				CreatedAt:      now,
			}
			if err := condRepo.AddItem(line); err != nil {
				return err
			}
			if err := itemRepo.AdjustQuantity(p.item.ID, -p.qty); err != nil {
				return err
			}
			if err := itemRepo.UpdateStatus(p.item.ID, entity.ItemStatusCondicional); err != nil {
				return err
			}
		}

		created, err = condRepo.GetByID(cond.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToCondicionalResponse(created), nil
}

// Update aplica un patch parcial a la cabecera: solo los campos presentes
// cambian. Rechaza condicionales ya devueltas y fechas en el pasado. El ciclo
// leer-validar-escribir corre en una sola transacción con la cabecera
// bloqueada, para que un cierre concurrente no se cuele entre el chequeo de
// estado y la escritura.
func (uc *CondicionalUseCase) Update(ctx context.Context, id int64, in dto.UpdateCondicionalRequest) (*dto.CondicionalResponse, error) {
	var updated *entity.Condicional
	err := uc.txRunner.Run(ctx, func(
		condRepo repository.CondicionalRepository,
		_ repository.ItemRepository,
		_ repository.SaleRepository,
		clientRepo repository.ClientRepository,
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

		if in.ClientID != nil {
			clientID, err := strconv.ParseInt(strings.TrimSpace(*in.ClientID), 10, 64)
			if err != nil || clientID <= 0 {
				return domain.ErrInvalidInput
			}
			client, err := clientRepo.GetByID(clientID)
			if err != nil {
				return err
			}
			if client == nil {
				return domain.ErrClientNotFound
			}
			cond.ClientID = clientID
		}
		if in.ReturnDate != nil {
			returnDate, err := ParseDate(*in.ReturnDate)
			if err != nil {
				return domain.ErrInvalidInput
			}
			if DateOnly(returnDate).Before(Today()) {
				return domain.ErrPastReturnDate
			}
			cond.ReturnDate = DateOnly(returnDate)
		}
		if in.Notes != nil {
			cond.Notes = *in.Notes
		}
		cond.UpdatedAt = time.Now()

		if err := condRepo.Update(cond); err != nil {
			return err
		}
		updated, err = condRepo.GetByID(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToCondicionalResponse(updated), nil
}

// GetByID carga una condicional con cliente y líneas.
func (uc *CondicionalUseCase) GetByID(ctx context.Context, id int64) (*dto.CondicionalResponse, error) {
	cond, err := uc.condRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cond == nil {
		return nil, domain.ErrCondicionalNotFound
	}
	return ToCondicionalResponse(cond), nil
}

// ── Mapeo entidad → DTO ───────────────────────────────────────────────────────

// ToCondicionalResponse mapea la entidad con sus relaciones cargadas.
func ToCondicionalResponse(c *entity.Condicional) *dto.CondicionalResponse {
	if c == nil {
		return nil
	}
	resp := &dto.CondicionalResponse{
		ID:         c.ID,
		ClientID:   c.ClientID,
		ReturnDate: c.ReturnDate,
		Returned:   c.Returned,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		Items:      make([]dto.CondicionalItemResponse, 0, len(c.Items)),
	}
	if c.Client != nil {
		resp.ClientName = c.Client.Name
	}
	for _, line := range c.Items {
		item := dto.CondicionalItemResponse{
			ID:       line.ID,
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		}
		if line.Item != nil {
			item.ItemName = line.Item.Name
			item.Price = line.Item.Price
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

// ToSaleResponse mapea una venta con sus líneas.
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	if s == nil {
		return nil
	}
	resp := &dto.SaleResponse{
		ID:            s.ID,
		ClientName:    s.ClientName,
		ClientPhone:   s.ClientPhone,
		PaymentMethod: s.PaymentMethod,
		Total:         s.Total,
		Discount:      s.Discount,
		FinalAmount:   s.FinalAmount,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
	}
	for _, line := range s.Items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:        line.ID,
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
	}
	return resp
}
