package condicional

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// ReportUseCase deriva reportes y estadísticas del estado persistido del
// motor. Solo lectura: todo campo derivado (días restantes, estado, totales)
// se recalcula en cada consulta, sin caché ni materialización.
type ReportUseCase struct {
	condRepo repository.CondicionalRepository
}

// NewReportUseCase construye el caso de uso de reportes.
func NewReportUseCase(condRepo repository.CondicionalRepository) *ReportUseCase {
	return &ReportUseCase{condRepo: condRepo}
}

// ActiveReport lista las condicionales con returned = false, ordenadas por
// fecha de devolución ascendente (la más próxima a vencer primero).
// days_remaining y status usan solo fechas calendario: vencida si la fecha de
// devolución es anterior a hoy.
func (uc *ReportUseCase) ActiveReport(ctx context.Context, filter repository.CondicionalFilter) (*dto.ActiveReportResponse, error) {
	conds, err := uc.condRepo.ListActive(filter)
	if err != nil {
		return nil, err
	}

	today := Today()
	resp := &dto.ActiveReportResponse{
		Condicionales: make([]dto.ActiveCondicionalDTO, 0, len(conds)),
		Stats:         dto.ActiveReportStats{TotalValue: decimal.Zero},
	}
	for _, cond := range conds {
		days := daysBetween(today, DateOnly(cond.ReturnDate))
		status := "active"
		if days < 0 {
			status = "expired"
		}
		if filter.ExpiredOnly && status != "expired" {
			continue
		}

		itemCount := 0
		totalValue := decimal.Zero
		items := make([]dto.CondicionalItemResponse, 0, len(cond.Items))
		for _, line := range cond.Items {
			itemCount += line.Quantity
			lineItem := dto.CondicionalItemResponse{
				ID:       line.ID,
				ItemID:   line.ItemID,
				Quantity: line.Quantity,
			}
			if line.Item != nil {
				lineItem.ItemName = line.Item.Name
				lineItem.Price = line.Item.Price
				totalValue = totalValue.Add(line.Item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			}
			items = append(items, lineItem)
		}

		row := dto.ActiveCondicionalDTO{
			ID:            cond.ID,
			ClientID:      cond.ClientID,
			CreatedAt:     cond.CreatedAt,
			ReturnDate:    cond.ReturnDate,
			DaysRemaining: days,
			Status:        status,
			ItemCount:     itemCount,
			TotalValue:    totalValue,
			Items:         items,
		}
		if cond.Client != nil {
			row.ClientName = cond.Client.Name
		}
		resp.Condicionales = append(resp.Condicionales, row)

		resp.Stats.Count++
		resp.Stats.TotalItems += itemCount
		resp.Stats.TotalValue = resp.Stats.TotalValue.Add(totalValue)
		if status == "expired" {
			resp.Stats.ExpiredCount++
		} else if days <= 7 {
			resp.Stats.DueWithin7Day++
		}
	}
	return resp, nil
}

// ReturnedReport lista las condicionales devueltas, ordenadas por fecha de
// creación descendente. Los totales derivan de los acumulados de devolución
// de la cabecera (las líneas ya no existen al estar devuelta).
func (uc *ReportUseCase) ReturnedReport(ctx context.Context, filter repository.CondicionalFilter) (*dto.ReturnedReportResponse, error) {
	conds, err := uc.condRepo.ListReturned(filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReturnedReportResponse{
		Condicionales: make([]dto.ReturnedCondicionalDTO, 0, len(conds)),
		Stats:         dto.ReturnedReportStats{TotalValueReturned: decimal.Zero},
	}
	for _, cond := range conds {
		row := dto.ReturnedCondicionalDTO{
			ID:            cond.ID,
			ClientID:      cond.ClientID,
			CreatedAt:     cond.CreatedAt,
			ReturnDate:    cond.ReturnDate,
			Notes:         cond.Notes,
			ItemsReturned: cond.ReturnedItems,
			ValueReturned: cond.ReturnedValue,
		}
		if cond.Client != nil {
			row.ClientName = cond.Client.Name
		}
		resp.Condicionales = append(resp.Condicionales, row)

		resp.Stats.Count++
		resp.Stats.TotalItemsReturned += cond.ReturnedItems
		resp.Stats.TotalValueReturned = resp.Stats.TotalValueReturned.Add(cond.ReturnedValue)
	}
	return resp, nil
}

// Stats devuelve conteos simples (total, activas, devueltas), filtrables por
// rango de fecha de creación.
func (uc *ReportUseCase) Stats(ctx context.Context, filter repository.CondicionalFilter) (*dto.CondicionalStatsResponse, error) {
	total, active, returned, err := uc.condRepo.CountByStatus(filter)
	if err != nil {
		return nil, err
	}
	return &dto.CondicionalStatsResponse{Total: total, Active: active, Returned: returned}, nil
}

// daysBetween cuenta días calendario entre from y to (negativo si to < from).
// Ambas fechas se proyectan a medianoche UTC antes de restar: un día con
// cambio de horario dura 23 o 25 horas y la división por 24h lo contaría mal.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}
