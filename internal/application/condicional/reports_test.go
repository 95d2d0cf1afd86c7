package condicional_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Reportes: derivados del estado persistido, recalculados en cada consulta.
// ──────────────────────────────────────────────────────────────────────────────

// setReturnDate retrocede la fecha de devolución directamente en el almacén,
// porque Create rechaza fechas en el pasado.
func setReturnDate(f *engineFixture, condID int64, date time.Time) {
	f.store.conds[condID].ReturnDate = date
}

func TestActiveReport_DiasRestantesYEstado(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 10)

	proxima := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 2})
	vencida := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})
	lejana := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 3})

	hoy := time.Now()
	setReturnDate(f, proxima.ID, hoy.AddDate(0, 0, 3))
	setReturnDate(f, vencida.ID, hoy.AddDate(0, 0, -2))
	setReturnDate(f, lejana.ID, hoy.AddDate(0, 0, 30))

	resp, err := f.reports.ActiveReport(context.Background(), repository.CondicionalFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Condicionales, 3)

	// Orden por fecha de devolución ascendente: la vencida primero.
	assert.Equal(t, vencida.ID, resp.Condicionales[0].ID)
	assert.Equal(t, proxima.ID, resp.Condicionales[1].ID)
	assert.Equal(t, lejana.ID, resp.Condicionales[2].ID)

	assert.Equal(t, "expired", resp.Condicionales[0].Status)
	assert.Equal(t, -2, resp.Condicionales[0].DaysRemaining)
	assert.Equal(t, "active", resp.Condicionales[1].Status)
	assert.Equal(t, 3, resp.Condicionales[1].DaysRemaining)
	assert.Equal(t, 30, resp.Condicionales[2].DaysRemaining)

	// Valor retenido por condicional: cantidad × precio actual.
	assert.Equal(t, 2, resp.Condicionales[1].ItemCount)
	assert.True(t, decimal.NewFromInt(100_000).Equal(resp.Condicionales[1].TotalValue))

	assert.Equal(t, 3, resp.Stats.Count)
	assert.Equal(t, 6, resp.Stats.TotalItems)
	assert.True(t, decimal.NewFromInt(300_000).Equal(resp.Stats.TotalValue))
	assert.Equal(t, 1, resp.Stats.ExpiredCount)
	assert.Equal(t, 1, resp.Stats.DueWithin7Day, "solo la que vence en 3 días cuenta como próxima")
}

func TestActiveReport_ExcluyeDevueltasYFiltraVencidas(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 10)

	abierta := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})
	cerrada := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})
	_, err := f.uc.Finalize(context.Background(), cerrada.ID, dto.FinalizeCondicionalRequest{})
	require.NoError(t, err)

	resp, err := f.reports.ActiveReport(context.Background(), repository.CondicionalFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Condicionales, 1)
	assert.Equal(t, abierta.ID, resp.Condicionales[0].ID)

	// expired_only con todo vigente: reporte vacío.
	resp, err = f.reports.ActiveReport(context.Background(), repository.CondicionalFilter{ExpiredOnly: true})
	require.NoError(t, err)
	assert.Empty(t, resp.Condicionales)
	assert.Equal(t, 0, resp.Stats.Count)

	setReturnDate(f, abierta.ID, time.Now().AddDate(0, 0, -1))
	resp, err = f.reports.ActiveReport(context.Background(), repository.CondicionalFilter{ExpiredOnly: true})
	require.NoError(t, err)
	require.Len(t, resp.Condicionales, 1)
	assert.Equal(t, "expired", resp.Condicionales[0].Status)
}

func TestActiveReport_FiltroPorCliente(t *testing.T) {
	f := newEngineFixture()
	ana := f.seedClient("Ana")
	lucia := f.seedClient("Lucía")
	item := f.seedItem("Vestido", 50_000, 10)

	deAna := crearCondicional(t, f, ana.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})
	crearCondicional(t, f, lucia.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})

	resp, err := f.reports.ActiveReport(context.Background(), repository.CondicionalFilter{ClientID: &ana.ID})
	require.NoError(t, err)
	require.Len(t, resp.Condicionales, 1)
	assert.Equal(t, deAna.ID, resp.Condicionales[0].ID)
	assert.Equal(t, "Ana", resp.Condicionales[0].ClientName)
}

func TestReturnedReport_TotalesDesdeAcumulados(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	vestido := f.seedItem("Vestido", 50_000, 10)
	blusa := f.seedItem("Blusa", 30_000, 5)

	// Una devuelta por finalize, otra por devoluciones parciales sucesivas.
	primera := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: vestido.ID, Quantity: 2})
	_, err := f.uc.Finalize(context.Background(), primera.ID, dto.FinalizeCondicionalRequest{})
	require.NoError(t, err)

	segunda := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: blusa.ID, Quantity: 3})
	_, err = f.uc.ReturnItem(context.Background(), segunda.ID, blusa.ID, 1)
	require.NoError(t, err)
	_, err = f.uc.ReturnItem(context.Background(), segunda.ID, blusa.ID, 2)
	require.NoError(t, err)

	// Una abierta que no debe aparecer.
	crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: vestido.ID, Quantity: 1})

	resp, err := f.reports.ReturnedReport(context.Background(), repository.CondicionalFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Condicionales, 2)

	porID := map[int64]dto.ReturnedCondicionalDTO{}
	for _, row := range resp.Condicionales {
		porID[row.ID] = row
	}
	assert.Equal(t, 2, porID[primera.ID].ItemsReturned)
	assert.True(t, decimal.NewFromInt(100_000).Equal(porID[primera.ID].ValueReturned))
	assert.Equal(t, 3, porID[segunda.ID].ItemsReturned,
		"los acumulados suman las devoluciones parciales")
	assert.True(t, decimal.NewFromInt(90_000).Equal(porID[segunda.ID].ValueReturned))

	assert.Equal(t, 2, resp.Stats.Count)
	assert.Equal(t, 5, resp.Stats.TotalItemsReturned)
	assert.True(t, decimal.NewFromInt(190_000).Equal(resp.Stats.TotalValueReturned))
}

func TestStats_Conteos(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 10)

	crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})
	crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})
	cerrada := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})
	_, err := f.uc.Finalize(context.Background(), cerrada.ID, dto.FinalizeCondicionalRequest{})
	require.NoError(t, err)

	stats, err := f.reports.Stats(context.Background(), repository.CondicionalFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Returned)
}
