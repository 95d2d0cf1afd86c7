package condicional_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// ReturnItem: devolución parcial y total con reposición de stock.
// ──────────────────────────────────────────────────────────────────────────────

func TestReturnItem_ParcialReduceLineaYReponeStock(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 3})
	require.Equal(t, 2, f.item(item.ID).Quantity)

	res, err := f.uc.ReturnItem(context.Background(), cond.ID, item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.QuantityReturned)
	assert.Equal(t, 1, res.RemainingItemCount, "la línea sigue viva con el remanente")

	assert.Equal(t, 4, f.item(item.ID).Quantity)
	assert.Equal(t, entity.ItemStatusCondicional, f.item(item.ID).Status,
		"con remanente en condicional el estado no se restaura")

	after := f.cond(cond.ID)
	require.Len(t, after.Items, 1)
	assert.Equal(t, 1, after.Items[0].Quantity)
	assert.False(t, after.Returned)
	assert.Equal(t, 2, after.ReturnedItems)
	assert.True(t, decimal.NewFromInt(100_000).Equal(after.ReturnedValue),
		"el acumulado suma precio actual × cantidad devuelta")
	assert.Equal(t, 5, f.totalUnits(item.ID), "devolver no crea ni destruye unidades")
}

func TestReturnItem_TotalEliminaLineaYRestauraEstado(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 5)
	otro := f.seedItem("Blusa", 30_000, 2)
	cond := crearCondicional(t, f, client.ID,
		dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 2},
		dto.CondicionalItemRequest{ItemID: otro.ID, Quantity: 1},
	)

	res, err := f.uc.ReturnItem(context.Background(), cond.ID, item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RemainingItemCount)

	assert.Equal(t, 5, f.item(item.ID).Quantity)
	assert.Equal(t, entity.ItemStatusDisponible, f.item(item.ID).Status,
		"al agotarse la línea el ítem recupera su estado previo")

	after := f.cond(cond.ID)
	require.Len(t, after.Items, 1, "la línea agotada desaparece, nunca queda en cero")
	assert.Equal(t, otro.ID, after.Items[0].ItemID)
	assert.False(t, after.Returned, "quedan líneas: la condicional sigue abierta")
}

func TestReturnItem_UltimaLineaCierraLaCondicional(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 2})

	res, err := f.uc.ReturnItem(context.Background(), cond.ID, item.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, res.RemainingItemCount)
	assert.True(t, f.cond(cond.ID).Returned, "sin líneas restantes pasa a devuelta")
}

func TestReturnItem_Errores(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 5)
	ajeno := f.seedItem("Blusa", 30_000, 2)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 2})

	t.Run("cantidad no positiva", func(t *testing.T) {
		_, err := f.uc.ReturnItem(context.Background(), cond.ID, item.ID, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("condicional inexistente", func(t *testing.T) {
		_, err := f.uc.ReturnItem(context.Background(), 999, item.ID, 1)
		assert.ErrorIs(t, err, domain.ErrCondicionalNotFound)
	})

	t.Run("item fuera de la condicional", func(t *testing.T) {
		_, err := f.uc.ReturnItem(context.Background(), cond.ID, ajeno.ID, 1)
		var notIn *domain.ItemNotInCondicionalError
		require.ErrorAs(t, err, &notIn)
		assert.Equal(t, ajeno.ID, notIn.ItemID)
	})

	t.Run("devolver mas de lo retenido", func(t *testing.T) {
		_, err := f.uc.ReturnItem(context.Background(), cond.ID, item.ID, 3)
		var invalid *domain.InvalidReturnQuantityError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 3, invalid.Requested)
		assert.Equal(t, 2, invalid.Held)
		assert.Equal(t, 3, f.item(item.ID).Quantity, "el error no toca el stock")
	})

	t.Run("condicional ya devuelta", func(t *testing.T) {
		_, err := f.uc.ReturnItem(context.Background(), cond.ID, item.ID, 2)
		require.NoError(t, err)
		_, err = f.uc.ReturnItem(context.Background(), cond.ID, item.ID, 1)
		assert.ErrorIs(t, err, domain.ErrCondicionalReturned)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Finalize: devolución total de lo restante en un solo paso.
// ──────────────────────────────────────────────────────────────────────────────

func TestFinalize_ReponeTodoYCierra(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	vestido := f.seedItem("Vestido", 50_000, 5)
	blusa := f.seedItem("Blusa", 30_000, 3)
	cond := crearCondicional(t, f, client.ID,
		dto.CondicionalItemRequest{ItemID: vestido.ID, Quantity: 2},
		dto.CondicionalItemRequest{ItemID: blusa.ID, Quantity: 1},
	)

	resp, err := f.uc.Finalize(context.Background(), cond.ID, dto.FinalizeCondicionalRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Returned)
	assert.Empty(t, resp.Items)

	assert.Equal(t, 5, f.item(vestido.ID).Quantity)
	assert.Equal(t, 3, f.item(blusa.ID).Quantity)
	assert.Equal(t, entity.ItemStatusDisponible, f.item(vestido.ID).Status)
	assert.Equal(t, entity.ItemStatusDisponible, f.item(blusa.ID).Status)

	after := f.cond(cond.ID)
	assert.Equal(t, 3, after.ReturnedItems)
	assert.True(t, decimal.NewFromInt(130_000).Equal(after.ReturnedValue))
}

func TestFinalize_DespuesDeDevolucionParcial(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 3})

	_, err := f.uc.ReturnItem(context.Background(), cond.ID, item.ID, 1)
	require.NoError(t, err)

	_, err = f.uc.Finalize(context.Background(), cond.ID, dto.FinalizeCondicionalRequest{})
	require.NoError(t, err)

	assert.Equal(t, 5, f.item(item.ID).Quantity, "parcial + finalize reponen todo el stock")
	after := f.cond(cond.ID)
	assert.Equal(t, 3, after.ReturnedItems)
	assert.True(t, decimal.NewFromInt(150_000).Equal(after.ReturnedValue))
}

func TestFinalize_AplicaNotasYFlagOpcionales(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})

	notas := "devolvió todo en buen estado"
	resp, err := f.uc.Finalize(context.Background(), cond.ID, dto.FinalizeCondicionalRequest{Notes: &notas})
	require.NoError(t, err)
	assert.Equal(t, notas, resp.Notes)
	assert.True(t, resp.Returned)
}

func TestFinalize_Errores(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})

	t.Run("inexistente", func(t *testing.T) {
		_, err := f.uc.Finalize(context.Background(), 999, dto.FinalizeCondicionalRequest{})
		assert.ErrorIs(t, err, domain.ErrCondicionalNotFound)
	})

	t.Run("ya devuelta", func(t *testing.T) {
		_, err := f.uc.Finalize(context.Background(), cond.ID, dto.FinalizeCondicionalRequest{})
		require.NoError(t, err)
		_, err = f.uc.Finalize(context.Background(), cond.ID, dto.FinalizeCondicionalRequest{})
		assert.ErrorIs(t, err, domain.ErrCondicionalReturned)
	})
}

func TestFinalize_SinLineasEsEstadoDeError(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	cond := &entity.Condicional{ClientID: client.ID}
	require.NoError(t, (&fakeCondRepo{f.store}).Create(cond))

	_, err := f.uc.Finalize(context.Background(), cond.ID, dto.FinalizeCondicionalRequest{})
	assert.ErrorIs(t, err, domain.ErrNoItemsToFinalize,
		"una condicional abierta sin líneas no se auto-devuelve")
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete: borrado con reposición de lo pendiente.
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_ReponeStockPendienteYElimina(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 3})

	res, err := f.uc.Delete(context.Background(), cond.ID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, cond.ID, res.ID)

	assert.Equal(t, 5, f.item(item.ID).Quantity)
	assert.Equal(t, entity.ItemStatusDisponible, f.item(item.ID).Status)
	assert.Nil(t, f.cond(cond.ID))
	assert.Empty(t, f.store.lines)
}

func TestDelete_SobreDevueltaNoTocaStock(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Vestido", 50_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 2})

	_, err := f.uc.Finalize(context.Background(), cond.ID, dto.FinalizeCondicionalRequest{})
	require.NoError(t, err)
	require.Equal(t, 5, f.item(item.ID).Quantity)

	_, err = f.uc.Delete(context.Background(), cond.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, f.item(item.ID).Quantity, "la devuelta no tiene líneas: nada que reponer")
	assert.Nil(t, f.cond(cond.ID))
}

func TestDelete_NoEncontrada(t *testing.T) {
	f := newEngineFixture()
	_, err := f.uc.Delete(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrCondicionalNotFound)
}
