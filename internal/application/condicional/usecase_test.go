package condicional_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/condicional-api/internal/application/condicional"
	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Create: creación atómica de la condicional con descuento de stock.
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_DescuentaStockYMarcaEstado(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("María Gómez")
	vestido := f.seedItem("Vestido rojo", 50_000, 5)
	blusa := f.seedItem("Blusa blanca", 30_000, 3)

	resp, err := f.uc.Create(context.Background(), dto.CreateCondicionalRequest{
		ClientID:   client.ID,
		ReturnDate: tomorrow(),
		Items: []dto.CondicionalItemRequest{
			{ItemID: vestido.ID, Quantity: 2},
			{ItemID: blusa.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, client.ID, resp.ClientID)
	assert.Equal(t, "María Gómez", resp.ClientName)
	assert.False(t, resp.Returned)
	assert.Len(t, resp.Items, 2)

	assert.Equal(t, 3, f.item(vestido.ID).Quantity, "el stock debe bajar en la cantidad consignada")
	assert.Equal(t, 0, f.item(blusa.ID).Quantity, "consignar todo el stock deja la prenda en cero")
	assert.Equal(t, entity.ItemStatusCondicional, f.item(vestido.ID).Status)
	assert.Equal(t, entity.ItemStatusCondicional, f.item(blusa.ID).Status)

	// La línea guarda el estado previo real para restaurarlo al devolver.
	cond := f.cond(resp.ID)
	require.NotNil(t, cond)
	for _, line := range cond.Items {
		assert.Equal(t, entity.ItemStatusDisponible, line.PreviousStatus)
	}
}

func TestCreate_ResuelveItemPorNombre(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	camison := f.seedItem("Camisón de seda", 80_000, 2)

	resp, err := f.uc.Create(context.Background(), dto.CreateCondicionalRequest{
		ClientID:   client.ID,
		ReturnDate: tomorrow(),
		Items:      []dto.CondicionalItemRequest{{Name: "camison", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, camison.ID, resp.Items[0].ItemID,
		"la búsqueda por nombre debe ignorar tildes y mayúsculas")
	assert.Equal(t, 1, f.item(camison.ID).Quantity)
}

func TestCreate_StockInsuficienteNoDejaCambiosParciales(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	vestido := f.seedItem("Vestido", 50_000, 5)
	blusa := f.seedItem("Blusa", 30_000, 1)

	_, err := f.uc.Create(context.Background(), dto.CreateCondicionalRequest{
		ClientID:   client.ID,
		ReturnDate: tomorrow(),
		Items: []dto.CondicionalItemRequest{
			{ItemID: vestido.ID, Quantity: 2}, // esta línea sí tendría stock
			{ItemID: blusa.ID, Quantity: 4},   // esta no
		},
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Blusa", stockErr.ItemName)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	// Rollback completo: ni stock tocado ni condicional creada.
	assert.Equal(t, 5, f.item(vestido.ID).Quantity)
	assert.Equal(t, 1, f.item(blusa.ID).Quantity)
	assert.Equal(t, entity.ItemStatusDisponible, f.item(vestido.ID).Status)
	assert.Empty(t, f.store.conds)
	assert.Empty(t, f.store.lines)
}

func TestCreate_ClienteInexistente(t *testing.T) {
	f := newEngineFixture()
	item := f.seedItem("Falda", 20_000, 1)

	_, err := f.uc.Create(context.Background(), dto.CreateCondicionalRequest{
		ClientID:   999,
		ReturnDate: tomorrow(),
		Items:      []dto.CondicionalItemRequest{{ItemID: item.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestCreate_FechaDevolucionEnElPasado(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Falda", 20_000, 1)

	ayer := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	_, err := f.uc.Create(context.Background(), dto.CreateCondicionalRequest{
		ClientID:   client.ID,
		ReturnDate: ayer,
		Items:      []dto.CondicionalItemRequest{{ItemID: item.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrPastReturnDate)
}

func TestCreate_FechaDeHoyEsValida(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Falda", 20_000, 1)

	hoy := time.Now().Format("2006-01-02")
	_, err := f.uc.Create(context.Background(), dto.CreateCondicionalRequest{
		ClientID:   client.ID,
		ReturnDate: hoy,
		Items:      []dto.CondicionalItemRequest{{ItemID: item.ID, Quantity: 1}},
	})
	assert.NoError(t, err, "la comparación es solo de fecha: hoy no es pasado")
}

func TestCreate_EntradasInvalidas(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Falda", 20_000, 5)

	casos := []struct {
		nombre string
		req    dto.CreateCondicionalRequest
	}{
		{"sin items", dto.CreateCondicionalRequest{ClientID: client.ID, ReturnDate: tomorrow()}},
		{"cantidad cero", dto.CreateCondicionalRequest{
			ClientID: client.ID, ReturnDate: tomorrow(),
			Items: []dto.CondicionalItemRequest{{ItemID: item.ID, Quantity: 0}},
		}},
		{"cantidad negativa", dto.CreateCondicionalRequest{
			ClientID: client.ID, ReturnDate: tomorrow(),
			Items: []dto.CondicionalItemRequest{{ItemID: item.ID, Quantity: -1}},
		}},
		{"sin id ni nombre", dto.CreateCondicionalRequest{
			ClientID: client.ID, ReturnDate: tomorrow(),
			Items: []dto.CondicionalItemRequest{{Quantity: 1}},
		}},
		{"fecha malformada", dto.CreateCondicionalRequest{
			ClientID: client.ID, ReturnDate: "29/08/2026",
			Items: []dto.CondicionalItemRequest{{ItemID: item.ID, Quantity: 1}},
		}},
		{"cliente cero", dto.CreateCondicionalRequest{
			ReturnDate: tomorrow(),
			Items:      []dto.CondicionalItemRequest{{ItemID: item.ID, Quantity: 1}},
		}},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			_, err := f.uc.Create(context.Background(), tc.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreate_RechazaEntradasDuplicadasDelMismoItem(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	blusa := f.seedItem("Blusa", 30_000, 1)

	// Dos entradas de una unidad pasan el chequeo por entrada pero suman dos
	// sobre un stock de uno: deben rechazarse antes de tocar nada.
	_, err := f.uc.Create(context.Background(), dto.CreateCondicionalRequest{
		ClientID:   client.ID,
		ReturnDate: tomorrow(),
		Items: []dto.CondicionalItemRequest{
			{ItemID: blusa.ID, Quantity: 1},
			{ItemID: blusa.ID, Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, f.item(blusa.ID).Quantity, "el stock no debe quedar tocado")
	assert.Empty(t, f.store.conds)
	assert.Empty(t, f.store.lines)

	// También cuando una entrada va por ID y la otra por nombre y resuelven
	// a la misma prenda.
	_, err = f.uc.Create(context.Background(), dto.CreateCondicionalRequest{
		ClientID:   client.ID,
		ReturnDate: tomorrow(),
		Items: []dto.CondicionalItemRequest{
			{ItemID: blusa.ID, Quantity: 1},
			{Name: "blusa", Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, f.item(blusa.ID).Quantity)
	assert.Empty(t, f.store.conds)
}

func TestCreate_ClienteBorradoAntesDeLaTransaccion(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Falda", 20_000, 2)

	// El cliente desaparece entre la llegada de la petición y la apertura de
	// la transacción: la validación dentro de ella debe verlo.
	uc := condicional.NewCondicionalUseCase(&hookedTxRunner{
		inner:  &fakeTxRunner{f.store},
		before: func() { delete(f.store.clients, client.ID) },
	}, &fakeCondRepo{f.store})

	_, err := uc.Create(context.Background(), dto.CreateCondicionalRequest{
		ClientID:   client.ID,
		ReturnDate: tomorrow(),
		Items:      []dto.CondicionalItemRequest{{ItemID: item.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
	assert.Equal(t, 2, f.item(item.ID).Quantity)
	assert.Empty(t, f.store.conds)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update: patch parcial de la cabecera.
// ──────────────────────────────────────────────────────────────────────────────

func crearCondicional(t *testing.T, f *engineFixture, clientID int64, items ...dto.CondicionalItemRequest) *dto.CondicionalResponse {
	t.Helper()
	resp, err := f.uc.Create(context.Background(), dto.CreateCondicionalRequest{
		ClientID:   clientID,
		ReturnDate: tomorrow(),
		Items:      items,
	})
	require.NoError(t, err)
	return resp
}

func TestUpdate_PatchParcialSoloCambiaCamposPresentes(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Falda", 20_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})

	notas := "cliente pidió más plazo"
	resp, err := f.uc.Update(context.Background(), cond.ID, dto.UpdateCondicionalRequest{Notes: &notas})
	require.NoError(t, err)
	assert.Equal(t, notas, resp.Notes)
	assert.Equal(t, client.ID, resp.ClientID, "los campos ausentes no cambian")
	assert.Equal(t, cond.ReturnDate, resp.ReturnDate)
}

func TestUpdate_CambioDeClienteValidaExistencia(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	otro := f.seedClient("Lucía")
	item := f.seedItem("Falda", 20_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})

	nuevoID := strconv.FormatInt(otro.ID, 10)
	resp, err := f.uc.Update(context.Background(), cond.ID, dto.UpdateCondicionalRequest{ClientID: &nuevoID})
	require.NoError(t, err)
	assert.Equal(t, otro.ID, resp.ClientID)

	inexistente := "999"
	_, err = f.uc.Update(context.Background(), cond.ID, dto.UpdateCondicionalRequest{ClientID: &inexistente})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)

	basura := "abc"
	_, err = f.uc.Update(context.Background(), cond.ID, dto.UpdateCondicionalRequest{ClientID: &basura})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdate_RechazaFechaPasadaYCondicionalDevuelta(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Falda", 20_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})

	ayer := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	_, err := f.uc.Update(context.Background(), cond.ID, dto.UpdateCondicionalRequest{ReturnDate: &ayer})
	assert.ErrorIs(t, err, domain.ErrPastReturnDate)

	// Devolver todo y reintentar: estado terminal.
	_, err = f.uc.ReturnItem(context.Background(), cond.ID, item.ID, 1)
	require.NoError(t, err)
	notas := "tarde"
	_, err = f.uc.Update(context.Background(), cond.ID, dto.UpdateCondicionalRequest{Notes: &notas})
	assert.ErrorIs(t, err, domain.ErrCondicionalReturned)
}

func TestUpdate_CierreConcurrenteGanaALaEdicion(t *testing.T) {
	f := newEngineFixture()
	client := f.seedClient("Ana")
	item := f.seedItem("Falda", 20_000, 5)
	cond := crearCondicional(t, f, client.ID, dto.CondicionalItemRequest{ItemID: item.ID, Quantity: 1})

	// Otra petición devuelve la condicional justo antes de que la edición
	// abra su transacción: la relectura con bloqueo debe ver el cierre.
	uc := condicional.NewCondicionalUseCase(&hookedTxRunner{
		inner:  &fakeTxRunner{f.store},
		before: func() { f.store.conds[cond.ID].Returned = true },
	}, &fakeCondRepo{f.store})

	notas := "tarde"
	_, err := uc.Update(context.Background(), cond.ID, dto.UpdateCondicionalRequest{Notes: &notas})
	assert.ErrorIs(t, err, domain.ErrCondicionalReturned)
	assert.Empty(t, f.cond(cond.ID).Notes, "la edición no debe persistir nada")
}

func TestUpdate_NoEncontrada(t *testing.T) {
	f := newEngineFixture()
	notas := "x"
	_, err := f.uc.Update(context.Background(), 42, dto.UpdateCondicionalRequest{Notes: &notas})
	assert.ErrorIs(t, err, domain.ErrCondicionalNotFound)
}

func TestGetByID_NoEncontrada(t *testing.T) {
	f := newEngineFixture()
	_, err := f.uc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrCondicionalNotFound)
}
