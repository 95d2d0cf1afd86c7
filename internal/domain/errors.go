package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists     = errors.New("el email ya está registrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrClientNotFound         = errors.New("cliente no encontrado")
	ErrCondicionalNotFound    = errors.New("condicional no encontrada")
	ErrCondicionalReturned    = errors.New("la condicional ya fue devuelta")
	ErrNoItemsToFinalize      = errors.New("la condicional no tiene ítems para finalizar")
	ErrPastReturnDate         = errors.New("la fecha de devolución no puede ser anterior a hoy")
)

// Los errores con datos estructurados llevan tipo propio en lugar de mensajes
// interpolados: el borde HTTP los clasifica con errors.As y arma el mensaje
// con los campos, sin inspeccionar strings.

// ItemNotFoundError indica que el ítem referenciado no existe, identificando
// si la búsqueda fue por ID o por nombre.
type ItemNotFoundError struct {
	ID   int64  // 0 si la búsqueda fue por nombre
	Name string // vacío si la búsqueda fue por ID
}

func (e *ItemNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("ítem %q no encontrado", e.Name)
	}
	return fmt.Sprintf("ítem %d no encontrado", e.ID)
}

// AmbiguousItemNameError indica que una búsqueda parcial por nombre produjo
// más de una coincidencia. Matches viene ordenado por ID ascendente.
type AmbiguousItemNameError struct {
	Name    string
	Matches []int64
}

func (e *AmbiguousItemNameError) Error() string {
	return fmt.Sprintf("el nombre %q coincide con %d ítems", e.Name, len(e.Matches))
}

// InsufficientStockError indica stock insuficiente para consignar o vender.
type InsufficientStockError struct {
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: solicitado %d, disponible %d",
		e.ItemName, e.Requested, e.Available)
}

// ItemNotInCondicionalError indica que el ítem no es línea de la condicional.
type ItemNotInCondicionalError struct {
	CondicionalID int64
	ItemID        int64
}

func (e *ItemNotInCondicionalError) Error() string {
	return fmt.Sprintf("el ítem %d no está en la condicional %d", e.ItemID, e.CondicionalID)
}

// InvalidReturnQuantityError indica una devolución mayor que la cantidad retenida.
type InvalidReturnQuantityError struct {
	Requested int
	Held      int
}

func (e *InvalidReturnQuantityError) Error() string {
	return fmt.Sprintf("cantidad a devolver inválida: solicitado %d, retenido %d", e.Requested, e.Held)
}

// InvalidSaleQuantityError indica una conversión que excede la cantidad retenida.
type InvalidSaleQuantityError struct {
	ItemName  string
	Requested int
	Available int
}

func (e *InvalidSaleQuantityError) Error() string {
	return fmt.Sprintf("cantidad inválida para %q: solicitado %d, disponible en condicional %d",
		e.ItemName, e.Requested, e.Available)
}
