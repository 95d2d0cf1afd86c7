package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain"
)

// engineError clasifica los errores del motor de condicionales a
// (status HTTP, código de envelope, mensaje). La clasificación es por tipo
// (errors.Is/As sobre los errores de dominio), nunca por contenido del
// mensaje. fallbackCode cubre el error no clasificado de cada operación.
func engineError(err error, fallbackCode string) (int, string, string) {
	var (
		itemNotFound *domain.ItemNotFoundError
		ambiguous    *domain.AmbiguousItemNameError
		noStock      *domain.InsufficientStockError
		notInCond    *domain.ItemNotInCondicionalError
		badReturnQty *domain.InvalidReturnQuantityError
		badSaleQty   *domain.InvalidSaleQuantityError
	)
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return fiber.StatusNotFound, "CLIENT_NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrCondicionalNotFound):
		return fiber.StatusNotFound, "CONDICIONAL_NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrCondicionalReturned):
		return fiber.StatusConflict, "CONDICIONAL_ALREADY_RETURNED", err.Error()
	case errors.Is(err, domain.ErrNoItemsToFinalize):
		return fiber.StatusBadRequest, "NO_ITEMS_TO_FINALIZE", err.Error()
	case errors.Is(err, domain.ErrPastReturnDate):
		return fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.As(err, &itemNotFound):
		return fiber.StatusNotFound, "ITEM_NOT_FOUND", itemNotFound.Error()
	case errors.As(err, &ambiguous):
		return fiber.StatusBadRequest, "AMBIGUOUS_ITEM_NAME",
			fmt.Sprintf("%s: coincidencias %v", ambiguous.Error(), ambiguous.Matches)
	case errors.As(err, &noStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", noStock.Error()
	case errors.As(err, &notInCond):
		return fiber.StatusNotFound, "ITEM_NOT_IN_CONDICIONAL", notInCond.Error()
	case errors.As(err, &badReturnQty):
		return fiber.StatusConflict, "INVALID_RETURN_QUANTITY", badReturnQty.Error()
	case errors.As(err, &badSaleQty):
		return fiber.StatusConflict, "INVALID_QUANTITY", badSaleQty.Error()
	}
	return fiber.StatusInternalServerError, fallbackCode, err.Error()
}

// failEnvelope responde el envelope uniforme de error del motor.
func failEnvelope(c *fiber.Ctx, err error, fallbackCode string) error {
	status, code, msg := engineError(err, fallbackCode)
	return c.Status(status).JSON(dto.Envelope{Success: false, Message: msg, Code: code})
}

// okEnvelope responde el envelope uniforme de éxito del motor.
func okEnvelope(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Message: message, Data: data})
}
