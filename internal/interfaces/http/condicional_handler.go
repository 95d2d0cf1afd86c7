package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/condicional-api/internal/application/condicional"
	"github.com/jhoicas/condicional-api/internal/application/dto"
)

// CondicionalHandler maneja las peticiones HTTP del motor de condicionales
// (protegido). Todas las respuestas usan el envelope uniforme
// {success, message, code?, data?}.
type CondicionalHandler struct {
	uc      *condicional.CondicionalUseCase
	reports *condicional.ReportUseCase
}

// NewCondicionalHandler construye el handler.
func NewCondicionalHandler(uc *condicional.CondicionalUseCase, reports *condicional.ReportUseCase) *CondicionalHandler {
	return &CondicionalHandler{uc: uc, reports: reports}
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Create godoc
// @Summary      Crear condicional
// @Tags         condicionales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCondicionalRequest  true  "Cliente, fecha de devolución e ítems"
// @Success      201   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/condicionales [post]
func (h *CondicionalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCondicionalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return failEnvelope(c, err, "CREATE_CONDICIONAL_ERROR")
	}
	return okEnvelope(c, fiber.StatusCreated, "condicional creada", out)
}

// GetByID godoc
// @Summary      Obtener condicional por ID
// @Tags         condicionales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la condicional"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/condicionales/{id} [get]
func (h *CondicionalHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "VALIDATION", Message: "id inválido"})
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return failEnvelope(c, err, "GET_CONDICIONAL_ERROR")
	}
	return okEnvelope(c, fiber.StatusOK, "condicional", out)
}

// Update godoc
// @Summary      Actualizar condicional (patch parcial)
// @Tags         condicionales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la condicional"
// @Param        body  body  dto.UpdateCondicionalRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/condicionales/{id} [put]
func (h *CondicionalHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.UpdateCondicionalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return failEnvelope(c, err, "UPDATE_CONDICIONAL_ERROR")
	}
	return okEnvelope(c, fiber.StatusOK, "condicional actualizada", out)
}

// Delete godoc
// @Summary      Eliminar condicional reponiendo stock restante
// @Tags         condicionales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la condicional"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/condicionales/{id} [delete]
func (h *CondicionalHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "VALIDATION", Message: "id inválido"})
	}
	out, err := h.uc.Delete(c.UserContext(), id)
	if err != nil {
		return failEnvelope(c, err, "DELETE_CONDICIONAL_ERROR")
	}
	return okEnvelope(c, fiber.StatusOK, "condicional eliminada", out)
}

// ReturnItem godoc
// @Summary      Devolver unidades de un ítem a stock
// @Tags         condicionales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la condicional"
// @Param        body  body  dto.ReturnItemRequest  true  "item_id y quantity"
// @Success      200   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/condicionales/{id}/return [post]
func (h *CondicionalHandler) ReturnItem(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.ReturnItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.ReturnItem(c.UserContext(), id, in.ItemID, in.Quantity)
	if err != nil {
		return failEnvelope(c, err, "RETURN_ITEM_ERROR")
	}
	return okEnvelope(c, fiber.StatusOK, "devolución registrada", out)
}

// Finalize godoc
// @Summary      Finalizar condicional devolviendo todo el stock restante
// @Tags         condicionales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la condicional"
// @Param        body  body  dto.FinalizeCondicionalRequest  false  "Notas y flag returned"
// @Success      200   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/condicionales/{id}/finalize [post]
func (h *CondicionalHandler) Finalize(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.FinalizeCondicionalRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.uc.Finalize(c.UserContext(), id, in)
	if err != nil {
		// Finalizar dos veces reporta el código propio de finalize.
		status, code, msg := engineError(err, "FINALIZE_CONDICIONAL_ERROR")
		if code == "CONDICIONAL_ALREADY_RETURNED" {
			code = "CONDICIONAL_ALREADY_FINALIZED"
		}
		return c.Status(status).JSON(dto.Envelope{Success: false, Message: msg, Code: code})
	}
	return okEnvelope(c, fiber.StatusOK, "condicional finalizada", out)
}

// Convert godoc
// @Summary      Convertir condicional (total o parcial) en venta
// @Tags         condicionales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la condicional"
// @Param        body  body  dto.ConvertCondicionalRequest  true  "items_sold ('all' o lista), discount, payment_method"
// @Success      200   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/condicionales/{id}/convert [post]
func (h *CondicionalHandler) Convert(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.ConvertCondicionalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.ConvertToSale(c.UserContext(), id, in)
	if err != nil {
		return failEnvelope(c, err, "CONVERT_CONDICIONAL_ERROR")
	}
	if out.AlreadyFinished {
		// No-op idempotente: ya estaba cerrada, éxito sin venta nueva.
		return c.Status(fiber.StatusOK).JSON(dto.Envelope{
			Success: true,
			Message: "la condicional ya estaba finalizada",
			Code:    "CONDICIONAL_ALREADY_FINISHED",
			Data:    out.ConvertCondicionalResult,
		})
	}
	return okEnvelope(c, fiber.StatusOK, "condicional convertida en venta", out.ConvertCondicionalResult)
}

// ── Reportes ──────────────────────────────────────────────────────────────────

// ActiveReport godoc
// @Summary      Reporte de condicionales activas
// @Tags         condicionales
// @Security     Bearer
// @Produce      json
// @Param        client_id     query  int     false  "Filtrar por cliente"
// @Param        date_from     query  string  false  "Fecha devolución desde (2006-01-02)"
// @Param        date_to       query  string  false  "Fecha devolución hasta (2006-01-02)"
// @Param        expired_only  query  bool    false  "Solo vencidas"
// @Success      200  {object}  dto.Envelope
// @Router       /api/condicionales/reports/active [get]
func (h *CondicionalHandler) ActiveReport(c *fiber.Ctx) error {
	filter, err := parseReportFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.reports.ActiveReport(c.UserContext(), filter)
	if err != nil {
		return failEnvelope(c, err, "ACTIVE_REPORT_ERROR")
	}
	return okEnvelope(c, fiber.StatusOK, "reporte de activas", out)
}

// ReturnedReport godoc
// @Summary      Reporte de condicionales devueltas
// @Tags         condicionales
// @Security     Bearer
// @Produce      json
// @Param        client_id  query  int     false  "Filtrar por cliente"
// @Param        date_from  query  string  false  "Fecha creación desde (2006-01-02)"
// @Param        date_to    query  string  false  "Fecha creación hasta (2006-01-02)"
// @Success      200  {object}  dto.Envelope
// @Router       /api/condicionales/reports/returned [get]
func (h *CondicionalHandler) ReturnedReport(c *fiber.Ctx) error {
	filter, err := parseReportFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.reports.ReturnedReport(c.UserContext(), filter)
	if err != nil {
		return failEnvelope(c, err, "RETURNED_REPORT_ERROR")
	}
	return okEnvelope(c, fiber.StatusOK, "reporte de devueltas", out)
}

// Stats godoc
// @Summary      Conteos de condicionales (total, activas, devueltas)
// @Tags         condicionales
// @Security     Bearer
// @Produce      json
// @Param        date_from  query  string  false  "Fecha creación desde (2006-01-02)"
// @Param        date_to    query  string  false  "Fecha creación hasta (2006-01-02)"
// @Success      200  {object}  dto.Envelope
// @Router       /api/condicionales/stats [get]
func (h *CondicionalHandler) Stats(c *fiber.Ctx) error {
	filter, err := parseReportFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Envelope{Success: false, Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.reports.Stats(c.UserContext(), filter)
	if err != nil {
		return failEnvelope(c, err, "STATS_ERROR")
	}
	return okEnvelope(c, fiber.StatusOK, "estadísticas", out)
}
