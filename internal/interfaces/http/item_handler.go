package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/application/usecase"
	"github.com/jhoicas/condicional-api/internal/domain"
)

// ItemHandler maneja las peticiones HTTP para prendas (protegido).
type ItemHandler struct {
	uc *usecase.ItemUseCase
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *usecase.ItemUseCase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

// Create godoc
// @Summary      Crear prenda
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos de la prenda"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		return itemError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener prenda por ID
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la prenda"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	out, err := h.uc.GetByID(id)
	if err != nil {
		return itemError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar prendas
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ItemListResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(limit, offset)
	if err != nil {
		return itemError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar prenda (patch parcial)
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la prenda"
// @Param        body  body  dto.UpdateItemRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(id, in)
	if err != nil {
		return itemError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar prenda
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la prenda"
// @Success      204  "Sin contenido"
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	if err := h.uc.Delete(id); err != nil {
		return itemError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func itemError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "prenda no encontrada"})
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case domain.ErrDuplicate:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "la prenda ya existe"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func pageParams(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 20)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ── Imágenes ──────────────────────────────────────────────────────────────────

// ImageHandler maneja las imágenes adjuntas a prendas.
type ImageHandler struct {
	uc *usecase.ImageUseCase
}

// NewImageHandler construye el handler de imágenes.
func NewImageHandler(uc *usecase.ImageUseCase) *ImageHandler {
	return &ImageHandler{uc: uc}
}

// Upload godoc
// @Summary      Subir imagen de una prenda (multipart, campo "file")
// @Tags         items
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      int   true  "ID de la prenda"
// @Param        file  formData  file  true  "Archivo de imagen (jpg, png, webp)"
// @Success      201   {object}  dto.ItemImageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/images [post]
func (h *ImageHandler) Upload(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campo file requerido"})
	}
	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "archivo ilegible"})
	}
	defer src.Close()

	out, err := h.uc.Upload(id, fileHeader.Filename, src)
	if err != nil {
		return imageError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListByItem godoc
// @Summary      Listar imágenes de una prenda
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la prenda"
// @Success      200  {array}  dto.ItemImageResponse
// @Router       /api/items/{id}/images [get]
func (h *ImageHandler) ListByItem(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	out, err := h.uc.ListByItem(id)
	if err != nil {
		return imageError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar imagen
// @Tags         items
// @Security     Bearer
// @Param        id  path  string  true  "ID de la imagen"
// @Success      204  "Sin contenido"
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/images/{id} [delete]
func (h *ImageHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	if err := h.uc.Delete(id); err != nil {
		return imageError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func imageError(c *fiber.Ctx, err error) error {
	var itemNotFound *domain.ItemNotFoundError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "imagen no encontrada"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "extensión de imagen no soportada"})
	case errors.As(err, &itemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "ITEM_NOT_FOUND", Message: itemNotFound.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
