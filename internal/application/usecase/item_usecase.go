package usecase

import (
	"time"

	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// ItemUseCase casos de uso CRUD para prendas. El stock se descuenta y repone
// vía el motor de condicionales y ventas, no por edición directa salvo ajuste
// explícito de inventario.
type ItemUseCase struct {
	repo repository.ItemRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{repo: repo}
}

// Create crea una prenda. El estado inicial es disponible.
func (uc *ItemUseCase) Create(in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.Name == "" || in.Quantity < 0 || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.Item{
		Name:        in.Name,
		Description: in.Description,
		Size:        in.Size,
		Color:       in.Color,
		Brand:       in.Brand,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Status:      entity.ItemStatusDisponible,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene una prenda por ID.
func (uc *ItemUseCase) GetByID(id int64) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return toItemResponse(item), nil
}

// Update aplica un patch parcial a una prenda.
func (uc *ItemUseCase) Update(id int64, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Size != nil {
		item.Size = *in.Size
	}
	if in.Color != nil {
		item.Color = *in.Color
	}
	if in.Brand != nil {
		item.Brand = *in.Brand
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		item.Price = *in.Price
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, domain.ErrInvalidInput
		}
		item.Quantity = *in.Quantity
	}
	if in.Status != nil {
		switch *in.Status {
		case entity.ItemStatusDisponible, entity.ItemStatusCondicional, entity.ItemStatusVendido:
			item.Status = *in.Status
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// List lista prendas con paginación.
func (uc *ItemUseCase) List(limit, offset int) (*dto.ItemListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina una prenda por ID.
func (uc *ItemUseCase) Delete(id int64) error {
	return uc.repo.Delete(id)
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Size:        it.Size,
		Color:       it.Color,
		Brand:       it.Brand,
		Price:       it.Price,
		Quantity:    it.Quantity,
		Status:      it.Status,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}
