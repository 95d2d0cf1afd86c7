package repository

import "github.com/jhoicas/condicional-api/internal/domain/entity"

// ItemImageRepository define el puerto de persistencia para imágenes de ítems.
// El archivo físico vive en el storage local; aquí solo los metadatos.
type ItemImageRepository interface {
	Create(img *entity.ItemImage) error
	GetByID(id string) (*entity.ItemImage, error)
	ListByItem(itemID int64) ([]*entity.ItemImage, error)
	Delete(id string) error
}
