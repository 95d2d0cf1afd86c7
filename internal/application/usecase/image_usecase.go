package usecase

import (
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/condicional-api/internal/application/dto"
	"github.com/jhoicas/condicional-api/internal/domain"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// ImageStorage puerto de almacenamiento físico de imágenes (disco local).
type ImageStorage interface {
	Save(storedName string, src io.Reader) (int64, error)
	Remove(storedName string) error
	// PublicURL devuelve la ruta pública desde la que se sirve el archivo.
	PublicURL(storedName string) string
}

// Extensiones de imagen aceptadas.
var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ImageUseCase adjunta imágenes a prendas: archivo en storage local,
// metadatos en la base.
type ImageUseCase struct {
	imageRepo repository.ItemImageRepository
	itemRepo  repository.ItemRepository
	storage   ImageStorage
}

// NewImageUseCase construye el caso de uso.
func NewImageUseCase(imageRepo repository.ItemImageRepository, itemRepo repository.ItemRepository, storage ImageStorage) *ImageUseCase {
	return &ImageUseCase{imageRepo: imageRepo, itemRepo: itemRepo, storage: storage}
}

// Upload guarda el archivo con nombre UUID (conservando la extensión) y
// persiste los metadatos. Falla si el ítem no existe o la extensión no es de imagen.
func (uc *ImageUseCase) Upload(itemID int64, filename string, src io.Reader) (*dto.ItemImageResponse, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedImageExt[ext] {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &domain.ItemNotFoundError{ID: itemID}
	}

	img := &entity.ItemImage{
		ID:         uuid.New().String(),
		ItemID:     itemID,
		Filename:   filename,
		StoredName: uuid.New().String() + ext,
		CreatedAt:  time.Now(),
	}
	size, err := uc.storage.Save(img.StoredName, src)
	if err != nil {
		return nil, err
	}
	img.SizeBytes = size
	if err := uc.imageRepo.Create(img); err != nil {
		// Metadatos fallaron: no dejar el archivo huérfano.
		_ = uc.storage.Remove(img.StoredName)
		return nil, err
	}
	return uc.toResponse(img), nil
}

// ListByItem lista las imágenes de una prenda.
func (uc *ImageUseCase) ListByItem(itemID int64) ([]dto.ItemImageResponse, error) {
	list, err := uc.imageRepo.ListByItem(itemID)
	if err != nil {
		return nil, err
	}
	images := make([]dto.ItemImageResponse, 0, len(list))
	for _, img := range list {
		images = append(images, *uc.toResponse(img))
	}
	return images, nil
}

// Delete borra metadatos y archivo.
func (uc *ImageUseCase) Delete(id string) error {
	img, err := uc.imageRepo.GetByID(id)
	if err != nil {
		return err
	}
	if img == nil {
		return domain.ErrNotFound
	}
	if err := uc.imageRepo.Delete(id); err != nil {
		return err
	}
	return uc.storage.Remove(img.StoredName)
}

func (uc *ImageUseCase) toResponse(img *entity.ItemImage) *dto.ItemImageResponse {
	return &dto.ItemImageResponse{
		ID:        img.ID,
		ItemID:    img.ItemID,
		Filename:  img.Filename,
		URL:       uc.storage.PublicURL(img.StoredName),
		SizeBytes: img.SizeBytes,
		CreatedAt: img.CreatedAt,
	}
}
