package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

var _ repository.ItemImageRepository = (*ItemImageRepo)(nil)

// ItemImageRepo implementación del puerto ItemImageRepository sobre PostgreSQL.
type ItemImageRepo struct {
	pool *pgxpool.Pool
}

// NewItemImageRepository construye el adaptador de persistencia para imágenes.
func NewItemImageRepository(pool *pgxpool.Pool) *ItemImageRepo {
	return &ItemImageRepo{pool: pool}
}

// Create persiste los metadatos de una imagen.
func (r *ItemImageRepo) Create(img *entity.ItemImage) error {
	query := `
		INSERT INTO item_images (id, item_id, filename, stored_name, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(context.Background(), query,
		img.ID, img.ItemID, img.Filename, img.StoredName, img.SizeBytes, img.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item image: %w", err)
	}
	return nil
}

// GetByID obtiene los metadatos de una imagen por ID.
func (r *ItemImageRepo) GetByID(id string) (*entity.ItemImage, error) {
	query := `SELECT id, item_id, filename, stored_name, size_bytes, created_at FROM item_images WHERE id = $1`
	var img entity.ItemImage
	err := r.pool.QueryRow(context.Background(), query, id).Scan(
		&img.ID, &img.ItemID, &img.Filename, &img.StoredName, &img.SizeBytes, &img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item image: %w", err)
	}
	return &img, nil
}

// ListByItem lista las imágenes de una prenda, la más antigua primero.
func (r *ItemImageRepo) ListByItem(itemID int64) ([]*entity.ItemImage, error) {
	query := `SELECT id, item_id, filename, stored_name, size_bytes, created_at FROM item_images WHERE item_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(context.Background(), query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list item images: %w", err)
	}
	defer rows.Close()
	var list []*entity.ItemImage
	for rows.Next() {
		var img entity.ItemImage
		if err := rows.Scan(&img.ID, &img.ItemID, &img.Filename, &img.StoredName, &img.SizeBytes, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item image: %w", err)
		}
		list = append(list, &img)
	}
	return list, rows.Err()
}

// Delete elimina los metadatos de una imagen por ID.
func (r *ItemImageRepo) Delete(id string) error {
	_, err := r.pool.Exec(context.Background(), `DELETE FROM item_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item image: %w", err)
	}
	return nil
}
