package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/condicional-api/internal/application/condicional"
	"github.com/jhoicas/condicional-api/internal/domain"
	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, name, name_normalized, description, size, color, brand, price, quantity, status, created_at, updated_at`

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
// La columna name_normalized (trim + lower + sin tildes) se mantiene aquí en
// cada insert/update para que las búsquedas por nombre sean consistentes con
// la resolución de ítems del motor.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de persistencia para prendas. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste una nueva prenda y asigna el ID.
func (r *ItemRepo) Create(item *entity.Item) error {
	query := `
		INSERT INTO items (name, name_normalized, description, size, color, brand, price, quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err := r.q.QueryRow(context.Background(), query,
		item.Name, condicional.NormalizeItemName(item.Name), item.Description,
		item.Size, item.Color, item.Brand, item.Price, item.Quantity, item.Status,
		item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene una prenda por ID.
func (r *ItemRepo) GetByID(id int64) (*entity.Item, error) {
	return r.getWhere(`WHERE id = $1`, id)
}

// GetForUpdate obtiene una prenda bloqueando la fila (SELECT FOR UPDATE).
// Solo tiene sentido dentro de una transacción.
func (r *ItemRepo) GetForUpdate(id int64) (*entity.Item, error) {
	return r.getWhere(`WHERE id = $1 FOR UPDATE`, id)
}

// GetByExactName busca por nombre normalizado exacto.
func (r *ItemRepo) GetByExactName(name string) (*entity.Item, error) {
	return r.getWhere(`WHERE name_normalized = $1 ORDER BY id LIMIT 1`, condicional.NormalizeItemName(name))
}

func (r *ItemRepo) getWhere(clause string, arg any) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ` + clause
	var it entity.Item
	var normalized string
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&it.ID, &it.Name, &normalized, &it.Description, &it.Size, &it.Color, &it.Brand,
		&it.Price, &it.Quantity, &it.Status, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

// likeEscaper neutraliza los comodines de LIKE en la entrada del usuario.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByName busca por subcadena del nombre normalizado, orden por ID ascendente.
func (r *ItemRepo) SearchByName(name string) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE name_normalized LIKE '%' || $1 || '%' ORDER BY id ASC`
	rows, err := r.q.Query(context.Background(), query, likeEscaper.Replace(condicional.NormalizeItemName(name)))
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// List lista prendas con paginación, orden por fecha de creación descendente.
func (r *ItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows pgx.Rows) ([]*entity.Item, error) {
	var list []*entity.Item
	for rows.Next() {
		var it entity.Item
		var normalized string
		if err := rows.Scan(&it.ID, &it.Name, &normalized, &it.Description, &it.Size, &it.Color, &it.Brand,
			&it.Price, &it.Quantity, &it.Status, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Update actualiza una prenda existente (incluye stock y estado).
func (r *ItemRepo) Update(item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, name_normalized = $3, description = $4, size = $5, color = $6,
			brand = $7, price = $8, quantity = $9, status = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, condicional.NormalizeItemName(item.Name), item.Description,
		item.Size, item.Color, item.Brand, item.Price, item.Quantity, item.Status, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// AdjustQuantity suma delta (puede ser negativo) a la cantidad disponible.
// La fila debe estar bloqueada por GetForUpdate en la misma transacción.
func (r *ItemRepo) AdjustQuantity(id int64, delta int) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE items SET quantity = quantity + $2, updated_at = now() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust item quantity: %w", err)
	}
	return nil
}

// UpdateStatus actualiza solo el estado de la prenda.
func (r *ItemRepo) UpdateStatus(id int64, status string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE items SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update item status: %w", err)
	}
	return nil
}

// Delete elimina una prenda por ID.
func (r *ItemRepo) Delete(id int64) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
