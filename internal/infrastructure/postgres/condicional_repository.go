package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

var _ repository.CondicionalRepository = (*CondicionalRepo)(nil)

const condColumns = `id, client_id, return_date, returned, notes, returned_items, returned_value, created_at, updated_at`

// CondicionalRepo implementación del puerto CondicionalRepository sobre
// PostgreSQL (usable con pool o tx). Carga el agregado completo: cabecera,
// cliente y líneas con su ítem.
type CondicionalRepo struct {
	q Querier
}

// NewCondicionalRepository construye el adaptador de persistencia para condicionales.
func NewCondicionalRepository(q Querier) *CondicionalRepo {
	return &CondicionalRepo{q: q}
}

// Create persiste la cabecera y asigna el ID.
func (r *CondicionalRepo) Create(cond *entity.Condicional) error {
	query := `
		INSERT INTO condicionais (client_id, return_date, returned, notes, returned_items, returned_value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(context.Background(), query,
		cond.ClientID, cond.ReturnDate, cond.Returned, cond.Notes,
		cond.ReturnedItems, cond.ReturnedValue, cond.CreatedAt, cond.UpdatedAt,
	).Scan(&cond.ID)
	if err != nil {
		return fmt.Errorf("insert condicional: %w", err)
	}
	return nil
}

// GetByID carga la condicional con cliente y líneas eager.
func (r *CondicionalRepo) GetByID(id int64) (*entity.Condicional, error) {
	return r.get(id, false)
}

// GetForUpdate como GetByID pero bloqueando la cabecera (SELECT FOR UPDATE).
// Solo tiene sentido dentro de una transacción.
func (r *CondicionalRepo) GetForUpdate(id int64) (*entity.Condicional, error) {
	return r.get(id, true)
}

func (r *CondicionalRepo) get(id int64, forUpdate bool) (*entity.Condicional, error) {
	query := `SELECT ` + condColumns + ` FROM condicionais WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var c entity.Condicional
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.ClientID, &c.ReturnDate, &c.Returned, &c.Notes,
		&c.ReturnedItems, &c.ReturnedValue, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get condicional: %w", err)
	}
	if err := r.loadRelations(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// loadRelations carga cliente y líneas (con su ítem) de la condicional.
func (r *CondicionalRepo) loadRelations(c *entity.Condicional) error {
	var cl entity.Client
	err := r.q.QueryRow(context.Background(),
		`SELECT id, name, phone, email, address, created_at, updated_at FROM clients WHERE id = $1`,
		c.ClientID,
	).Scan(&cl.ID, &cl.Name, &cl.Phone, &cl.Email, &cl.Address, &cl.CreatedAt, &cl.UpdatedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("load condicional client: %w", err)
	}
	if err == nil {
		c.Client = &cl
	}

	query := `
		SELECT ci.id, ci.condicional_id, ci.item_id, ci.quantity, ci.previous_status, ci.created_at,
		       i.id, i.name, i.description, i.size, i.color, i.brand, i.price, i.quantity, i.status, i.created_at, i.updated_at
		FROM condicional_items ci
		JOIN items i ON i.id = ci.item_id
		WHERE ci.condicional_id = $1
		ORDER BY ci.id ASC`
	rows, err := r.q.Query(context.Background(), query, c.ID)
	if err != nil {
		return fmt.Errorf("load condicional items: %w", err)
	}
	defer rows.Close()
	c.Items = nil
	for rows.Next() {
		var line entity.CondicionalItem
		var it entity.Item
		if err := rows.Scan(
			&line.ID, &line.CondicionalID, &line.ItemID, &line.Quantity, &line.PreviousStatus, &line.CreatedAt,
			&it.ID, &it.Name, &it.Description, &it.Size, &it.Color, &it.Brand, &it.Price, &it.Quantity, &it.Status, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scan condicional item: %w", err)
		}
		line.Item = &it
		c.Items = append(c.Items, &line)
	}
	return rows.Err()
}

// Update actualiza los campos editables de la cabecera.
func (r *CondicionalRepo) Update(cond *entity.Condicional) error {
	query := `
		UPDATE condicionais SET client_id = $2, return_date = $3, notes = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		cond.ID, cond.ClientID, cond.ReturnDate, cond.Notes, cond.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update condicional: %w", err)
	}
	return nil
}

// SetReturned marca la condicional como devuelta (o la reactiva).
func (r *CondicionalRepo) SetReturned(id int64, returned bool) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE condicionais SET returned = $2, updated_at = now() WHERE id = $1`,
		id, returned,
	)
	if err != nil {
		return fmt.Errorf("set condicional returned: %w", err)
	}
	return nil
}

// AccumulateReturned suma cantidad y valor devueltos a los acumulados de la cabecera.
func (r *CondicionalRepo) AccumulateReturned(id int64, quantity int, value decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE condicionais SET returned_items = returned_items + $2, returned_value = returned_value + $3, updated_at = now() WHERE id = $1`,
		id, quantity, value,
	)
	if err != nil {
		return fmt.Errorf("accumulate condicional returned: %w", err)
	}
	return nil
}

// Delete elimina la cabecera. Las líneas caen por ON DELETE CASCADE.
func (r *CondicionalRepo) Delete(id int64) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM condicionais WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete condicional: %w", err)
	}
	return nil
}

// AddItem persiste una línea y asigna su ID.
func (r *CondicionalRepo) AddItem(line *entity.CondicionalItem) error {
	query := `
		INSERT INTO condicional_items (condicional_id, item_id, quantity, previous_status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(context.Background(), query,
		line.CondicionalID, line.ItemID, line.Quantity, line.PreviousStatus, line.CreatedAt,
	).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("insert condicional item: %w", err)
	}
	return nil
}

// UpdateItemQuantity fija la cantidad retenida de una línea. Nunca se deja
// en cero: la línea se elimina al llegar a cero.
func (r *CondicionalRepo) UpdateItemQuantity(lineID int64, quantity int) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE condicional_items SET quantity = $2 WHERE id = $1`,
		lineID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update condicional item quantity: %w", err)
	}
	return nil
}

// DeleteItem elimina una línea por su ID.
func (r *CondicionalRepo) DeleteItem(lineID int64) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM condicional_items WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("delete condicional item: %w", err)
	}
	return nil
}

// ListActive devuelve condicionales no devueltas, la fecha de devolución más
// próxima primero. DateFrom/DateTo filtran sobre return_date.
func (r *CondicionalRepo) ListActive(filter repository.CondicionalFilter) ([]*entity.Condicional, error) {
	query := `SELECT ` + condColumns + ` FROM condicionais WHERE returned = false`
	args := []any{}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND return_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND return_date <= $%d", len(args))
	}
	query += ` ORDER BY return_date ASC, id ASC`
	return r.list(query, args)
}

// ListReturned devuelve condicionales devueltas, la más reciente primero.
// DateFrom/DateTo filtran sobre created_at.
func (r *CondicionalRepo) ListReturned(filter repository.CondicionalFilter) ([]*entity.Condicional, error) {
	query := `SELECT ` + condColumns + ` FROM condicionais WHERE returned = true`
	args := []any{}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND created_at < $%d + interval '1 day'", len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	return r.list(query, args)
}

func (r *CondicionalRepo) list(query string, args []any) ([]*entity.Condicional, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list condicionais: %w", err)
	}
	defer rows.Close()
	var list []*entity.Condicional
	for rows.Next() {
		var c entity.Condicional
		if err := rows.Scan(&c.ID, &c.ClientID, &c.ReturnDate, &c.Returned, &c.Notes,
			&c.ReturnedItems, &c.ReturnedValue, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan condicional: %w", err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range list {
		if err := r.loadRelations(c); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// CountByStatus devuelve (total, activas, devueltas) según el rango de fechas de creación.
func (r *CondicionalRepo) CountByStatus(filter repository.CondicionalFilter) (total, active, returned int, err error) {
	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE returned = false),
		       count(*) FILTER (WHERE returned = true)
		FROM condicionais WHERE true`
	args := []any{}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND created_at < $%d + interval '1 day'", len(args))
	}
	if err := r.q.QueryRow(context.Background(), query, args...).Scan(&total, &active, &returned); err != nil {
		return 0, 0, 0, fmt.Errorf("count condicionais: %w", err)
	}
	return total, active, returned, nil
}
