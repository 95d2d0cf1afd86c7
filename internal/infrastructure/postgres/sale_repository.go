package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/condicional-api/internal/domain/entity"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL
// (usable con pool o tx: la conversión de condicionales crea la venta en tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la venta con sus líneas y asigna los IDs.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	query := `
		INSERT INTO sales (client_name, client_phone, payment_method, total, discount, final_amount, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(context.Background(), query,
		sale.ClientName, sale.ClientPhone, sale.PaymentMethod,
		sale.Total, sale.Discount, sale.FinalAmount, sale.Notes, sale.CreatedAt,
	).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	for _, line := range sale.Items {
		line.SaleID = sale.ID
		err := r.q.QueryRow(context.Background(),
			`INSERT INTO sale_items (sale_id, item_id, item_name, quantity, unit_price, subtotal)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			line.SaleID, line.ItemID, line.ItemName, line.Quantity, line.UnitPrice, line.Subtotal,
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una venta completa (con líneas) por ID.
func (r *SaleRepo) GetByID(id int64) (*entity.Sale, error) {
	query := `
		SELECT id, client_name, client_phone, payment_method, total, discount, final_amount, notes, created_at
		FROM sales WHERE id = $1`
	var s entity.Sale
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.ClientName, &s.ClientPhone, &s.PaymentMethod,
		&s.Total, &s.Discount, &s.FinalAmount, &s.Notes, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadItems(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepo) loadItems(s *entity.Sale) error {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, sale_id, item_id, item_name, quantity, unit_price, subtotal
		 FROM sale_items WHERE sale_id = $1 ORDER BY id ASC`,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("load sale items: %w", err)
	}
	defer rows.Close()
	s.Items = nil
	for rows.Next() {
		var line entity.SaleItem
		if err := rows.Scan(&line.ID, &line.SaleID, &line.ItemID, &line.ItemName,
			&line.Quantity, &line.UnitPrice, &line.Subtotal); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, &line)
	}
	return rows.Err()
}

// List lista ventas con paginación, la más reciente primero.
func (r *SaleRepo) List(limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT id, client_name, client_phone, payment_method, total, discount, final_amount, notes, created_at
		FROM sales ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.ClientName, &s.ClientPhone, &s.PaymentMethod,
			&s.Total, &s.Discount, &s.FinalAmount, &s.Notes, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range list {
		if err := r.loadItems(s); err != nil {
			return nil, err
		}
	}
	return list, nil
}
