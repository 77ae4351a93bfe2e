package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura del maestro de productos sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByCode obtiene un producto por código; nil si no existe.
func (r *ProductRepo) GetByCode(code string) (*entity.Product, error) {
	query := `
		SELECT code, name, type, unit, price, safety_threshold, status, created_at, updated_at
		FROM products WHERE code = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, code).Scan(
		&p.Code, &p.Name, &p.Type, &p.Unit, &p.Price, &p.SafetyThreshold, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
