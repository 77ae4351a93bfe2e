package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo cantidades por (producto, lote) sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `product_code, lot_code, quantity, unit, warehouse, storage_location, status, created_at, updated_at`

// Get obtiene el lote; nil si no existe.
func (r *LotRepo) Get(productCode, lotCode string) (*entity.LotRecord, error) {
	query := `SELECT ` + lotColumns + ` FROM inventory_lots WHERE product_code = $1 AND lot_code = $2`
	return r.scanOne(query, productCode, lotCode, "get lot")
}

// GetForUpdate obtiene el lote bloqueando la fila; nil si no existe.
func (r *LotRepo) GetForUpdate(productCode, lotCode string) (*entity.LotRecord, error) {
	query := `SELECT ` + lotColumns + ` FROM inventory_lots WHERE product_code = $1 AND lot_code = $2 FOR UPDATE`
	return r.scanOne(query, productCode, lotCode, "get lot for update")
}

// Upsert inserta o actualiza el lote. Los lotes en cero no se eliminan.
func (r *LotRepo) Upsert(lot *entity.LotRecord) error {
	query := `
		INSERT INTO inventory_lots (product_code, lot_code, quantity, unit, warehouse, storage_location, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (product_code, lot_code)
		DO UPDATE SET quantity = EXCLUDED.quantity, unit = EXCLUDED.unit,
			warehouse = EXCLUDED.warehouse, storage_location = EXCLUDED.storage_location,
			status = EXCLUDED.status, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		lot.ProductCode, lot.LotCode, lot.Quantity, lot.Unit, lot.Warehouse,
		lot.StorageLocation, lot.Status, lot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert lot: %w", err)
	}
	return nil
}

// ListByProduct lista los lotes de un producto, históricos en cero incluidos.
func (r *LotRepo) ListByProduct(productCode string) ([]*entity.LotRecord, error) {
	query := `SELECT ` + lotColumns + ` FROM inventory_lots WHERE product_code = $1 ORDER BY created_at, lot_code`
	rows, err := r.q.Query(context.Background(), query, productCode)
	if err != nil {
		return nil, fmt.Errorf("list lots by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.LotRecord
	for rows.Next() {
		var lot entity.LotRecord
		if err := rows.Scan(&lot.ProductCode, &lot.LotCode, &lot.Quantity, &lot.Unit,
			&lot.Warehouse, &lot.StorageLocation, &lot.Status, &lot.CreatedAt, &lot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &lot)
	}
	return list, rows.Err()
}

func (r *LotRepo) scanOne(query, productCode, lotCode, op string) (*entity.LotRecord, error) {
	var lot entity.LotRecord
	err := r.q.QueryRow(context.Background(), query, productCode, lotCode).Scan(
		&lot.ProductCode, &lot.LotCode, &lot.Quantity, &lot.Unit,
		&lot.Warehouse, &lot.StorageLocation, &lot.Status, &lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &lot, nil
}
