package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo libro mayor de inventario sobre PostgreSQL (usable con pool o tx).
// La fila por código es el punto de serialización: GetForUpdate debe llamarse
// dentro de una tx antes de cualquier escritura de cantidad.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `code, name, type, quantity, unit, location, safety_threshold, status, updated_at`

// Get obtiene el registro del libro mayor; nil si no existe.
func (r *InventoryRepo) Get(code string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_records WHERE code = $1`
	return r.scanOne(query, code, "get inventory record")
}

// GetForUpdate obtiene el registro bloqueando la fila (SELECT ... FOR UPDATE)
// para serializar escritores concurrentes del mismo código; nil si no existe.
func (r *InventoryRepo) GetForUpdate(code string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_records WHERE code = $1 FOR UPDATE`
	return r.scanOne(query, code, "get inventory record for update")
}

// Upsert inserta o actualiza el registro completo.
func (r *InventoryRepo) Upsert(rec *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (code, name, type, quantity, unit, location, safety_threshold, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (code)
		DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type, quantity = EXCLUDED.quantity,
			unit = EXCLUDED.unit, location = EXCLUDED.location,
			safety_threshold = EXCLUDED.safety_threshold, status = EXCLUDED.status, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		rec.Code, rec.Name, rec.Type, rec.Quantity, rec.Unit, rec.Location, rec.SafetyThreshold, rec.Status,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory record: %w", err)
	}
	return nil
}

// List lista registros, con filtro opcional por código o nombre parcial.
func (r *InventoryRepo) List(ctx context.Context, codeOrName string, limit, offset int) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_records`
	args := []any{}
	pos := 1
	if codeOrName != "" {
		query += fmt.Sprintf(" WHERE code ILIKE $%d OR name ILIKE $%d", pos, pos)
		args = append(args, "%"+codeOrName+"%")
		pos++
	}
	query += fmt.Sprintf(" ORDER BY code LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(&rec.Code, &rec.Name, &rec.Type, &rec.Quantity, &rec.Unit,
			&rec.Location, &rec.SafetyThreshold, &rec.Status, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

func (r *InventoryRepo) scanOne(query, code, op string) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := r.q.QueryRow(context.Background(), query, code).Scan(
		&rec.Code, &rec.Name, &rec.Type, &rec.Quantity, &rec.Unit,
		&rec.Location, &rec.SafetyThreshold, &rec.Status, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rec, nil
}
