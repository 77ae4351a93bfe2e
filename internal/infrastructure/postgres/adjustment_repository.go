package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yms2/mes-core/internal/domain"
	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo log de ajustes append-only sobre PostgreSQL (usable con pool o tx).
// Solo INSERT y SELECT: las entradas nunca se actualizan ni se borran.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

const adjustmentColumns = `id, inventory_code, name, type, before_quantity, after_quantity, quantity_change, reason, status, error_message, created_by, created_at`

// Create agrega una entrada al log (write-once).
func (r *AdjustmentRepo) Create(entry *entity.AdjustmentEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_adjustments (` + adjustmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	errorMessage := (*string)(nil)
	if entry.ErrorMessage != "" {
		errorMessage = &entry.ErrorMessage
	}
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.InventoryCode, entry.Name, entry.Type,
		entry.BeforeQuantity, entry.AfterQuantity, entry.QuantityChange,
		entry.Reason, entry.Status, errorMessage, entry.CreatedBy, entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create adjustment entry: %w", err)
	}
	return nil
}

// List consulta entradas con filtros y paginación, más recientes primero.
func (r *AdjustmentRepo) List(ctx context.Context, filter repository.AdjustmentFilter, limit, offset int) ([]*entity.AdjustmentEntry, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM inventory_adjustments`
	where, args := buildAdjustmentWhere(filter)
	query += where
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.AdjustmentEntry
	for rows.Next() {
		entry, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}

// Statistics agregados del log para el filtro dado. La suma y el promedio solo
// consideran entradas SUCCESS; los conteos distinguen por estado.
func (r *AdjustmentRepo) Statistics(ctx context.Context, filter repository.AdjustmentFilter) (*repository.AdjustmentStatistics, error) {
	query := `
		SELECT
			COUNT(*)                                                                AS total,
			COALESCE(SUM(quantity_change) FILTER (WHERE status = 'SUCCESS'), 0)     AS total_changed,
			COALESCE(AVG(quantity_change) FILTER (WHERE status = 'SUCCESS'), 0)     AS avg_change,
			COUNT(*) FILTER (WHERE status = 'SUCCESS')                              AS success_count,
			COUNT(*) FILTER (WHERE status = 'FAILED')                               AS failure_count
		FROM inventory_adjustments`
	where, args := buildAdjustmentWhere(filter)
	query += where

	var stats repository.AdjustmentStatistics
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&stats.Count, &stats.TotalChanged, &stats.AvgChange, &stats.SuccessCount, &stats.FailureCount,
	)
	if err != nil {
		return nil, fmt.Errorf("adjustment statistics: %w", err)
	}
	return &stats, nil
}

// ListForPeriod entradas SUCCESS dentro de [from, to], en orden cronológico
// ascendente (desempate por id para entradas con el mismo instante).
func (r *AdjustmentRepo) ListForPeriod(ctx context.Context, from, to time.Time, code string) ([]*entity.AdjustmentEntry, error) {
	query := `
		SELECT ` + adjustmentColumns + `
		FROM inventory_adjustments
		WHERE status = 'SUCCESS' AND created_at >= $1 AND created_at <= $2`
	args := []any{from, to}
	if code != "" {
		query += " AND inventory_code = $3"
		args = append(args, code)
	}
	query += " ORDER BY created_at, id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list adjustments for period: %w", err)
	}
	defer rows.Close()
	var list []*entity.AdjustmentEntry
	for rows.Next() {
		entry, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}

// LastSuccessBefore última AfterQuantity SUCCESS por código, estrictamente
// anterior a before. Códigos sin entradas previas no aparecen en el mapa.
func (r *AdjustmentRepo) LastSuccessBefore(ctx context.Context, before time.Time, code string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT DISTINCT ON (inventory_code) inventory_code, after_quantity
		FROM inventory_adjustments
		WHERE status = 'SUCCESS' AND created_at < $1`
	args := []any{before}
	if code != "" {
		query += " AND inventory_code = $2"
		args = append(args, code)
	}
	query += " ORDER BY inventory_code, created_at DESC, id DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("last adjustment before: %w", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var c string
		var qty decimal.Decimal
		if err := rows.Scan(&c, &qty); err != nil {
			return nil, fmt.Errorf("scan last adjustment: %w", err)
		}
		out[c] = qty
	}
	return out, rows.Err()
}

// buildAdjustmentWhere arma la cláusula WHERE dinámica de List/Statistics.
func buildAdjustmentWhere(filter repository.AdjustmentFilter) (string, []any) {
	where := ""
	args := []any{}
	add := func(cond string, arg any) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		args = append(args, arg)
		where += fmt.Sprintf(cond, len(args))
	}
	if filter.Code != "" {
		add("inventory_code = $%d", filter.Code)
	}
	if filter.Actor != "" {
		add("created_by = $%d", filter.Actor)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdjustment(row rowScanner) (*entity.AdjustmentEntry, error) {
	var e entity.AdjustmentEntry
	var errorMessage *string
	if err := row.Scan(
		&e.ID, &e.InventoryCode, &e.Name, &e.Type,
		&e.BeforeQuantity, &e.AfterQuantity, &e.QuantityChange,
		&e.Reason, &e.Status, &errorMessage, &e.CreatedBy, &e.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan adjustment entry: %w", err)
	}
	if errorMessage != nil {
		e.ErrorMessage = *errorMessage
	}
	return &e, nil
}
