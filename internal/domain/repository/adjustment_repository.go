package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yms2/mes-core/internal/domain/entity"
)

// AdjustmentFilter filtros opcionales para consultar el log de ajustes.
type AdjustmentFilter struct {
	Code  string // código exacto de producto o lote; vacío = todos
	Actor string
	From  *time.Time
	To    *time.Time
}

// AdjustmentStatistics agregados sobre el log para un filtro dado.
type AdjustmentStatistics struct {
	Count        int64
	TotalChanged decimal.Decimal // suma de QuantityChange de entradas SUCCESS
	AvgChange    decimal.Decimal
	SuccessCount int64
	FailureCount int64
}

// AdjustmentRepository puerto del log de ajustes append-only. Las entradas son
// inmutables una vez escritas; no existe Update ni Delete.
type AdjustmentRepository interface {
	// Create agrega una entrada al log (write-once).
	Create(entry *entity.AdjustmentEntry) error
	// List consulta entradas con filtros y paginación, orden cronológico descendente.
	List(ctx context.Context, filter AdjustmentFilter, limit, offset int) ([]*entity.AdjustmentEntry, error)
	// Statistics agregados (conteos, suma y promedio de cambios) para el filtro.
	Statistics(ctx context.Context, filter AdjustmentFilter) (*AdjustmentStatistics, error)
	// ListForPeriod entradas SUCCESS dentro del rango [from, to], orden ascendente.
	// code vacío = todos los códigos.
	ListForPeriod(ctx context.Context, from, to time.Time, code string) ([]*entity.AdjustmentEntry, error)
	// LastSuccessBefore devuelve, por código, la AfterQuantity de la última
	// entrada SUCCESS estrictamente anterior a before (códigos sin entradas
	// previas no aparecen en el mapa).
	LastSuccessBefore(ctx context.Context, before time.Time, code string) (map[string]decimal.Decimal, error)
}
