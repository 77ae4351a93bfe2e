package audit

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yms2/mes-core/internal/application/dto"
	"github.com/yms2/mes-core/internal/domain"
	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/internal/domain/repository"
)

// UseCase lado de lectura del log de ajustes: consulta, estadísticas y las
// vistas derivadas (resumen de período, estado actual de stock).
type UseCase struct {
	auditRepo repository.AdjustmentRepository
	invRepo   repository.InventoryRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(auditRepo repository.AdjustmentRepository, invRepo repository.InventoryRepository) *UseCase {
	return &UseCase{auditRepo: auditRepo, invRepo: invRepo}
}

// Query consulta entradas del log con filtros y paginación.
func (uc *UseCase) Query(ctx context.Context, filter repository.AdjustmentFilter, limit, offset int) ([]*entity.AdjustmentEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.auditRepo.List(ctx, filter, limit, offset)
}

// Statistics agregados del log para el filtro dado.
func (uc *UseCase) Statistics(ctx context.Context, filter repository.AdjustmentFilter) (*repository.AdjustmentStatistics, error) {
	return uc.auditRepo.Statistics(ctx, filter)
}

// PeriodSummary agrega el log por código dentro de [from, to]:
//
//	previous = AfterQuantity de la última entrada SUCCESS anterior al rango (0 si no hay)
//	inbound  = suma/conteo de deltas positivos CHANGE/PRODUCTION del rango
//	outbound = suma/conteo de deltas negativos, en valor absoluto
//	adjust   = suma/conteo de deltas de entradas SET (con signo)
//	current  = previous + inbound − outbound + adjust
//
// Agregación pura sobre el log: sin mutaciones fuera del log, current debe
// coincidir con la cantidad viva del libro mayor al cierre del período.
func (uc *UseCase) PeriodSummary(ctx context.Context, from, to time.Time, code string) ([]dto.PeriodSummaryRow, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}

	previous, err := uc.auditRepo.LastSuccessBefore(ctx, from, code)
	if err != nil {
		return nil, err
	}
	entries, err := uc.auditRepo.ListForPeriod(ctx, from, to, code)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*dto.PeriodSummaryRow)
	rowFor := func(c string) *dto.PeriodSummaryRow {
		if row, ok := rows[c]; ok {
			return row
		}
		row := &dto.PeriodSummaryRow{
			Code:               c,
			PreviousQuantity:   decimal.Zero,
			InboundQuantity:    decimal.Zero,
			OutboundQuantity:   decimal.Zero,
			AdjustmentQuantity: decimal.Zero,
		}
		if prev, ok := previous[c]; ok {
			row.PreviousQuantity = prev
		}
		rows[c] = row
		return row
	}

	// Códigos con saldo previo pero sin movimientos en el rango también salen.
	for c := range previous {
		rowFor(c)
	}

	for _, e := range entries {
		if e.Status != entity.AdjustmentStatusSUCCESS {
			continue
		}
		row := rowFor(e.InventoryCode)
		if e.Name != "" {
			row.Name = e.Name
		}
		switch e.Type {
		case entity.AdjustmentTypeSET:
			row.AdjustmentQuantity = row.AdjustmentQuantity.Add(e.QuantityChange)
			row.AdjustmentCount++
		default: // CHANGE | PRODUCTION
			if e.QuantityChange.IsPositive() {
				row.InboundQuantity = row.InboundQuantity.Add(e.QuantityChange)
				row.InboundCount++
			} else if e.QuantityChange.IsNegative() {
				row.OutboundQuantity = row.OutboundQuantity.Add(e.QuantityChange.Abs())
				row.OutboundCount++
			}
		}
	}

	out := make([]dto.PeriodSummaryRow, 0, len(rows))
	for _, row := range rows {
		row.CurrentQuantity = row.PreviousQuantity.
			Add(row.InboundQuantity).
			Sub(row.OutboundQuantity).
			Add(row.AdjustmentQuantity)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// StockStatus vista de estado actual del inventario con bandera de stock de
// seguridad, sobre los registros vivos del libro mayor.
func (uc *UseCase) StockStatus(ctx context.Context, codeOrName string, limit, offset int) ([]dto.StockStatusRow, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	records, err := uc.invRepo.List(ctx, codeOrName, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockStatusRow, 0, len(records))
	for _, rec := range records {
		out = append(out, dto.StockStatusRow{
			Code:            rec.Code,
			Name:            rec.Name,
			Quantity:        rec.Quantity,
			Unit:            rec.Unit,
			Location:        rec.Location,
			SafetyThreshold: rec.SafetyThreshold,
			BelowSafety:     rec.Quantity.LessThan(rec.SafetyThreshold),
		})
	}
	return out, nil
}
