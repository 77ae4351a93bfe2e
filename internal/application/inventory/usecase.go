package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yms2/mes-core/internal/domain"
	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/internal/domain/repository"
	"github.com/yms2/mes-core/pkg/logger"
)

// maxRetries reintentos ante conflicto de serialización antes de rendirse.
const maxRetries = 3

// AdjustStockUseCase mutaciones del libro mayor de inventario (Change/Set y la
// variante por lotes ChangeMany) con bloqueo de fila y log de auditoría.
//
// Cada intento produce exactamente una entrada en el log: SUCCESS dentro de la
// misma transacción que la mutación, FAILED en su propia escritura después del
// rollback (el log registra intentos, no solo éxitos).
type AdjustStockUseCase struct {
	txRunner  TxRunner
	invRepo   repository.InventoryRepository  // atado al pool: lecturas fuera de tx
	auditRepo repository.AdjustmentRepository // atado al pool: entradas FAILED
	log       *logger.Logger
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	invRepo repository.InventoryRepository,
	auditRepo repository.AdjustmentRepository,
	log *logger.Logger,
) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		txRunner:  txRunner,
		invRepo:   invRepo,
		auditRepo: auditRepo,
		log:       log,
	}
}

// Change aplica un delta (positivo o negativo) a la cantidad del código dado.
// Precondiciones: el registro existe y cantidad + delta >= 0.
//
// La secuencia leer-calcular-escribir completa corre dentro de una transacción
// con la fila bloqueada (SELECT ... FOR UPDATE): dos Change concurrentes sobre
// el mismo código se serializan en vez de pisarse la escritura. Ante conflicto
// de serialización se reintenta hasta maxRetries veces.
func (uc *AdjustStockUseCase) Change(ctx context.Context, code string, delta decimal.Decimal, reason, actor string) (*entity.InventoryRecord, error) {
	if code == "" || delta.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.InventoryRecord
	err := uc.withRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			invRepo repository.InventoryRepository,
			lotRepo repository.LotRepository,
			auditRepo repository.AdjustmentRepository,
		) error {
			rec, err := invRepo.GetForUpdate(code)
			if err != nil {
				return err
			}
			if rec == nil {
				return domain.ErrNotFound
			}
			newQty := rec.Quantity.Add(delta)
			if newQty.IsNegative() {
				return domain.ErrInvalidQuantity
			}
			before := rec.Quantity
			rec.Quantity = newQty
			rec.UpdatedAt = time.Now()
			if err := invRepo.Upsert(rec); err != nil {
				return err
			}
			if err := auditRepo.Create(successEntry(code, rec.Name, entity.AdjustmentTypeCHANGE, before, newQty, reason, actor)); err != nil {
				return err
			}
			result = rec
			return nil
		})
	})
	if err != nil {
		uc.recordFailure(ctx, code, entity.AdjustmentTypeCHANGE, delta, reason, actor, err)
		return nil, err
	}
	return result, nil
}

// Set fija la cantidad del código en un valor absoluto (tipo SET en el log).
// Precondiciones: el registro existe y newQuantity >= 0.
func (uc *AdjustStockUseCase) Set(ctx context.Context, code string, newQuantity decimal.Decimal, reason, actor string) (*entity.InventoryRecord, error) {
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	if newQuantity.IsNegative() {
		uc.recordFailure(ctx, code, entity.AdjustmentTypeSET, newQuantity, reason, actor, domain.ErrInvalidQuantity)
		return nil, domain.ErrInvalidQuantity
	}

	var result *entity.InventoryRecord
	err := uc.withRetry(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			invRepo repository.InventoryRepository,
			lotRepo repository.LotRepository,
			auditRepo repository.AdjustmentRepository,
		) error {
			rec, err := invRepo.GetForUpdate(code)
			if err != nil {
				return err
			}
			if rec == nil {
				return domain.ErrNotFound
			}
			before := rec.Quantity
			rec.Quantity = newQuantity
			rec.UpdatedAt = time.Now()
			if err := invRepo.Upsert(rec); err != nil {
				return err
			}
			if err := auditRepo.Create(successEntry(code, rec.Name, entity.AdjustmentTypeSET, before, newQuantity, reason, actor)); err != nil {
				return err
			}
			result = rec
			return nil
		})
	})
	if err != nil {
		uc.recordFailure(ctx, code, entity.AdjustmentTypeSET, newQuantity, reason, actor, err)
		return nil, err
	}
	return result, nil
}

// ChangeRequest un ítem de la variante por lotes.
type ChangeRequest struct {
	Code   string
	Delta  decimal.Decimal
	Reason string
}

// BatchFailure ítem fallido de ChangeMany con su causa.
type BatchFailure struct {
	Code    string
	Delta   decimal.Decimal
	Err     error
	Message string
}

// BatchResult resultado de ChangeMany.
type BatchResult struct {
	Succeeded []*entity.InventoryRecord
	Failed    []BatchFailure
}

// ChangeMany aplica cada ítem de forma independiente: el éxito es parcial y
// esperado, los fallos individuales no revierten a los demás (cada ítem corre
// en su propia transacción y deja su propia entrada en el log).
func (uc *AdjustStockUseCase) ChangeMany(ctx context.Context, reqs []ChangeRequest, actor string) *BatchResult {
	res := &BatchResult{}
	for _, req := range reqs {
		rec, err := uc.Change(ctx, req.Code, req.Delta, req.Reason, actor)
		if err != nil {
			res.Failed = append(res.Failed, BatchFailure{
				Code:    req.Code,
				Delta:   req.Delta,
				Err:     err,
				Message: err.Error(),
			})
			continue
		}
		res.Succeeded = append(res.Succeeded, rec)
	}
	return res
}

// withRetry reintenta fn ante ErrConcurrencyConflict, con un máximo acotado.
func (uc *AdjustStockUseCase) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		uc.log.Warn().
			Int("attempt", attempt).
			Err(err).
			Msg("conflicto de concurrencia en inventario, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}
	return err
}

// recordFailure escribe la entrada FAILED del intento rechazado. Solo los
// errores de dominio visibles al caller quedan en el log; los fallos de
// infraestructura se registran en el logger y se propagan sin entrada.
func (uc *AdjustStockUseCase) recordFailure(ctx context.Context, code, adjType string, attempted decimal.Decimal, reason, actor string, cause error) {
	if !errors.Is(cause, domain.ErrNotFound) && !errors.Is(cause, domain.ErrInvalidQuantity) && !errors.Is(cause, domain.ErrInsufficientStock) {
		uc.log.Error().Err(cause).Str("code", code).Msg("mutación de inventario fallida sin entrada de auditoría")
		return
	}

	current := decimal.Zero
	name := ""
	if rec, err := uc.invRepo.Get(code); err == nil && rec != nil {
		current = rec.Quantity
		name = rec.Name
	}
	entry := &entity.AdjustmentEntry{
		ID:             newEntryID(),
		InventoryCode:  code,
		Name:           name,
		Type:           adjType,
		BeforeQuantity: current,
		AfterQuantity:  current, // la cantidad no cambió
		QuantityChange: attempted,
		Reason:         reason,
		Status:         entity.AdjustmentStatusFAILED,
		ErrorMessage:   cause.Error(),
		CreatedBy:      actor,
		CreatedAt:      time.Now(),
	}
	if err := uc.auditRepo.Create(entry); err != nil {
		uc.log.Error().Err(err).Str("code", code).Msg("no se pudo escribir la entrada FAILED del log de ajustes")
	}
}

func newEntryID() string { return uuid.New().String() }

// successEntry construye la entrada SUCCESS de una mutación aplicada.
func successEntry(code, name, adjType string, before, after decimal.Decimal, reason, actor string) *entity.AdjustmentEntry {
	return &entity.AdjustmentEntry{
		ID:             newEntryID(),
		InventoryCode:  code,
		Name:           name,
		Type:           adjType,
		BeforeQuantity: before,
		AfterQuantity:  after,
		QuantityChange: after.Sub(before),
		Reason:         reason,
		Status:         entity.AdjustmentStatusSUCCESS,
		CreatedBy:      actor,
		CreatedAt:      time.Now(),
	}
}
