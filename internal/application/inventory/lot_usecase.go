package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yms2/mes-core/internal/domain"
	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/internal/domain/repository"
	"github.com/yms2/mes-core/pkg/logger"
)

// LotUseCase mutaciones de lote emparejadas con el libro mayor del producto.
//
// Cada mutación de lote va acompañada de la mutación de inventario del mismo
// producto por el mismo delta, dentro de UNA transacción: si el segundo paso
// falla, el primero se revierte con la tx (rediseño del legado, que hacía dos
// llamadas sin frontera transaccional compartida). Se escriben dos entradas de
// auditoría, una por el código de producto y otra por el código de lote.
type LotUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository        // atado al pool: lecturas
	auditRepo   repository.AdjustmentRepository // atado al pool: entradas FAILED
	log         *logger.Logger
}

// NewLotUseCase construye el caso de uso.
func NewLotUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	auditRepo repository.AdjustmentRepository,
	log *logger.Logger,
) *LotUseCase {
	return &LotUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		lotRepo:     lotRepo,
		auditRepo:   auditRepo,
		log:         log,
	}
}

// ReceiveLotInput entrada para Receive.
type ReceiveLotInput struct {
	ProductCode     string
	LotCode         string
	Quantity        decimal.Decimal // > 0
	Unit            string
	Warehouse       string
	StorageLocation string
	Production      bool // true: entrada por producción (tipo PRODUCTION en el log)
	Reason          string
	Actor           string
}

// Receive registra la entrada de qty unidades del lote: crea el lote si es su
// primera recepción, suma si ya existe, y suma el mismo delta al registro de
// inventario del producto. El registro de inventario se crea perezosamente en
// la primera recepción, tomando nombre y unidad del maestro de productos.
func (uc *LotUseCase) Receive(ctx context.Context, in ReceiveLotInput) (*entity.LotRecord, error) {
	if in.ProductCode == "" || in.LotCode == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	adjType := entity.AdjustmentTypeCHANGE
	if in.Production {
		adjType = entity.AdjustmentTypePRODUCTION
	}

	// Lectura del maestro antes de la tx: un producto faltante no aborta la
	// recepción, solo deja el enriquecimiento vacío.
	product, err := uc.productRepo.GetByCode(in.ProductCode)
	if err != nil {
		uc.log.Warn().Err(err).Str("code", in.ProductCode).Msg("maestro de productos no disponible en recepción")
		product = nil
	}

	var result *entity.LotRecord
	err = uc.txRunner.Run(ctx, func(
		invRepo repository.InventoryRepository,
		lotRepo repository.LotRepository,
		auditRepo repository.AdjustmentRepository,
	) error {
		now := time.Now()

		lot, err := lotRepo.GetForUpdate(in.ProductCode, in.LotCode)
		if err != nil {
			return err
		}
		lotBefore := decimal.Zero
		if lot == nil {
			lot = &entity.LotRecord{
				ProductCode:     in.ProductCode,
				LotCode:         in.LotCode,
				Quantity:        in.Quantity,
				Unit:            in.Unit,
				Warehouse:       in.Warehouse,
				StorageLocation: in.StorageLocation,
				Status:          "ACTIVE",
				CreatedAt:       now,
			}
		} else {
			lotBefore = lot.Quantity
			lot.Quantity = lot.Quantity.Add(in.Quantity)
		}
		lot.UpdatedAt = now
		if err := lotRepo.Upsert(lot); err != nil {
			return err
		}

		rec, err := invRepo.GetForUpdate(in.ProductCode)
		if err != nil {
			return err
		}
		recBefore := decimal.Zero
		if rec == nil {
			// Creación perezosa del registro del libro mayor.
			rec = &entity.InventoryRecord{
				Code:     in.ProductCode,
				Quantity: in.Quantity,
				Unit:     in.Unit,
				Location: in.StorageLocation,
				Status:   "ACTIVE",
			}
			if product != nil {
				rec.Name = product.Name
				rec.Type = product.Type
				rec.Unit = product.Unit
				rec.SafetyThreshold = product.SafetyThreshold
			}
		} else {
			recBefore = rec.Quantity
			rec.Quantity = rec.Quantity.Add(in.Quantity)
		}
		rec.UpdatedAt = now
		if err := invRepo.Upsert(rec); err != nil {
			return err
		}

		if err := auditRepo.Create(successEntry(in.ProductCode, rec.Name, adjType, recBefore, rec.Quantity, in.Reason, in.Actor)); err != nil {
			return err
		}
		if err := auditRepo.Create(successEntry(in.LotCode, rec.Name, adjType, lotBefore, lot.Quantity, in.Reason, in.Actor)); err != nil {
			return err
		}

		result = lot
		return nil
	})
	if err != nil {
		uc.recordLotFailure(in.LotCode, adjType, in.Quantity, in.Reason, in.Actor, err)
		return nil, err
	}
	return result, nil
}

// Consume descuenta qty del lote y del libro mayor del producto, en una sola
// transacción. Falla con ErrInsufficientStock si qty supera la cantidad del
// lote; el lote que llega a cero no se elimina, queda como historia.
func (uc *LotUseCase) Consume(ctx context.Context, productCode, lotCode string, qty decimal.Decimal, reason, actor string) (*entity.LotRecord, error) {
	if productCode == "" || lotCode == "" || !qty.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.LotRecord
	err := uc.txRunner.Run(ctx, func(
		invRepo repository.InventoryRepository,
		lotRepo repository.LotRepository,
		auditRepo repository.AdjustmentRepository,
	) error {
		now := time.Now()

		lot, err := lotRepo.GetForUpdate(productCode, lotCode)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if lot.Quantity.LessThan(qty) {
			return domain.ErrInsufficientStock
		}

		rec, err := invRepo.GetForUpdate(productCode)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		if rec.Quantity.LessThan(qty) {
			return domain.ErrInvalidQuantity
		}

		lotBefore := lot.Quantity
		recBefore := rec.Quantity
		lot.Quantity = lot.Quantity.Sub(qty)
		rec.Quantity = rec.Quantity.Sub(qty)
		lot.UpdatedAt = now
		rec.UpdatedAt = now

		if err := lotRepo.Upsert(lot); err != nil {
			return err
		}
		if err := invRepo.Upsert(rec); err != nil {
			return err
		}

		if err := auditRepo.Create(successEntry(productCode, rec.Name, entity.AdjustmentTypeCHANGE, recBefore, rec.Quantity, reason, actor)); err != nil {
			return err
		}
		if err := auditRepo.Create(successEntry(lotCode, rec.Name, entity.AdjustmentTypeCHANGE, lotBefore, lot.Quantity, reason, actor)); err != nil {
			return err
		}

		result = lot
		return nil
	})
	if err != nil {
		uc.recordLotFailure(lotCode, entity.AdjustmentTypeCHANGE, qty.Neg(), reason, actor, err)
		return nil, err
	}
	return result, nil
}

// ListByProduct lotes de un producto, incluidos los históricos en cero.
func (uc *LotUseCase) ListByProduct(productCode string) ([]*entity.LotRecord, error) {
	if productCode == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.lotRepo.ListByProduct(productCode)
}

// recordLotFailure escribe la entrada FAILED de un intento de mutación de lote
// rechazado por el dominio.
func (uc *LotUseCase) recordLotFailure(lotCode, adjType string, attempted decimal.Decimal, reason, actor string, cause error) {
	if !errors.Is(cause, domain.ErrNotFound) && !errors.Is(cause, domain.ErrInvalidQuantity) && !errors.Is(cause, domain.ErrInsufficientStock) {
		uc.log.Error().Err(cause).Str("lot", lotCode).Msg("mutación de lote fallida sin entrada de auditoría")
		return
	}
	entry := &entity.AdjustmentEntry{
		ID:             newEntryID(),
		InventoryCode:  lotCode,
		Type:           adjType,
		QuantityChange: attempted,
		Reason:         reason,
		Status:         entity.AdjustmentStatusFAILED,
		ErrorMessage:   cause.Error(),
		CreatedBy:      actor,
		CreatedAt:      time.Now(),
	}
	if err := uc.auditRepo.Create(entry); err != nil {
		uc.log.Error().Err(err).Str("lot", lotCode).Msg("no se pudo escribir la entrada FAILED del log de ajustes")
	}
}
