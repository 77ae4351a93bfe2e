package bom

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yms2/mes-core/internal/application/dto"
	dombom "github.com/yms2/mes-core/internal/domain/bom"
	"github.com/yms2/mes-core/internal/domain/repository"
	"github.com/yms2/mes-core/pkg/logger"
)

// ExplodeUseCase explota el BOM de un producto y enriquece las líneas
// consolidadas con el maestro de productos y el stock actual.
type ExplodeUseCase struct {
	bomRepo     repository.BomRepository
	productRepo repository.ProductRepository
	invRepo     repository.InventoryRepository
	log         *logger.Logger
}

// NewExplodeUseCase construye el caso de uso.
func NewExplodeUseCase(
	bomRepo repository.BomRepository,
	productRepo repository.ProductRepository,
	invRepo repository.InventoryRepository,
	log *logger.Logger,
) *ExplodeUseCase {
	return &ExplodeUseCase{
		bomRepo:     bomRepo,
		productRepo: productRepo,
		invRepo:     invRepo,
		log:         log,
	}
}

// Explode expande rootCode×qty en líneas de requerimiento consolidadas.
// Las ramas cortadas (ciclo o profundidad) se devuelven como advertencias y se
// registran en el log; no abortan la explosión. Un producto o inventario
// faltante tampoco la aborta: esa línea sale con enriquecimiento en cero.
func (uc *ExplodeUseCase) Explode(ctx context.Context, rootCode string, qty decimal.Decimal) (*dto.ExplodeResponse, error) {
	res, err := dombom.Explode(rootCode, qty, uc.bomRepo)
	if err != nil {
		return nil, err
	}

	for _, w := range res.Warnings {
		uc.log.Warn().
			Str("kind", w.Kind).
			Str("code", w.Code).
			Strs("path", w.Path).
			Msg("rama del BOM cortada durante la explosión")
	}

	consolidated := dombom.Consolidate(res.Lines)

	out := &dto.ExplodeResponse{
		RootCode:     rootCode,
		RootQuantity: qty,
		Lines:        make([]dto.RequirementLineDTO, 0, len(consolidated)),
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, dto.ExplosionWarningDTO{Kind: w.Kind, Code: w.Code, Path: w.Path})
	}

	for _, ln := range consolidated {
		line := dto.RequirementLineDTO{
			Level:         ln.Level,
			ParentCode:    ln.ParentCode,
			ChildCode:     ln.ChildCode,
			UnitQuantity:  ln.UnitQuantity,
			TotalQuantity: ln.TotalQuantity,
			Unit:          ln.Unit,
		}

		if product, err := uc.productRepo.GetByCode(ln.ChildCode); err == nil && product != nil {
			line.ProductName = product.Name
			line.Price = product.Price
			line.SafetyThreshold = product.SafetyThreshold
			if line.Unit == "" {
				line.Unit = product.Unit
			}
		} else if err != nil {
			uc.log.Warn().Err(err).Str("code", ln.ChildCode).Msg("producto no disponible para enriquecer línea BOM")
		}

		if rec, err := uc.invRepo.Get(ln.ChildCode); err == nil && rec != nil {
			line.CurrentStock = rec.Quantity
		} else if err != nil {
			uc.log.Warn().Err(err).Str("code", ln.ChildCode).Msg("inventario no disponible para enriquecer línea BOM")
		}

		shortage := ln.TotalQuantity.Sub(line.CurrentStock)
		if shortage.IsNegative() {
			shortage = decimal.Zero
		}
		line.Shortage = shortage

		out.Lines = append(out.Lines, line)
	}
	return out, nil
}
