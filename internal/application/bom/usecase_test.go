package bom_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appbom "github.com/yms2/mes-core/internal/application/bom"
	"github.com/yms2/mes-core/internal/domain"
	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeBomRepo struct {
	edges map[string][]entity.BomEdge
}

func (r *fakeBomRepo) Children(parentCode string) ([]entity.BomEdge, error) {
	return r.edges[parentCode], nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (r *fakeProductRepo) GetByCode(code string) (*entity.Product, error) {
	return r.products[code], nil
}

type fakeInventoryRepo struct {
	stock map[string]decimal.Decimal
}

func (r *fakeInventoryRepo) Get(code string) (*entity.InventoryRecord, error) {
	qty, ok := r.stock[code]
	if !ok {
		return nil, nil
	}
	return &entity.InventoryRecord{Code: code, Quantity: qty}, nil
}

func (r *fakeInventoryRepo) GetForUpdate(string) (*entity.InventoryRecord, error) { return nil, nil }
func (r *fakeInventoryRepo) Upsert(*entity.InventoryRecord) error                 { return nil }
func (r *fakeInventoryRepo) List(context.Context, string, int, int) ([]*entity.InventoryRecord, error) {
	return nil, nil
}

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func edge(parent, child string, qty int64) entity.BomEdge {
	return entity.BomEdge{ParentCode: parent, ChildCode: child, QuantityPerParent: d(qty), Unit: "EA"}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestExplode_EnriqueceYCalculaFaltante(t *testing.T) {
	bomRepo := &fakeBomRepo{edges: map[string][]entity.BomEdge{
		"FG-001": {edge("FG-001", "MAT-001", 2)},
	}}
	productRepo := &fakeProductRepo{products: map[string]*entity.Product{
		"MAT-001": {Code: "MAT-001", Name: "Tornillo M4", Unit: "EA",
			Price: decimal.NewFromFloat(0.5), SafetyThreshold: d(100)},
	}}
	invRepo := &fakeInventoryRepo{stock: map[string]decimal.Decimal{"MAT-001": d(30)}}

	uc := appbom.NewExplodeUseCase(bomRepo, productRepo, invRepo, logger.Nop())
	res, err := uc.Explode(context.Background(), "FG-001", d(50))
	require.NoError(t, err)

	require.Len(t, res.Lines, 1)
	line := res.Lines[0]
	assert.Equal(t, "MAT-001", line.ChildCode)
	assert.Equal(t, "Tornillo M4", line.ProductName)
	assert.True(t, line.TotalQuantity.Equal(d(100)), "50 × 2 = 100")
	assert.True(t, line.CurrentStock.Equal(d(30)))
	assert.True(t, line.Shortage.Equal(d(70)), "faltante = requerido − stock")
	assert.True(t, line.SafetyThreshold.Equal(d(100)))
	assert.Empty(t, res.Warnings)
}

func TestExplode_StockSuficienteSinFaltante(t *testing.T) {
	bomRepo := &fakeBomRepo{edges: map[string][]entity.BomEdge{
		"FG-001": {edge("FG-001", "MAT-001", 1)},
	}}
	invRepo := &fakeInventoryRepo{stock: map[string]decimal.Decimal{"MAT-001": d(500)}}

	uc := appbom.NewExplodeUseCase(bomRepo, &fakeProductRepo{}, invRepo, logger.Nop())
	res, err := uc.Explode(context.Background(), "FG-001", d(10))
	require.NoError(t, err)

	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].Shortage.IsZero(), "el faltante tiene piso en cero")
}

func TestExplode_ProductoFaltanteNoAborta(t *testing.T) {
	bomRepo := &fakeBomRepo{edges: map[string][]entity.BomEdge{
		"FG-001": {edge("FG-001", "MAT-X", 3)},
	}}

	uc := appbom.NewExplodeUseCase(bomRepo, &fakeProductRepo{}, &fakeInventoryRepo{}, logger.Nop())
	res, err := uc.Explode(context.Background(), "FG-001", d(4))
	require.NoError(t, err, "maestro o inventario faltante no abortan la explosión")

	require.Len(t, res.Lines, 1)
	line := res.Lines[0]
	assert.Empty(t, line.ProductName)
	assert.True(t, line.CurrentStock.IsZero())
	assert.True(t, line.Shortage.Equal(d(12)), "sin stock, el faltante es todo lo requerido")
}

func TestExplode_CicloSaleComoWarning(t *testing.T) {
	bomRepo := &fakeBomRepo{edges: map[string][]entity.BomEdge{
		"A": {edge("A", "B", 1)},
		"B": {edge("B", "A", 1)},
	}}

	uc := appbom.NewExplodeUseCase(bomRepo, &fakeProductRepo{}, &fakeInventoryRepo{}, logger.Nop())
	res, err := uc.Explode(context.Background(), "A", d(1))
	require.NoError(t, err, "el ciclo corta la rama, no la explosión")
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, "CYCLE", res.Warnings[0].Kind)
}

func TestExplode_EntradaInvalida(t *testing.T) {
	uc := appbom.NewExplodeUseCase(&fakeBomRepo{}, &fakeProductRepo{}, &fakeInventoryRepo{}, logger.Nop())

	_, err := uc.Explode(context.Background(), "", d(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Explode(context.Background(), "FG-001", d(0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
