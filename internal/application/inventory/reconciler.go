package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yms2/mes-core/internal/domain"
	"github.com/yms2/mes-core/pkg/logger"
)

// ReconcileUseCase corrige el efecto de una transacción origen (una recepción,
// una remisión de entrega o un vale de salida) cuando esta se edita o elimina.
//
// Protocolo de edición: (1) revertir el efecto original con un delta inverso,
// (2) aplicar el delta de la nueva cantidad. Si (1) falla, (2) NO se ejecuta:
// la edición aborta y el error sale con contexto suficiente (código de la
// transacción, producto, delta intentado) para corrección manual. Ese orden
// evita aplicar la cantidad nueva encima de una original sin revertir.
// En eliminación solo corre (1).
type ReconcileUseCase struct {
	ledger *AdjustStockUseCase
	lots   *LotUseCase
	log    *logger.Logger
}

// NewReconcileUseCase construye el caso de uso sobre el libro mayor y los lotes.
func NewReconcileUseCase(ledger *AdjustStockUseCase, lots *LotUseCase, log *logger.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{ledger: ledger, lots: lots, log: log}
}

// ReviseInput parámetros de una corrección por edición.
type ReviseInput struct {
	TransactionCode string // código del documento origen
	ProductCode     string
	LotCode         string // vacío si la transacción no maneja lote
	OldQuantity     decimal.Decimal
	NewQuantity     decimal.Decimal
	Unit            string
	Warehouse       string
	StorageLocation string
	Actor           string
}

// CancelInput parámetros de una reversión por eliminación.
type CancelInput struct {
	TransactionCode string
	ProductCode     string
	LotCode         string
	Quantity        decimal.Decimal // cantidad original de la transacción
	Actor           string
}

// ReviseReceiving corrige una recepción cuya cantidad pasó de OldQuantity a
// NewQuantity: revierte la entrada original (−old) y reaplica la nueva (+new).
// NewQuantity en cero equivale a anular la recepción (solo reversión).
func (uc *ReconcileUseCase) ReviseReceiving(ctx context.Context, in ReviseInput) error {
	if err := validateRevise(in); err != nil {
		return err
	}

	if err := uc.removeEffect(ctx, in.ProductCode, in.LotCode, in.OldQuantity,
		rollbackReason("recepción", in.TransactionCode), in.Actor); err != nil {
		return reconcileError("reversión de recepción", in.TransactionCode, in.ProductCode, in.OldQuantity.Neg(), err)
	}

	if in.NewQuantity.IsZero() {
		uc.log.Info().Str("tx", in.TransactionCode).Msg("corrección a cero: solo reversión, sin reaplicación")
		return nil
	}
	if err := uc.addEffect(ctx, in, in.NewQuantity, reapplyReason("recepción", in.TransactionCode)); err != nil {
		return reconcileError("reaplicación de recepción", in.TransactionCode, in.ProductCode, in.NewQuantity, err)
	}
	return nil
}

// ReviseDelivery corrige una entrega: la entrega original descontó stock, así
// que la reversión devuelve +old y la reaplicación descuenta −new.
func (uc *ReconcileUseCase) ReviseDelivery(ctx context.Context, in ReviseInput) error {
	if err := validateRevise(in); err != nil {
		return err
	}

	if err := uc.addEffect(ctx, in, in.OldQuantity,
		rollbackReason("entrega", in.TransactionCode)); err != nil {
		return reconcileError("reversión de entrega", in.TransactionCode, in.ProductCode, in.OldQuantity, err)
	}

	if in.NewQuantity.IsZero() {
		uc.log.Info().Str("tx", in.TransactionCode).Msg("corrección a cero: solo reversión, sin reaplicación")
		return nil
	}
	if err := uc.removeEffect(ctx, in.ProductCode, in.LotCode, in.NewQuantity,
		reapplyReason("entrega", in.TransactionCode), in.Actor); err != nil {
		return reconcileError("reaplicación de entrega", in.TransactionCode, in.ProductCode, in.NewQuantity.Neg(), err)
	}
	return nil
}

// CancelReceiving revierte por completo una recepción eliminada (sin reaplicar).
func (uc *ReconcileUseCase) CancelReceiving(ctx context.Context, in CancelInput) error {
	if err := validateCancel(in); err != nil {
		return err
	}
	if err := uc.removeEffect(ctx, in.ProductCode, in.LotCode, in.Quantity,
		rollbackReason("recepción", in.TransactionCode), in.Actor); err != nil {
		return reconcileError("anulación de recepción", in.TransactionCode, in.ProductCode, in.Quantity.Neg(), err)
	}
	return nil
}

// CancelDelivery revierte por completo una entrega eliminada: devuelve el stock.
func (uc *ReconcileUseCase) CancelDelivery(ctx context.Context, in CancelInput) error {
	if err := validateCancel(in); err != nil {
		return err
	}
	revise := ReviseInput{
		TransactionCode: in.TransactionCode,
		ProductCode:     in.ProductCode,
		LotCode:         in.LotCode,
		Actor:           in.Actor,
	}
	if err := uc.addEffect(ctx, revise, in.Quantity,
		rollbackReason("entrega", in.TransactionCode)); err != nil {
		return reconcileError("anulación de entrega", in.TransactionCode, in.ProductCode, in.Quantity, err)
	}
	return nil
}

// addEffect suma qty al inventario: vía lote (emparejado con el libro mayor)
// si la transacción maneja lote, o directo al libro mayor si no.
func (uc *ReconcileUseCase) addEffect(ctx context.Context, in ReviseInput, qty decimal.Decimal, reason string) error {
	if in.LotCode != "" {
		_, err := uc.lots.Receive(ctx, ReceiveLotInput{
			ProductCode:     in.ProductCode,
			LotCode:         in.LotCode,
			Quantity:        qty,
			Unit:            in.Unit,
			Warehouse:       in.Warehouse,
			StorageLocation: in.StorageLocation,
			Reason:          reason,
			Actor:           in.Actor,
		})
		return err
	}
	_, err := uc.ledger.Change(ctx, in.ProductCode, qty, reason, in.Actor)
	return err
}

// removeEffect descuenta qty del inventario, por lote o directo.
func (uc *ReconcileUseCase) removeEffect(ctx context.Context, productCode, lotCode string, qty decimal.Decimal, reason, actor string) error {
	if lotCode != "" {
		_, err := uc.lots.Consume(ctx, productCode, lotCode, qty, reason, actor)
		return err
	}
	_, err := uc.ledger.Change(ctx, productCode, qty.Neg(), reason, actor)
	return err
}

func validateRevise(in ReviseInput) error {
	if in.TransactionCode == "" || in.ProductCode == "" {
		return domain.ErrInvalidInput
	}
	if !in.OldQuantity.IsPositive() || in.NewQuantity.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

func validateCancel(in CancelInput) error {
	if in.TransactionCode == "" || in.ProductCode == "" || !in.Quantity.IsPositive() {
		return domain.ErrInvalidInput
	}
	return nil
}

func rollbackReason(kind, txCode string) string {
	return fmt.Sprintf("reversión %s %s", kind, txCode)
}

func reapplyReason(kind, txCode string) string {
	return fmt.Sprintf("reaplicación %s %s", kind, txCode)
}

// reconcileError envuelve la causa con el contexto que la corrección manual
// necesita: paso, transacción origen, producto y delta intentado.
func reconcileError(step, txCode, productCode string, delta decimal.Decimal, cause error) error {
	return fmt.Errorf("%s %s fallida (producto %s, delta %s): %w", step, txCode, productCode, delta, cause)
}
