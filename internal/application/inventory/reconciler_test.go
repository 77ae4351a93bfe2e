package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yms2/mes-core/internal/application/inventory"
	"github.com/yms2/mes-core/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Corrección de recepciones
// ──────────────────────────────────────────────────────────────────────────────

// Una recepción de 20 por lote se corrige a 15: el lote y el libro mayor deben
// terminar ambos en 15, pasando por la reversión completa (−20) y la
// reaplicación (+15).
func TestReviseReceiving_ConLote_20a15(t *testing.T) {
	h := newHarness()
	h.seedProduct("MAT-001", "Tornillo M4")
	ctx := context.Background()

	_, err := h.lots.Receive(ctx, receiveInput("MAT-001", "L1", 20))
	require.NoError(t, err)

	err = h.reconciler.ReviseReceiving(ctx, inventory.ReviseInput{
		TransactionCode: "RCV-001",
		ProductCode:     "MAT-001",
		LotCode:         "L1",
		OldQuantity:     d(20),
		NewQuantity:     d(15),
		Unit:            "EA",
		Warehouse:       "WH-1",
		StorageLocation: "A-01",
		Actor:           "user-1",
	})
	require.NoError(t, err)

	assert.True(t, h.lotQuantity("MAT-001", "L1").Equal(d(15)), "el lote debe quedar en 15")
	assert.True(t, h.quantityOf("MAT-001").Equal(d(15)), "el libro mayor debe quedar en 15")
}

func TestReviseReceiving_SinLote(t *testing.T) {
	h := newHarness()
	h.seedRecord("MAT-001", "Tornillo M4", 30)

	err := h.reconciler.ReviseReceiving(context.Background(), inventory.ReviseInput{
		TransactionCode: "RCV-002",
		ProductCode:     "MAT-001",
		OldQuantity:     d(10),
		NewQuantity:     d(4),
		Actor:           "user-1",
	})
	require.NoError(t, err)
	assert.True(t, h.quantityOf("MAT-001").Equal(d(24)), "30 − 10 + 4 = 24")
}

func TestReviseReceiving_ACeroSoloRevierte(t *testing.T) {
	h := newHarness()
	h.seedRecord("MAT-001", "Tornillo M4", 30)

	err := h.reconciler.ReviseReceiving(context.Background(), inventory.ReviseInput{
		TransactionCode: "RCV-003",
		ProductCode:     "MAT-001",
		OldQuantity:     d(10),
		NewQuantity:     d(0),
		Actor:           "user-1",
	})
	require.NoError(t, err)
	assert.True(t, h.quantityOf("MAT-001").Equal(d(20)), "nueva cantidad cero equivale a anular")
}

// Si la reversión falla, la reaplicación NO debe correr y el error debe llevar
// el contexto de la transacción origen para corrección manual.
func TestReviseReceiving_ReversionFallidaAbortaReaplicacion(t *testing.T) {
	h := newHarness()
	h.seedRecord("MAT-001", "Tornillo M4", 10)

	err := h.reconciler.ReviseReceiving(context.Background(), inventory.ReviseInput{
		TransactionCode: "RCV-004",
		ProductCode:     "MAT-001",
		OldQuantity:     d(50), // revertir −50 dejaría el stock negativo
		NewQuantity:     d(60),
		Actor:           "user-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Contains(t, err.Error(), "RCV-004", "el error debe identificar la transacción origen")
	assert.Contains(t, err.Error(), "MAT-001", "el error debe identificar el producto")

	// Sin reversión no hay reaplicación: la cantidad queda intacta.
	assert.True(t, h.quantityOf("MAT-001").Equal(d(10)))
	assert.Empty(t, h.store.successEntriesFor("MAT-001"),
		"ninguno de los dos pasos debe haber quedado aplicado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Corrección de entregas
// ──────────────────────────────────────────────────────────────────────────────

// La entrega descontó stock, así que su corrección primero devuelve la cantidad
// original y luego descuenta la nueva.
func TestReviseDelivery_DevuelveYReaplica(t *testing.T) {
	h := newHarness()
	h.seedRecord("FG-001", "Bancada ensamblada", 10)

	err := h.reconciler.ReviseDelivery(context.Background(), inventory.ReviseInput{
		TransactionCode: "DLV-001",
		ProductCode:     "FG-001",
		OldQuantity:     d(5),
		NewQuantity:     d(8),
		Actor:           "user-1",
	})
	require.NoError(t, err)
	assert.True(t, h.quantityOf("FG-001").Equal(d(7)), "10 + 5 − 8 = 7")
}

func TestReviseDelivery_ReaplicacionInsuficiente(t *testing.T) {
	h := newHarness()
	h.seedRecord("FG-001", "Bancada ensamblada", 2)

	err := h.reconciler.ReviseDelivery(context.Background(), inventory.ReviseInput{
		TransactionCode: "DLV-002",
		ProductCode:     "FG-001",
		OldQuantity:     d(1),
		NewQuantity:     d(50), // 2 + 1 − 50 < 0
		Actor:           "user-1",
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Contains(t, err.Error(), "DLV-002")

	// La reversión quedó aplicada (es el estado honesto: la entrega original ya
	// no existe); la cantidad refleja solo ese paso.
	assert.True(t, h.quantityOf("FG-001").Equal(d(3)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelReceiving_RevierteElEfecto(t *testing.T) {
	h := newHarness()
	h.seedProduct("MAT-001", "Tornillo M4")
	ctx := context.Background()

	_, err := h.lots.Receive(ctx, receiveInput("MAT-001", "L1", 20))
	require.NoError(t, err)

	err = h.reconciler.CancelReceiving(ctx, inventory.CancelInput{
		TransactionCode: "RCV-005",
		ProductCode:     "MAT-001",
		LotCode:         "L1",
		Quantity:        d(20),
		Actor:           "user-1",
	})
	require.NoError(t, err)
	assert.True(t, h.lotQuantity("MAT-001", "L1").IsZero())
	assert.True(t, h.quantityOf("MAT-001").IsZero())
}

func TestCancelDelivery_DevuelveElStock(t *testing.T) {
	h := newHarness()
	h.seedRecord("FG-001", "Bancada ensamblada", 3)

	err := h.reconciler.CancelDelivery(context.Background(), inventory.CancelInput{
		TransactionCode: "DLV-003",
		ProductCode:     "FG-001",
		Quantity:        d(5),
		Actor:           "user-1",
	})
	require.NoError(t, err)
	assert.True(t, h.quantityOf("FG-001").Equal(d(8)))
}

func TestReconcile_ValidacionDeEntrada(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	err := h.reconciler.ReviseReceiving(ctx, inventory.ReviseInput{
		ProductCode: "MAT-001", OldQuantity: d(1), NewQuantity: d(2),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin código de transacción")

	err = h.reconciler.ReviseReceiving(ctx, inventory.ReviseInput{
		TransactionCode: "RCV-X", ProductCode: "MAT-001", OldQuantity: d(0), NewQuantity: d(2),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad original no positiva")

	err = h.reconciler.CancelReceiving(ctx, inventory.CancelInput{
		TransactionCode: "RCV-X", ProductCode: "MAT-001", Quantity: d(0),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "anulación sin cantidad positiva")
}
