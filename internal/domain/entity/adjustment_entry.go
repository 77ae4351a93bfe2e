package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ajuste del log de auditoría.
const (
	AdjustmentTypeCHANGE     = "CHANGE"     // delta sobre la cantidad actual
	AdjustmentTypeSET        = "SET"        // fijación absoluta de cantidad
	AdjustmentTypePRODUCTION = "PRODUCTION" // entrada por producción
)

// Estados de un intento de ajuste.
const (
	AdjustmentStatusSUCCESS = "SUCCESS"
	AdjustmentStatusFAILED  = "FAILED"
)

// AdjustmentEntry registro inmutable del log de ajustes (append-only).
// Se escribe exactamente uno por intento de mutación, exitoso o no: el log
// registra intentos, no solo éxitos, para permitir forense de fallos.
// InventoryCode puede ser un código de producto o de lote.
type AdjustmentEntry struct {
	ID             string
	InventoryCode  string
	Name           string
	Type           string // CHANGE | SET | PRODUCTION
	BeforeQuantity decimal.Decimal
	AfterQuantity  decimal.Decimal
	QuantityChange decimal.Decimal
	Reason         string
	Status         string // SUCCESS | FAILED
	ErrorMessage   string
	CreatedBy      string
	CreatedAt      time.Time
}
