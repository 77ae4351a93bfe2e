package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord stock actual por código de producto (libro mayor de inventario).
// Se crea de forma perezosa en la primera recepción o vía backfill; nunca se
// elimina mientras existan transacciones que lo referencien. Quantity nunca
// puede ser negativa: toda mutación pasa por el libro mayor.
type InventoryRecord struct {
	Code            string // compartido con el código de producto
	Name            string
	Type            string
	Quantity        decimal.Decimal
	Unit            string
	Location        string
	SafetyThreshold decimal.Decimal
	Status          string
	UpdatedAt       time.Time
}
