package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del maestro de materiales. El núcleo lo consume
// de solo lectura: el CRUD de productos vive en la capa excluida.
type Product struct {
	Code            string // código único del producto
	Name            string
	Type            string // FINISHED, SEMI_FINISHED, RAW_MATERIAL
	Unit            string
	Price           decimal.Decimal
	SafetyThreshold decimal.Decimal // stock de seguridad para alertas
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
