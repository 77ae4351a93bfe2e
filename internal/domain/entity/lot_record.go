package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotRecord cantidad por (producto, lote) para trazabilidad de recepciones y
// producción. Se crea en la primera recepción del lote; un lote en cero no se
// elimina, queda como historia.
type LotRecord struct {
	ProductCode     string
	LotCode         string
	Quantity        decimal.Decimal // nunca negativa
	Unit            string
	Warehouse       string
	StorageLocation string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
