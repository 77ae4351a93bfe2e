package dto

import "github.com/shopspring/decimal"

// ExplodeRequest body para POST /api/bom/explode.
type ExplodeRequest struct {
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// RequirementLineDTO línea consolidada de la explosión, enriquecida con datos
// del maestro de productos y el stock actual. Producto o inventario faltantes
// dejan los campos de enriquecimiento en cero; la explosión no se aborta.
type RequirementLineDTO struct {
	Level           int             `json:"level"`
	ParentCode      string          `json:"parent_code,omitempty"`
	ChildCode       string          `json:"child_code"`
	ProductName     string          `json:"product_name,omitempty"`
	UnitQuantity    decimal.Decimal `json:"unit_quantity"`
	TotalQuantity   decimal.Decimal `json:"total_quantity"`
	Unit            string          `json:"unit,omitempty"`
	Price           decimal.Decimal `json:"price"`
	CurrentStock    decimal.Decimal `json:"current_stock"`
	SafetyThreshold decimal.Decimal `json:"safety_threshold"`
	Shortage        decimal.Decimal `json:"shortage"` // requerido - stock actual, piso en 0
}

// ExplosionWarningDTO rama cortada durante la traversía (ciclo o profundidad).
type ExplosionWarningDTO struct {
	Kind string   `json:"kind"` // CYCLE | DEPTH
	Code string   `json:"code"`
	Path []string `json:"path"`
}

// ExplodeResponse respuesta de la explosión BOM.
type ExplodeResponse struct {
	RootCode     string                `json:"root_code"`
	RootQuantity decimal.Decimal       `json:"root_quantity"`
	Lines        []RequirementLineDTO  `json:"lines"`
	Warnings     []ExplosionWarningDTO `json:"warnings,omitempty"`
}
