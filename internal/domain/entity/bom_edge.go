package entity

import "github.com/shopspring/decimal"

// BomEdge representa una relación padre→hijo del BOM (lista de materiales).
// Level es informativo: se recalcula en la explosión, no es autoritativo.
// El grafo almacenado puede contener ciclos (el sistema origen no los rechaza
// al insertar); la traversía se defiende en tiempo de lectura.
type BomEdge struct {
	ParentCode        string
	ChildCode         string
	QuantityPerParent decimal.Decimal // cantidad de hijo por unidad de padre (> 0)
	Unit              string
	Level             int
}
