package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentEntryDTO entrada del log de ajustes en respuestas.
type AdjustmentEntryDTO struct {
	ID             string          `json:"id"`
	InventoryCode  string          `json:"inventory_code"`
	Name           string          `json:"name,omitempty"`
	Type           string          `json:"type"`
	BeforeQuantity decimal.Decimal `json:"before_quantity"`
	AfterQuantity  decimal.Decimal `json:"after_quantity"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	Reason         string          `json:"reason,omitempty"`
	Status         string          `json:"status"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// StatisticsDTO agregados del log para un filtro dado.
type StatisticsDTO struct {
	Count        int64           `json:"count"`
	TotalChanged decimal.Decimal `json:"total_changed"`
	AvgChange    decimal.Decimal `json:"avg_change"`
	SuccessCount int64           `json:"success_count"`
	FailureCount int64           `json:"failure_count"`
}

// PeriodSummaryRow resumen de movimientos por código para un período.
// CurrentQuantity = PreviousQuantity + Inbound − Outbound + Adjustment; debe
// coincidir con la cantidad viva del libro mayor al cierre del período.
type PeriodSummaryRow struct {
	Code               string          `json:"code"`
	Name               string          `json:"name,omitempty"`
	PreviousQuantity   decimal.Decimal `json:"previous_quantity"`
	InboundQuantity    decimal.Decimal `json:"inbound_quantity"`
	InboundCount       int             `json:"inbound_count"`
	OutboundQuantity   decimal.Decimal `json:"outbound_quantity"` // valor absoluto
	OutboundCount      int             `json:"outbound_count"`
	AdjustmentQuantity decimal.Decimal `json:"adjustment_quantity"` // entradas SET (delta con signo)
	AdjustmentCount    int             `json:"adjustment_count"`
	CurrentQuantity    decimal.Decimal `json:"current_quantity"`
}

// StockStatusRow vista de estado actual de inventario con alerta de seguridad.
type StockStatusRow struct {
	Code            string          `json:"code"`
	Name            string          `json:"name,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit,omitempty"`
	Location        string          `json:"location,omitempty"`
	SafetyThreshold decimal.Decimal `json:"safety_threshold"`
	BelowSafety     bool            `json:"below_safety"`
}
