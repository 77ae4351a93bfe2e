package dto

import "github.com/shopspring/decimal"

// ChangeStockRequest body para POST /api/inventory/change.
type ChangeStockRequest struct {
	Code   string          `json:"code"`
	Delta  decimal.Decimal `json:"delta"` // positivo entrada, negativo salida
	Reason string          `json:"reason"`
}

// SetStockRequest body para POST /api/inventory/set.
type SetStockRequest struct {
	Code     string          `json:"code"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// ChangeStockBatchRequest body para POST /api/inventory/change-batch.
// Cada ítem se aplica de forma independiente: los fallos no revierten al resto.
type ChangeStockBatchRequest struct {
	Items []ChangeStockRequest `json:"items"`
}

// InventoryRecordDTO registro del libro mayor en respuestas.
type InventoryRecordDTO struct {
	Code            string          `json:"code"`
	Name            string          `json:"name,omitempty"`
	Type            string          `json:"type,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit,omitempty"`
	Location        string          `json:"location,omitempty"`
	SafetyThreshold decimal.Decimal `json:"safety_threshold"`
	Status          string          `json:"status,omitempty"`
}

// BatchFailureDTO ítem fallido de un lote (batch) con el motivo.
type BatchFailureDTO struct {
	Code    string          `json:"code"`
	Delta   decimal.Decimal `json:"delta"`
	Message string          `json:"message"`
}

// BatchResultDTO resultado de ChangeMany: éxito parcial permitido y esperado.
type BatchResultDTO struct {
	Succeeded []InventoryRecordDTO `json:"succeeded"`
	Failed    []BatchFailureDTO    `json:"failed"`
}

// ReceiveLotRequest body para POST /api/inventory/lots/receive.
type ReceiveLotRequest struct {
	ProductCode     string          `json:"product_code"`
	LotCode         string          `json:"lot_code"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit,omitempty"`
	Warehouse       string          `json:"warehouse,omitempty"`
	StorageLocation string          `json:"storage_location,omitempty"`
	Production      bool            `json:"production,omitempty"` // entrada por producción
	Reason          string          `json:"reason,omitempty"`
}

// ConsumeLotRequest body para POST /api/inventory/lots/consume.
type ConsumeLotRequest struct {
	ProductCode string          `json:"product_code"`
	LotCode     string          `json:"lot_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason,omitempty"`
}

// LotRecordDTO lote en respuestas.
type LotRecordDTO struct {
	ProductCode     string          `json:"product_code"`
	LotCode         string          `json:"lot_code"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit,omitempty"`
	Warehouse       string          `json:"warehouse,omitempty"`
	StorageLocation string          `json:"storage_location,omitempty"`
	Status          string          `json:"status,omitempty"`
}

// ReviseTransactionRequest body para los endpoints de reconciliación (edición
// de una recepción o remisión ya aplicada). LotCode vacío = sin manejo de lote.
type ReviseTransactionRequest struct {
	TransactionCode string          `json:"transaction_code"`
	ProductCode     string          `json:"product_code"`
	LotCode         string          `json:"lot_code,omitempty"`
	OldQuantity     decimal.Decimal `json:"old_quantity"`
	NewQuantity     decimal.Decimal `json:"new_quantity"`
	Unit            string          `json:"unit,omitempty"`
	Warehouse       string          `json:"warehouse,omitempty"`
	StorageLocation string          `json:"storage_location,omitempty"`
}

// CancelTransactionRequest body para los endpoints de anulación (borrado de la
// transacción origen: solo se revierte el efecto, sin reaplicación).
type CancelTransactionRequest struct {
	TransactionCode string          `json:"transaction_code"`
	ProductCode     string          `json:"product_code"`
	LotCode         string          `json:"lot_code,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
}
