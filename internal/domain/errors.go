package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrInvalidQuantity     = errors.New("cantidad inválida: el resultado sería negativo")
	ErrInsufficientStock   = errors.New("stock insuficiente en el lote")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia al actualizar inventario")
)
