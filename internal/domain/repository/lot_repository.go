package repository

import "github.com/yms2/mes-core/internal/domain/entity"

// LotRepository puerto de cantidades por (producto, lote). Misma disciplina de
// bloqueo que el libro mayor: mutar solo con la fila bloqueada y dentro de la
// transacción que también toca el registro de inventario del producto.
type LotRepository interface {
	// Get devuelve el lote o nil si no existe.
	Get(productCode, lotCode string) (*entity.LotRecord, error)
	// GetForUpdate obtiene el lote bloqueando la fila. Devuelve nil si no existe.
	GetForUpdate(productCode, lotCode string) (*entity.LotRecord, error)
	// Upsert inserta o actualiza el lote.
	Upsert(lot *entity.LotRecord) error
	// ListByProduct lista los lotes de un producto (incluye los que están en cero).
	ListByProduct(productCode string) ([]*entity.LotRecord, error)
}
