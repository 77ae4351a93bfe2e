package repository

import (
	"context"

	"github.com/yms2/mes-core/internal/domain/entity"
)

// InventoryRepository puerto del libro mayor de inventario (cantidad actual por
// código). Toda mutación de cantidad debe hacerse dentro de una transacción con
// la fila bloqueada (GetForUpdate) para serializar escritores del mismo código.
type InventoryRepository interface {
	// Get devuelve el registro o nil si no existe.
	Get(code string) (*entity.InventoryRecord, error)
	// GetForUpdate obtiene el registro bloqueando la fila (SELECT ... FOR UPDATE).
	// Devuelve nil si no existe; el caller decide si lo crea perezosamente.
	GetForUpdate(code string) (*entity.InventoryRecord, error)
	// Upsert inserta o actualiza el registro completo.
	Upsert(rec *entity.InventoryRecord) error
	// List lista registros, opcionalmente filtrados por código o nombre parcial.
	List(ctx context.Context, codeOrName string, limit, offset int) ([]*entity.InventoryRecord, error)
}
