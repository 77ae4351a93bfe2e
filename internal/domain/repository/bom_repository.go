package repository

import "github.com/yms2/mes-core/internal/domain/entity"

// BomRepository puerto de lectura del grafo BOM. El grafo es de solo lectura
// para el núcleo (lo muta la capa CRUD excluida), por lo que se lee sin locks.
// La firma Children satisface bom.Source directamente.
type BomRepository interface {
	// Children devuelve las aristas salientes de un padre (vacío si no tiene BOM).
	Children(parentCode string) ([]entity.BomEdge, error)
}
