package postgres

import (
	"context"
	"fmt"

	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/internal/domain/repository"
)

var _ repository.BomRepository = (*BomRepo)(nil)

// BomRepo lectura del grafo BOM sobre PostgreSQL. El grafo solo lo muta la capa
// CRUD excluida, así que se lee sin locks.
type BomRepo struct {
	q Querier
}

// NewBomRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBomRepository(q Querier) *BomRepo {
	return &BomRepo{q: q}
}

// Children devuelve las aristas salientes de un padre, en orden estable por
// código de hijo para que la explosión sea determinista.
func (r *BomRepo) Children(parentCode string) ([]entity.BomEdge, error) {
	query := `
		SELECT parent_code, child_code, quantity_per_parent, unit, level
		FROM bom_edges WHERE parent_code = $1
		ORDER BY child_code`
	rows, err := r.q.Query(context.Background(), query, parentCode)
	if err != nil {
		return nil, fmt.Errorf("list bom edges: %w", err)
	}
	defer rows.Close()
	var edges []entity.BomEdge
	for rows.Next() {
		var e entity.BomEdge
		if err := rows.Scan(&e.ParentCode, &e.ChildCode, &e.QuantityPerParent, &e.Unit, &e.Level); err != nil {
			return nil, fmt.Errorf("scan bom edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
