package repository

import "github.com/yms2/mes-core/internal/domain/entity"

// ProductRepository puerto de lectura del maestro de productos.
// El núcleo no crea ni modifica productos; eso vive en la capa CRUD excluida.
type ProductRepository interface {
	// GetByCode devuelve el producto o nil si no existe.
	GetByCode(code string) (*entity.Product, error)
}
