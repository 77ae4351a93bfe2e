package inventory

import (
	"context"

	"github.com/yms2/mes-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la frontera transaccional única del núcleo:
// libro mayor, lote y log de auditoría del mismo intento se escriben dentro de
// la misma tx, de modo que un fallo en el segundo paso revierte el primero.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		lotRepo repository.LotRepository,
		auditRepo repository.AdjustmentRepository,
	) error) error
}
