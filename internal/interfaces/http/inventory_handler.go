package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yms2/mes-core/internal/application/dto"
	"github.com/yms2/mes-core/internal/application/inventory"
	"github.com/yms2/mes-core/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP del libro mayor de inventario,
// los lotes y la reconciliación de transacciones origen (protegido).
type InventoryHandler struct {
	ledger     *inventory.AdjustStockUseCase
	lots       *inventory.LotUseCase
	reconciler *inventory.ReconcileUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	ledger *inventory.AdjustStockUseCase,
	lots *inventory.LotUseCase,
	reconciler *inventory.ReconcileUseCase,
) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, lots: lots, reconciler: reconciler}
}

// Change godoc
// @Summary      Ajustar cantidad por delta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangeStockRequest  true  "code, delta (≠ 0), reason"
// @Success      200   {object}  dto.InventoryRecordDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/change [post]
func (h *InventoryHandler) Change(c *fiber.Ctx) error {
	var in dto.ChangeStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.ledger.Change(c.Context(), in.Code, in.Delta, in.Reason, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toInventoryRecordDTO(rec))
}

// Set godoc
// @Summary      Fijar cantidad absoluta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetStockRequest  true  "code, quantity (>= 0), reason"
// @Success      200   {object}  dto.InventoryRecordDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/set [post]
func (h *InventoryHandler) Set(c *fiber.Ctx) error {
	var in dto.SetStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.ledger.Set(c.Context(), in.Code, in.Quantity, in.Reason, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toInventoryRecordDTO(rec))
}

// ChangeBatch godoc
// @Summary      Ajustar varios códigos en un solo llamado
// @Description  Cada ítem se aplica de forma independiente; la respuesta separa
//
//	los que se aplicaron de los rechazados con su causa. El éxito parcial es
//	una respuesta 200, no un error.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangeStockBatchRequest  true  "items"
// @Success      200   {object}  dto.BatchResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/change-batch [post]
func (h *InventoryHandler) ChangeBatch(c *fiber.Ctx) error {
	var in dto.ChangeStockBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items vacío"})
	}
	reqs := make([]inventory.ChangeRequest, 0, len(in.Items))
	for _, item := range in.Items {
		reqs = append(reqs, inventory.ChangeRequest{Code: item.Code, Delta: item.Delta, Reason: item.Reason})
	}
	res := h.ledger.ChangeMany(c.Context(), reqs, GetUserID(c))

	out := dto.BatchResultDTO{
		Succeeded: make([]dto.InventoryRecordDTO, 0, len(res.Succeeded)),
		Failed:    make([]dto.BatchFailureDTO, 0, len(res.Failed)),
	}
	for _, rec := range res.Succeeded {
		out.Succeeded = append(out.Succeeded, toInventoryRecordDTO(rec))
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, dto.BatchFailureDTO{Code: f.Code, Delta: f.Delta, Message: f.Message})
	}
	return c.JSON(out)
}

// ReceiveLot godoc
// @Summary      Recepción de lote
// @Description  Suma la cantidad al lote (creándolo en su primera recepción) y
//
//	al libro mayor del producto, en una sola transacción.
//
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveLotRequest  true  "product_code, lot_code, quantity (> 0)"
// @Success      201   {object}  dto.LotRecordDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/receive [post]
func (h *InventoryHandler) ReceiveLot(c *fiber.Ctx) error {
	var in dto.ReceiveLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lot, err := h.lots.Receive(c.Context(), inventory.ReceiveLotInput{
		ProductCode:     in.ProductCode,
		LotCode:         in.LotCode,
		Quantity:        in.Quantity,
		Unit:            in.Unit,
		Warehouse:       in.Warehouse,
		StorageLocation: in.StorageLocation,
		Production:      in.Production,
		Reason:          in.Reason,
		Actor:           GetUserID(c),
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLotRecordDTO(lot))
}

// ConsumeLot godoc
// @Summary      Consumo de lote
// @Description  Descuenta la cantidad del lote y del libro mayor del producto,
//
//	en una sola transacción. El lote en cero queda como historia.
//
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeLotRequest  true  "product_code, lot_code, quantity (> 0)"
// @Success      200   {object}  dto.LotRecordDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/consume [post]
func (h *InventoryHandler) ConsumeLot(c *fiber.Ctx) error {
	var in dto.ConsumeLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lot, err := h.lots.Consume(c.Context(), in.ProductCode, in.LotCode, in.Quantity, in.Reason, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toLotRecordDTO(lot))
}

// ListLots godoc
// @Summary      Lotes de un producto
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de producto"
// @Success      200   {array}  dto.LotRecordDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{code} [get]
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	lots, err := h.lots.ListByProduct(c.Params("code"))
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.LotRecordDTO, 0, len(lots))
	for _, lot := range lots {
		out = append(out, toLotRecordDTO(lot))
	}
	return c.JSON(out)
}

// ReviseReceiving godoc
// @Summary      Corregir una recepción ya aplicada
// @Description  Revierte el efecto original (−old) y reaplica la nueva cantidad
//
//	(+new). Si la reversión falla, la reaplicación no corre y el error sale
//	con el contexto para corrección manual.
//
// @Tags         reconcile
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReviseTransactionRequest  true  "transaction_code, product_code, old_quantity, new_quantity"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile/receiving/revise [post]
func (h *InventoryHandler) ReviseReceiving(c *fiber.Ctx) error {
	in, err := parseRevise(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.reconciler.ReviseReceiving(c.Context(), in); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "recepción corregida"})
}

// ReviseDelivery godoc
// @Summary      Corregir una entrega ya aplicada
// @Tags         reconcile
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReviseTransactionRequest  true  "transaction_code, product_code, old_quantity, new_quantity"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile/delivery/revise [post]
func (h *InventoryHandler) ReviseDelivery(c *fiber.Ctx) error {
	in, err := parseRevise(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.reconciler.ReviseDelivery(c.Context(), in); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "entrega corregida"})
}

// CancelReceiving godoc
// @Summary      Anular una recepción eliminada
// @Tags         reconcile
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CancelTransactionRequest  true  "transaction_code, product_code, quantity"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile/receiving/cancel [post]
func (h *InventoryHandler) CancelReceiving(c *fiber.Ctx) error {
	in, err := parseCancel(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.reconciler.CancelReceiving(c.Context(), in); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "recepción anulada"})
}

// CancelDelivery godoc
// @Summary      Anular una entrega eliminada (devuelve el stock)
// @Tags         reconcile
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CancelTransactionRequest  true  "transaction_code, product_code, quantity"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile/delivery/cancel [post]
func (h *InventoryHandler) CancelDelivery(c *fiber.Ctx) error {
	in, err := parseCancel(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.reconciler.CancelDelivery(c.Context(), in); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "entrega anulada"})
}

func parseRevise(c *fiber.Ctx) (inventory.ReviseInput, error) {
	var in dto.ReviseTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return inventory.ReviseInput{}, err
	}
	return inventory.ReviseInput{
		TransactionCode: in.TransactionCode,
		ProductCode:     in.ProductCode,
		LotCode:         in.LotCode,
		OldQuantity:     in.OldQuantity,
		NewQuantity:     in.NewQuantity,
		Unit:            in.Unit,
		Warehouse:       in.Warehouse,
		StorageLocation: in.StorageLocation,
		Actor:           GetUserID(c),
	}, nil
}

func parseCancel(c *fiber.Ctx) (inventory.CancelInput, error) {
	var in dto.CancelTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return inventory.CancelInput{}, err
	}
	return inventory.CancelInput{
		TransactionCode: in.TransactionCode,
		ProductCode:     in.ProductCode,
		LotCode:         in.LotCode,
		Quantity:        in.Quantity,
		Actor:           GetUserID(c),
	}, nil
}

func toInventoryRecordDTO(rec *entity.InventoryRecord) dto.InventoryRecordDTO {
	return dto.InventoryRecordDTO{
		Code:            rec.Code,
		Name:            rec.Name,
		Type:            rec.Type,
		Quantity:        rec.Quantity,
		Unit:            rec.Unit,
		Location:        rec.Location,
		SafetyThreshold: rec.SafetyThreshold,
		Status:          rec.Status,
	}
}

func toLotRecordDTO(lot *entity.LotRecord) dto.LotRecordDTO {
	return dto.LotRecordDTO{
		ProductCode:     lot.ProductCode,
		LotCode:         lot.LotCode,
		Quantity:        lot.Quantity,
		Unit:            lot.Unit,
		Warehouse:       lot.Warehouse,
		StorageLocation: lot.StorageLocation,
		Status:          lot.Status,
	}
}
