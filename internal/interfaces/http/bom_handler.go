package http

import (
	"github.com/gofiber/fiber/v2"
	appbom "github.com/yms2/mes-core/internal/application/bom"
	"github.com/yms2/mes-core/internal/application/dto"
)

// BomHandler maneja las peticiones HTTP de explosión de BOM (protegido).
type BomHandler struct {
	uc *appbom.ExplodeUseCase
}

// NewBomHandler construye el handler.
func NewBomHandler(uc *appbom.ExplodeUseCase) *BomHandler {
	return &BomHandler{uc: uc}
}

// Explode godoc
// @Summary      Explosión de BOM
// @Description  Expande product_code × quantity en líneas de requerimiento
//
//	consolidadas por componente, con stock actual y faltante. Los ciclos y el
//	exceso de profundidad salen como warnings, no como error.
//
// @Tags         bom
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExplodeRequest  true  "product_code, quantity (> 0)"
// @Success      200   {object}  dto.ExplodeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/bom/explode [post]
func (h *BomHandler) Explode(c *fiber.Ctx) error {
	var in dto.ExplodeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.Explode(c.Context(), in.ProductCode, in.Quantity)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(res)
}
