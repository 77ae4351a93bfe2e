package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	appaudit "github.com/yms2/mes-core/internal/application/audit"
	"github.com/yms2/mes-core/internal/application/dto"
	"github.com/yms2/mes-core/internal/domain/entity"
	"github.com/yms2/mes-core/internal/domain/repository"
)

// AuditHandler lado de lectura del log de ajustes (protegido).
type AuditHandler struct {
	uc *appaudit.UseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *appaudit.UseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// Logs godoc
// @Summary      Consultar el log de ajustes
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        code    query  string  false  "Filtrar por código de inventario o lote"
// @Param        actor   query  string  false  "Filtrar por created_by"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {array}   dto.AdjustmentEntryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit/logs [get]
func (h *AuditHandler) Logs(c *fiber.Ctx) error {
	filter := repository.AdjustmentFilter{
		Code:  c.Query("code"),
		Actor: c.Query("actor"),
	}
	if from, ok, err := parseTimeQuery(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, se espera RFC3339"})
	} else if ok {
		filter.From = &from
	}
	if to, ok, err := parseTimeQuery(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, se espera RFC3339"})
	} else if ok {
		filter.To = &to
	}

	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	entries, err := h.uc.Query(c.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.AdjustmentEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAdjustmentEntryDTO(e))
	}
	return c.JSON(out)
}

// Statistics godoc
// @Summary      Agregados del log de ajustes
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        code   query  string  false  "Filtrar por código"
// @Param        actor  query  string  false  "Filtrar por created_by"
// @Param        from   query  string  false  "Desde (RFC3339)"
// @Param        to     query  string  false  "Hasta (RFC3339)"
// @Success      200  {object}  dto.StatisticsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit/statistics [get]
func (h *AuditHandler) Statistics(c *fiber.Ctx) error {
	filter := repository.AdjustmentFilter{
		Code:  c.Query("code"),
		Actor: c.Query("actor"),
	}
	if from, ok, err := parseTimeQuery(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, se espera RFC3339"})
	} else if ok {
		filter.From = &from
	}
	if to, ok, err := parseTimeQuery(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, se espera RFC3339"})
	} else if ok {
		filter.To = &to
	}

	stats, err := h.uc.Statistics(c.Context(), filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.StatisticsDTO{
		Count:        stats.Count,
		TotalChanged: stats.TotalChanged,
		AvgChange:    stats.AvgChange,
		SuccessCount: stats.SuccessCount,
		FailureCount: stats.FailureCount,
	})
}

// PeriodSummary godoc
// @Summary      Resumen de movimientos por período
// @Description  Por código: saldo previo, entradas, salidas, ajustes SET y saldo
//
//	al cierre, derivado exclusivamente del log de ajustes.
//
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true   "Desde (RFC3339)"
// @Param        to    query  string  true   "Hasta (RFC3339)"
// @Param        code  query  string  false  "Filtrar por código"
// @Success      200  {array}   dto.PeriodSummaryRow
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit/period-summary [get]
func (h *AuditHandler) PeriodSummary(c *fiber.Ctx) error {
	from, ok, err := parseTimeQuery(c, "from")
	if err != nil || !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from requerido (RFC3339)"})
	}
	to, ok, err := parseTimeQuery(c, "to")
	if err != nil || !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to requerido (RFC3339)"})
	}
	rows, err := h.uc.PeriodSummary(c.Context(), from, to, c.Query("code"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(rows)
}

// StockStatus godoc
// @Summary      Estado actual de stock con alerta de seguridad
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        q       query  string  false  "Código o nombre parcial"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {array}   dto.StockStatusRow
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit/stock-status [get]
func (h *AuditHandler) StockStatus(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	rows, err := h.uc.StockStatus(c.Context(), c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(rows)
}

// parseTimeQuery lee un query param RFC3339; ok=false si está ausente.
func parseTimeQuery(c *fiber.Ctx, key string) (time.Time, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func toAdjustmentEntryDTO(e *entity.AdjustmentEntry) dto.AdjustmentEntryDTO {
	return dto.AdjustmentEntryDTO{
		ID:             e.ID,
		InventoryCode:  e.InventoryCode,
		Name:           e.Name,
		Type:           e.Type,
		BeforeQuantity: e.BeforeQuantity,
		AfterQuantity:  e.AfterQuantity,
		QuantityChange: e.QuantityChange,
		Reason:         e.Reason,
		Status:         e.Status,
		ErrorMessage:   e.ErrorMessage,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}
