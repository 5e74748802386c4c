package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
)

// RIPSHandler exportación RIPS (admin y facturador).
type RIPSHandler struct {
	rips *billing.RIPSUseCase
	v    *requestValidator
	errs errorMapper
}

// NewRIPSHandler construye el handler.
func NewRIPSHandler(rips *billing.RIPSUseCase, v *requestValidator, errs errorMapper) *RIPSHandler {
	return &RIPSHandler{rips: rips, v: v, errs: errs}
}

// Export godoc
// @Summary      Generar RIPS
// @Description  Un documento RIPS (Res. 2275/2023) por cada factura Pagada del lote. Las demás se
//
//	reportan en omitidas con su motivo. Si ninguna es exportable responde 422.
//
// @Tags         rips
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RIPSExportRequest  true  "IDs de facturas"
// @Success      200   {object}  dto.RIPSBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/facturas/rips/generar [post]
func (h *RIPSHandler) Export(c *fiber.Ctx) error {
	var in dto.RIPSExportRequest
	if err := h.v.parseBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	batch, err := h.rips.ExportBatch(c.UserContext(), in.InvoiceIDs)
	if err != nil {
		return h.errs.respond(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+batch.FileName()+`"`)
	return c.JSON(batch)
}
