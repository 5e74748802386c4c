package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
)

// ElectronicHandler emisión de factura electrónica y seguimiento del estado DIAN.
type ElectronicHandler struct {
	emission *billing.EmissionUseCase
	v        *requestValidator
	errs     errorMapper
}

// NewElectronicHandler construye el handler.
func NewElectronicHandler(emission *billing.EmissionUseCase, v *requestValidator, errs errorMapper) *ElectronicHandler {
	return &ElectronicHandler{emission: emission, v: v, errs: errs}
}

// Emit godoc
// @Summary      Emitir factura electrónica
// @Description  Genera CUFE, XML UBL 2.1 firmado y lo envía a la DIAN. Idempotente: una factura
//
//	ya enviada (PENDIENTE o ACEPTADA) devuelve el registro existente. Un rechazo de la DIAN
//	responde 200 con estadoDian RECHAZADA y el motivo; se puede reintentar.
//
// @Tags         dian
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.ElectronicInvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/emitir-electronica [post]
func (h *ElectronicHandler) Emit(c *fiber.Ctx) error {
	rec, err := h.emission.Emit(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(rec)
}

// Status godoc
// @Summary      Consultar estado DIAN
// @Description  Si el registro sigue PENDIENTE consulta a la DIAN y aplica la transición.
// @Tags         dian
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.ElectronicInvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/estado-dian [get]
func (h *ElectronicHandler) Status(c *fiber.Ctx) error {
	rec, err := h.emission.FetchStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(rec)
}

// Callback godoc
// @Summary      Notificar estado DIAN
// @Description  Aplica un estado informado externamente. Las transiciones que contradicen un
//
//	estado final se ignoran y se devuelve el registro sin cambios.
//
// @Tags         dian
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                        true  "ID de la factura"
// @Param        body  body      dto.AuthorityCallbackRequest  true  "estado y motivo"
// @Success      200   {object}  dto.ElectronicInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/estado-dian [post]
func (h *ElectronicHandler) Callback(c *fiber.Ctx) error {
	var in dto.AuthorityCallbackRequest
	if err := h.v.parseBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	rec, err := h.emission.ApplyCallback(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(rec)
}

// PendingEmission godoc
// @Summary      Facturas pendientes de emisión
// @Tags         dian
// @Security     Bearer
// @Produce      json
// @Param        limit  query    int  false  "Máximo de resultados"
// @Success      200    {array}  dto.InvoiceResponse
// @Router       /api/facturas/pendientes-emision [get]
func (h *ElectronicHandler) PendingEmission(c *fiber.Ctx) error {
	list, err := h.emission.PendingEmission(c.UserContext(), c.QueryInt("limit"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(list)
}

// EmissionErrors godoc
// @Summary      Facturas rechazadas por la DIAN
// @Tags         dian
// @Security     Bearer
// @Produce      json
// @Param        limit  query    int  false  "Máximo de resultados"
// @Success      200    {array}  dto.InvoiceResponse
// @Router       /api/facturas/errores-emision [get]
func (h *ElectronicHandler) EmissionErrors(c *fiber.Ctx) error {
	list, err := h.emission.EmissionErrors(c.UserContext(), c.QueryInt("limit"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(list)
}

// InvoiceErrors godoc
// @Summary      Motivo de rechazo DIAN de una factura
// @Tags         dian
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.EmissionErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/errores-dian [get]
func (h *ElectronicHandler) InvoiceErrors(c *fiber.Ctx) error {
	out, err := h.emission.InvoiceEmissionErrors(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}
