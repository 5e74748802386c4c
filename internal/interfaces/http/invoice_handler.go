package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
)

// InvoiceHandler facturas y pagos (protegido).
type InvoiceHandler struct {
	invoices *billing.InvoiceUseCase
	payments *billing.PaymentUseCase
	v        *requestValidator
	errs     errorMapper
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(invoices *billing.InvoiceUseCase, payments *billing.PaymentUseCase, v *requestValidator, errs errorMapper) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, payments: payments, v: v, errs: errs}
}

// Create godoc
// @Summary      Crear factura
// @Description  Calcula subtotal, descuentos, impuestos y total a partir de los ítems; asigna el
//
//	número F-{año}-{consecutivo} y deja la factura Pendiente con saldo = total.
//
// @Tags         facturas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateInvoiceRequest  true  "paciente, ítems, impuestos y datos EPS"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/facturas [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := decodeBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	// Errores de formato y de reglas de negocio se reportan juntos.
	if err := h.v.Struct(&in); err != nil {
		return h.errs.respond(c, withFields(err, h.invoices.DraftErrors(in)))
	}
	inv, err := h.invoices.CreateInvoice(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// List godoc
// @Summary      Listar facturas
// @Tags         facturas
// @Security     Bearer
// @Produce      json
// @Param        estado       query  string  false  "Pendiente | Parcial | Pagada | Cancelada"
// @Param        paciente_id  query  string  false  "ID del paciente"
// @Param        page         query  int     false  "Página (desde 1)"
// @Param        limit        query  int     false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.InvoiceListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/facturas [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	in := dto.ListInvoicesRequest{
		PageRequest: dto.PageRequest{Page: c.QueryInt("page"), Limit: c.QueryInt("limit")},
		Status:      c.Query("estado"),
		PatientID:   c.Query("paciente_id"),
	}
	if err := h.v.Struct(&in); err != nil {
		return h.errs.respond(c, err)
	}
	out, err := h.invoices.ListInvoices(c.UserContext(), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de factura
// @Description  Incluye paciente, ítems, pagos y el registro de factura electrónica si existe.
// @Tags         facturas
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.invoices.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(inv)
}

// Update godoc
// @Summary      Actualizar metadatos de la factura
// @Description  Solo observaciones, fecha de vencimiento y autorización EPS. Montos e ítems son inmutables.
// @Tags         facturas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "ID de la factura"
// @Param        body  body      dto.UpdateInvoiceRequest  true  "campos a modificar"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/facturas/{id} [put]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if err := h.v.parseBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	inv, err := h.invoices.UpdateInvoice(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(inv)
}

// Cancel godoc
// @Summary      Cancelar factura
// @Description  Requiere rol admin o facturador. Si hay abonos, reembolso_confirmado debe ser true.
// @Tags         facturas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "ID de la factura"
// @Param        body  body      dto.CancelInvoiceRequest  true  "motivo"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/cancelar [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelInvoiceRequest
	if err := h.v.parseBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	inv, err := h.invoices.CancelInvoice(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(inv)
}

// RegisterPayment godoc
// @Summary      Registrar pago
// @Description  Aplica el pago bajo bloqueo de la factura; pasa a Parcial o Pagada según el saldo.
// @Tags         pagos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "ID de la factura"
// @Param        body  body      dto.RegisterPaymentRequest  true  "monto y medio de pago"
// @Success      201   {object}  dto.PaymentResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/pagos [post]
func (h *InvoiceHandler) RegisterPayment(c *fiber.Ctx) error {
	var in dto.RegisterPaymentRequest
	if err := h.v.parseBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	res, err := h.payments.RegisterPayment(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// ListPayments godoc
// @Summary      Pagos de la factura
// @Tags         pagos
// @Security     Bearer
// @Produce      json
// @Param        id   path     string  true  "ID de la factura"
// @Success      200  {array}   dto.PaymentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/pagos [get]
func (h *InvoiceHandler) ListPayments(c *fiber.Ctx) error {
	list, err := h.payments.ListPayments(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(list)
}
