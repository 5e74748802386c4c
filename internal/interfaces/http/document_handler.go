package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
)

// DocumentHandler PDFs y correo de la factura.
type DocumentHandler struct {
	documents *billing.DocumentUseCase
	v         *requestValidator
	errs      errorMapper
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(documents *billing.DocumentUseCase, v *requestValidator, errs errorMapper) *DocumentHandler {
	return &DocumentHandler{documents: documents, v: v, errs: errs}
}

// PDF godoc
// @Summary      PDF de la factura
// @Tags         documentos
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/pdf [get]
func (h *DocumentHandler) PDF(c *fiber.Ctx) error {
	data, name, err := h.documents.InvoicePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return sendPDF(c, data, name)
}

// ElectronicPDF godoc
// @Summary      Representación gráfica de la factura electrónica
// @Description  Incluye CUFE y código QR. Requiere que la factura se haya enviado a la DIAN.
// @Tags         documentos
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/pdf-electronico [get]
func (h *DocumentHandler) ElectronicPDF(c *fiber.Ctx) error {
	data, name, err := h.documents.ElectronicPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return sendPDF(c, data, name)
}

// SendEmail godoc
// @Summary      Enviar factura por correo
// @Description  Encola el correo; sin email en el cuerpo se usa el del paciente.
// @Tags         documentos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                true   "ID de la factura"
// @Param        body  body      dto.SendEmailRequest  false  "destinatario opcional"
// @Success      202   {object}  dto.SendEmailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/enviar-email [post]
func (h *DocumentHandler) SendEmail(c *fiber.Ctx) error {
	var in dto.SendEmailRequest
	if err := h.v.parseOptionalBody(c, &in); err != nil {
		return h.errs.respond(c, err)
	}
	out, err := h.documents.SendEmail(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

func sendPDF(c *fiber.Ctx, data []byte, name string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+name+`"`)
	return c.Send(data)
}
