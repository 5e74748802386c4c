package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/pkg/jwt"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Invoices  *billing.InvoiceUseCase
	Payments  *billing.PaymentUseCase
	Emission  *billing.EmissionUseCase
	Documents *billing.DocumentUseCase
	RIPS      *billing.RIPSUseCase
	JWTSecret string
	Log       *logger.Logger
	// MetricsHandler se monta en /metrics si no es nil.
	MetricsHandler http.Handler
	ServiceName    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	errs := errorMapper{log: deps.Log}
	v := newRequestValidator()

	// Operativas (público)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")
	facturas := api.Group("/facturas", AuthMiddleware(deps.JWTSecret))

	invoiceHandler := NewInvoiceHandler(deps.Invoices, deps.Payments, v, errs)
	electronicHandler := NewElectronicHandler(deps.Emission, v, errs)
	documentHandler := NewDocumentHandler(deps.Documents, v, errs)
	ripsHandler := NewRIPSHandler(deps.RIPS, v, errs)

	billingRoles := RequireRole(jwt.RoleAdmin, jwt.RoleBiller)

	// Rutas fijas antes de /:id
	facturas.Get("/pendientes-emision", electronicHandler.PendingEmission)
	facturas.Get("/errores-emision", electronicHandler.EmissionErrors)
	facturas.Post("/rips/generar", billingRoles, ripsHandler.Export)

	facturas.Get("/", invoiceHandler.List)
	facturas.Post("/", invoiceHandler.Create)
	facturas.Get("/:id", invoiceHandler.GetByID)
	facturas.Put("/:id", invoiceHandler.Update)
	facturas.Post("/:id/cancelar", billingRoles, invoiceHandler.Cancel)
	facturas.Post("/:id/pagos", invoiceHandler.RegisterPayment)
	facturas.Get("/:id/pagos", invoiceHandler.ListPayments)

	facturas.Post("/:id/emitir-electronica", electronicHandler.Emit)
	facturas.Get("/:id/estado-dian", electronicHandler.Status)
	facturas.Post("/:id/estado-dian", electronicHandler.Callback)
	facturas.Get("/:id/errores-dian", electronicHandler.InvoiceErrors)

	facturas.Get("/:id/pdf", documentHandler.PDF)
	facturas.Get("/:id/pdf-electronico", documentHandler.ElectronicPDF)
	facturas.Post("/:id/enviar-email", documentHandler.SendEmail)
}
