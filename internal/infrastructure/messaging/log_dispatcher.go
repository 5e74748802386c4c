package messaging

import (
	"context"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

var _ billing.EmailDispatcher = (*LogDispatcher)(nil)

// LogDispatcher solo registra la solicitud. Se usa cuando RABBITMQ_URL está vacío.
type LogDispatcher struct {
	log *logger.Logger
}

// NewLogDispatcher construye el despachador de desarrollo.
func NewLogDispatcher(log *logger.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Dispatch(_ context.Context, req billing.EmailRequest) error {
	d.log.Info().
		Str("factura_id", req.InvoiceID).
		Str("destinatario", req.To).
		Str("asunto", req.Subject).
		Str("enlace_pdf", req.PDFLink).
		Msg("correo no enviado: RabbitMQ no configurado")
	return nil
}
