package messaging

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

type canalFalso struct {
	exchange, key string
	msgs          []amqp091.Publishing
	err           error
}

func (c *canalFalso) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.exchange, c.key = exchange, key
	c.msgs = append(c.msgs, msg)
	return nil
}

var solicitud = billing.EmailRequest{
	InvoiceID: "f-1",
	Number:    "F-2026-00001",
	To:        "ana@example.com",
	Subject:   "Factura F-2026-00001 - Clínica",
	CUFE:      "abc123",
	PDFLink:   "https://clinica.example.com/api/facturas/f-1/pdf-electronico",
}

func TestEmailPublisher_PublicaMensajePersistente(t *testing.T) {
	ch := &canalFalso{}
	p := NewEmailPublisher(ch, "facturas.email", nil)
	p.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, p.Dispatch(context.Background(), solicitud))
	require.Len(t, ch.msgs, 1)
	assert.Equal(t, "", ch.exchange)
	assert.Equal(t, "facturas.email", ch.key)

	msg := ch.msgs[0]
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, "f-1", msg.Headers["factura_id"])

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "ana@example.com", body["destinatario"])
	assert.Equal(t, "abc123", body["cufe"])
	assert.Equal(t, solicitud.PDFLink, body["enlace_pdf"])
}

func TestEmailPublisher_FalloDelBroker(t *testing.T) {
	ch := &canalFalso{err: errors.New("channel/connection is not open")}
	err := NewEmailPublisher(ch, "facturas.email", nil).Dispatch(context.Background(), solicitud)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}

func TestLogDispatcher_RegistraSinFallar(t *testing.T) {
	var buf bytes.Buffer
	d := NewLogDispatcher(logger.NewWithWriter(&buf, "info"))
	require.NoError(t, d.Dispatch(context.Background(), solicitud))
	assert.Contains(t, buf.String(), "ana@example.com")
}
