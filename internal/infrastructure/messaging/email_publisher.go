// Package messaging publica las solicitudes de correo de factura en RabbitMQ. El servicio de
// correo de la clínica consume la cola y hace la entrega.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// Publisher subconjunto de *amqp091.Channel usado para publicar.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

var _ billing.EmailDispatcher = (*EmailPublisher)(nil)

// EmailPublisher implementa billing.EmailDispatcher sobre la cola por defecto (exchange "").
type EmailPublisher struct {
	ch    Publisher
	queue string
	log   *logger.Logger
	now   func() time.Time
}

// NewEmailPublisher construye el publicador sobre un canal abierto.
func NewEmailPublisher(ch Publisher, queue string, log *logger.Logger) *EmailPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &EmailPublisher{ch: ch, queue: queue, log: log, now: time.Now}
}

// Dispatch serializa la solicitud y la publica como mensaje persistente.
func (p *EmailPublisher) Dispatch(ctx context.Context, req billing.EmailRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("rabbitmq: serializar correo: %w", err)
	}
	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    req.InvoiceID + ":" + p.now().UTC().Format(time.RFC3339Nano),
		Timestamp:    p.now(),
		Type:         "factura.email",
		Headers: amqp091.Table{
			"factura_id": req.InvoiceID,
			"numero":     req.Number,
		},
		Body: body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return errors.Join(domain.ErrDependencyUnavailable, fmt.Errorf("rabbitmq: publicar en %s: %w", p.queue, err))
	}
	p.log.Debug().Str("cola", p.queue).Str("factura_id", req.InvoiceID).Msg("correo publicado")
	return nil
}

// Connection conexión y canal de RabbitMQ con la cola de correos declarada.
type Connection struct {
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

// Dial conecta, abre un canal y declara la cola durable.
func Dial(url, queue string) (*Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: conectar: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: abrir canal: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: declarar cola %s: %w", queue, err)
	}
	return &Connection{conn: conn, ch: ch}, nil
}

// Channel canal para NewEmailPublisher.
func (c *Connection) Channel() *amqp091.Channel { return c.ch }

// Close cierra canal y conexión.
func (c *Connection) Close() error {
	return errors.Join(c.ch.Close(), c.conn.Close())
}
