package dto

import (
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/pkg/money"
)

// RegisterPaymentRequest body para POST /api/facturas/:id/pagos.
type RegisterPaymentRequest struct {
	Amount       money.Money `json:"monto"`
	Method       string      `json:"metodo_pago" validate:"required,oneof=Efectivo Tarjeta Transferencia EPS Otro"`
	Reference    string      `json:"referencia,omitempty" validate:"max=100"`
	Observations string      `json:"observaciones,omitempty" validate:"max=1000"`
}

// PaymentResponse pago registrado.
type PaymentResponse struct {
	ID           string      `json:"id"`
	Amount       money.Money `json:"monto"`
	Method       string      `json:"metodoPago"`
	Reference    string      `json:"referencia,omitempty"`
	Observations string      `json:"observaciones,omitempty"`
	RecordedBy   string      `json:"registradoPor,omitempty"`
	RecordedAt   time.Time   `json:"fechaPago"`
}

// NewPaymentResponse mapea la entidad.
func NewPaymentResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		Amount:       p.Amount,
		Method:       string(p.Method),
		Reference:    p.Reference,
		Observations: p.Observations,
		RecordedBy:   p.RecordedBy,
		RecordedAt:   p.RecordedAt,
	}
}

// PaymentResultResponse resultado de registrar un pago: saldo y estado nuevos.
type PaymentResultResponse struct {
	Payment    PaymentResponse `json:"pago"`
	BalanceDue money.Money     `json:"saldoPendiente"`
	Status     string          `json:"estado"`
}
