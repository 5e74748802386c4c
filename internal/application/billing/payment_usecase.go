package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
	"github.com/jhoicas/facturacion-clinica/internal/domain/ledger"
	"github.com/jhoicas/facturacion-clinica/internal/domain/repository"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// PaymentUseCase registra abonos contra facturas.
type PaymentUseCase struct {
	txRunner    TxRunner
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	metrics     Metrics
	log         *logger.Logger
	now         Clock
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	metrics Metrics,
	log *logger.Logger,
	now Clock,
) *PaymentUseCase {
	return &PaymentUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		metrics:     orNoop(metrics),
		log:         log,
		now:         orNow(now),
	}
}

// RegisterPayment lee el saldo con la fila bloqueada, valida, agrega el pago y recalcula
// saldo y estado, todo en la misma transacción. Dos pagos concurrentes sobre la misma
// factura se serializan; nunca se aplica un sobrepago.
func (uc *PaymentUseCase) RegisterPayment(ctx context.Context, userID, invoiceID string, in dto.RegisterPaymentRequest) (*dto.PaymentResultResponse, error) {
	input := ledger.PaymentInput{
		Amount:       in.Amount,
		Method:       entity.PaymentMethod(in.Method),
		Reference:    in.Reference,
		Observations: in.Observations,
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		inv     *entity.Invoice
		payment *entity.Payment
	)
	err := uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.SequenceRepository,
	) error {
		var err error
		inv, err = invoiceRepo.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return storageErr("bloquear factura", err)
		}
		if inv == nil {
			return domain.ErrInvoiceNotFound
		}
		payment, err = ledger.ApplyPayment(inv, input, uc.now())
		if err != nil {
			return err
		}
		payment.ID = uuid.NewString()
		payment.RecordedBy = userID
		if err := paymentRepo.Append(ctx, payment); err != nil {
			return storageErr("registrar pago", err)
		}
		return storageErr("actualizar saldo", invoiceRepo.UpdateBalance(ctx, inv))
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.PaymentRegistered(payment.Method, inv.Status)
	uc.log.Info().
		Str("factura_id", inv.ID).
		Str("numero", inv.Number).
		Str("pago_id", payment.ID).
		Str("monto", payment.Amount.String()).
		Str("saldo", inv.BalanceDue.String()).
		Str("estado", string(inv.Status)).
		Msg("pago registrado")

	return &dto.PaymentResultResponse{
		Payment:    dto.NewPaymentResponse(payment),
		BalanceDue: inv.BalanceDue,
		Status:     string(inv.Status),
	}, nil
}

// ListPayments pagos de la factura en orden de registro. Factura inexistente: ErrInvoiceNotFound.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, invoiceID string) ([]dto.PaymentResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, storageErr("obtener factura", err)
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	payments, err := uc.paymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, storageErr("listar pagos", err)
	}
	out := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, dto.NewPaymentResponse(&payments[i]))
	}
	return out, nil
}
