package ledger

import (
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/internal/domain/entity"
)

// TransitionOutcome resultado de evaluar un cambio de estado DIAN.
type TransitionOutcome int

const (
	// TransitionApply el cambio es válido y debe persistirse.
	TransitionApply TransitionOutcome = iota
	// TransitionNoop el registro ya está en el estado recibido.
	TransitionNoop
	// TransitionAnomaly cambio no monótono: se registra en el log y se ignora.
	TransitionAnomaly
)

// EvaluateAuthorityTransition solo admite PENDIENTE -> ACEPTADA | RECHAZADA.
func EvaluateAuthorityTransition(from, to entity.AuthorityStatus) TransitionOutcome {
	if from == to {
		return TransitionNoop
	}
	if from == entity.AuthorityStatusPending &&
		(to == entity.AuthorityStatusAccepted || to == entity.AuthorityStatusRejected) {
		return TransitionApply
	}
	return TransitionAnomaly
}

// EmissionDecision qué hacer ante una solicitud de emisión.
type EmissionDecision int

const (
	// EmissionSubmit enviar el documento a la DIAN.
	EmissionSubmit EmissionDecision = iota
	// EmissionReturnExisting devolver el registro actual sin reenviar.
	EmissionReturnExisting
)

// DecideEmission las facturas canceladas no se emiten. Un registro ACEPTADA o PENDIENTE
// se devuelve tal cual; sin registro o RECHAZADA se (re)envía.
func DecideEmission(inv *entity.Invoice, record *entity.ElectronicInvoice) (EmissionDecision, error) {
	if inv.Status == entity.InvoiceStatusCancelled {
		return EmissionSubmit, &domain.InvalidStateError{Current: string(inv.Status), Operation: "emitir electrónicamente"}
	}
	if record == nil || record.Status == entity.AuthorityStatusRejected {
		return EmissionSubmit, nil
	}
	return EmissionReturnExisting, nil
}
