package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrInvoiceNotFound       = fmt.Errorf("factura no encontrada: %w", ErrNotFound)
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrEmissionInProgress    = errors.New("la factura tiene una emisión electrónica en curso, intente de nuevo en unos segundos")
	ErrDependencyUnavailable = errors.New("servicio externo no disponible")
)

// FieldError describe un campo inválido.
type FieldError struct {
	Field   string `json:"campo"`
	Message string `json:"mensaje"`
}

// ValidationError agrupa todos los campos inválidos de una petición (no solo el primero).
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError construye el error a partir de la lista de campos; nil si la lista está vacía.
func NewValidationError(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "datos inválidos: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Has indica si el campo figura entre los errores.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// InsufficientBalanceError el pago excede el saldo pendiente de la factura.
type InsufficientBalanceError struct {
	Requested string
	Balance   string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("el monto %s excede el saldo pendiente de %s", e.Requested, e.Balance)
}

// InvalidStateError la operación no está permitida en el estado actual de la factura.
type InvalidStateError struct {
	Current   string
	Operation string
	Reason    string
}

func (e *InvalidStateError) Error() string {
	msg := fmt.Sprintf("no se puede %s una factura en estado %s", e.Operation, e.Current)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidStateError) Unwrap() error { return ErrConflict }

// AuthorityTransportError fallo de red o timeout hablando con la DIAN. Reintentable.
type AuthorityTransportError struct {
	Op  string
	Err error
}

func (e *AuthorityTransportError) Error() string {
	return fmt.Sprintf("dian: %s: %v", e.Op, e.Err)
}

func (e *AuthorityTransportError) Unwrap() error { return e.Err }

// PersistenceError el almacenamiento no está disponible o falló la escritura.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistencia: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SkippedInvoice factura omitida de un lote RIPS y su motivo.
type SkippedInvoice struct {
	InvoiceID string `json:"factura_id"`
	Number    string `json:"numero,omitempty"`
	Reason    string `json:"motivo"`
}

// NoEligibleInvoicesError ninguna factura del lote es exportable.
type NoEligibleInvoicesError struct {
	Skipped []SkippedInvoice
}

func (e *NoEligibleInvoicesError) Error() string {
	return fmt.Sprintf("ninguna de las %d facturas solicitadas es exportable a RIPS", len(e.Skipped))
}

func (e *NoEligibleInvoicesError) Unwrap() error { return ErrInvalidInput }
