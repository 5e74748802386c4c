package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-clinica/internal/application/dto"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

// errorMapper traduce la taxonomía de errores del dominio a status y cuerpo HTTP.
type errorMapper struct {
	log *logger.Logger
}

// respond escribe la respuesta de error. El orden importa: NoEligibleInvoicesError y
// ValidationError también satisfacen errors.Is(err, ErrInvalidInput).
func (m errorMapper) respond(c *fiber.Ctx, err error) error {
	status, body := m.classify(err)
	if status >= fiber.StatusInternalServerError {
		m.log.Error().Err(err).Str("ruta", c.Path()).Str("metodo", c.Method()).Int("status", status).Msg("error atendiendo la petición")
	}
	return c.Status(status).JSON(body)
}

func (m errorMapper) classify(err error) (int, dto.ErrorResponse) {
	var (
		verr *domain.ValidationError
		berr *domain.InsufficientBalanceError
		serr *domain.InvalidStateError
		terr *domain.AuthorityTransportError
		nerr *domain.NoEligibleInvoicesError
		perr *domain.PersistenceError
		ferr *fiber.Error
	)
	switch {
	case errors.As(err, &nerr):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "SIN_FACTURAS_ELEGIBLES", Message: nerr.Error(), Skipped: nerr.Skipped}
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: verr.Fields}
	case errors.As(err, &berr):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "SALDO_INSUFICIENTE", Message: berr.Error()}
	case errors.As(err, &serr):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ESTADO_INVALIDO", Message: serr.Error()}
	case errors.Is(err, domain.ErrEmissionInProgress):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMISION_EN_CURSO", Message: "la factura se está enviando a la DIAN; intente de nuevo en unos segundos"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.As(err, &terr):
		return fiber.StatusBadGateway, dto.ErrorResponse{Code: "DIAN_NO_DISPONIBLE", Message: "no fue posible comunicarse con la DIAN; la factura no se modificó y puede reintentar"}
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return fiber.StatusBadGateway, dto.ErrorResponse{Code: "DEPENDENCIA_NO_DISPONIBLE", Message: "un servicio externo no respondió; intente de nuevo"}
	case errors.As(err, &perr):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "ALMACENAMIENTO_NO_DISPONIBLE", Message: "almacenamiento no disponible; no se guardaron cambios"}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.As(err, &ferr):
		return ferr.Code, dto.ErrorResponse{Code: fiberCode(ferr.Code), Message: ferr.Message}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

func fiberCode(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusBadRequest:
		return "INVALID_BODY"
	}
	return "HTTP_ERROR"
}

// ErrorHandler handler global de fiber: errores no atendidos por los handlers y panics recuperados.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	m := errorMapper{log: log}
	return func(c *fiber.Ctx, err error) error {
		return m.respond(c, err)
	}
}
