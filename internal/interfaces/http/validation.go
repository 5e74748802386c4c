package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-clinica/internal/domain"
)

// requestValidator valida los DTO por sus tags y reporta los campos con su nombre JSON.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return &requestValidator{v: v}
}

// Struct devuelve *domain.ValidationError con todos los campos inválidos, o nil.
func (rv *requestValidator) Struct(s interface{}) error {
	err := rv.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return domain.NewValidationError(fields)
}

// fieldPath "items[0].tipo" a partir del namespace "CreateInvoiceRequest.items[0].tipo".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	// Los campos de structs embebidos (PageRequest) aparecen con el nombre del tipo.
	return strings.TrimPrefix(ns, "PageRequest.")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "debe tener al menos " + fe.Param() + " elemento(s)"
		}
		if fe.Kind() == reflect.String {
			return "debe tener al menos " + fe.Param() + " caracteres"
		}
		return "debe ser mayor o igual a " + fe.Param()
	case "max":
		if fe.Kind() == reflect.Slice {
			return "admite máximo " + fe.Param() + " elementos"
		}
		if fe.Kind() == reflect.String {
			return "admite máximo " + fe.Param() + " caracteres"
		}
		return "debe ser menor o igual a " + fe.Param()
	case "oneof":
		return "valor no permitido; use uno de: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "correo electrónico inválido"
	}
	return "valor inválido (" + fe.Tag() + ")"
}

// parseBody decodifica el cuerpo JSON y lo valida.
func (rv *requestValidator) parseBody(c *fiber.Ctx, out interface{}) error {
	if err := decodeBody(c, out); err != nil {
		return err
	}
	return rv.Struct(out)
}

func decodeBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return domain.NewValidationError([]domain.FieldError{{Field: "body", Message: "cuerpo vacío"}})
	}
	if err := c.BodyParser(out); err != nil {
		return domain.NewValidationError([]domain.FieldError{{Field: "body", Message: "JSON inválido: " + err.Error()}})
	}
	return nil
}

// withFields agrega a un *domain.ValidationError los campos extra que aún no reporta.
// Cualquier otro error se devuelve igual.
func withFields(err error, extra []domain.FieldError) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	seen := make(map[string]bool, len(verr.Fields))
	fields := append([]domain.FieldError(nil), verr.Fields...)
	for _, f := range fields {
		seen[f.Field] = true
	}
	for _, f := range extra {
		if !seen[f.Field] {
			seen[f.Field] = true
			fields = append(fields, f)
		}
	}
	return domain.NewValidationError(fields)
}

// parseOptionalBody como parseBody, pero un cuerpo vacío equivale a "{}".
func (rv *requestValidator) parseOptionalBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return rv.Struct(out)
	}
	return rv.parseBody(c, out)
}
