package dian

import "fmt"

// pesos del módulo 11 de la DIAN, aplicados de derecha a izquierda sobre la base del NIT.
var nitWeights = []int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

// NITCheckDigit calcula el dígito de verificación de un NIT (sin el dígito).
func NITCheckDigit(nit string) (int, error) {
	base := OnlyDigits(nit)
	if base == "" || len(base) > len(nitWeights) {
		return 0, fmt.Errorf("dian: NIT inválido %q", nit)
	}
	sum := 0
	for i := 0; i < len(base); i++ {
		d := int(base[len(base)-1-i] - '0')
		sum += d * nitWeights[i]
	}
	r := sum % 11
	if r > 1 {
		return 11 - r, nil
	}
	return r, nil
}

// ValidateNIT comprueba un NIT escrito con su dígito ("900123456-8").
func ValidateNIT(nitWithDV string) error {
	digits := OnlyDigits(nitWithDV)
	if len(digits) < 2 {
		return fmt.Errorf("dian: NIT demasiado corto %q", nitWithDV)
	}
	dv, err := NITCheckDigit(digits[:len(digits)-1])
	if err != nil {
		return err
	}
	if got := int(digits[len(digits)-1] - '0'); got != dv {
		return fmt.Errorf("dian: dígito de verificación inválido: esperado %d, recibido %d", dv, got)
	}
	return nil
}
