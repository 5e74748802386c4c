package dian

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	pkgdian "github.com/jhoicas/facturacion-clinica/pkg/dian"
)

// CompressXMLToZip empaqueta el XML firmado en un archivo ZIP en memoria.
// La DIAN exige que el ZIP contenga un único archivo con el nombre:
//
//	{NIT_OFE}{PREFIX}{NUMBER}.xml  (sin guiones ni espacios)
//
// Devuelve los bytes del ZIP listo para enviar al WS DIAN.
func CompressXMLToZip(xmlBytes []byte, xmlFilename string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	fw, err := zw.Create(xmlFilename)
	if err != nil {
		return nil, fmt.Errorf("zip: crear entrada %s: %w", xmlFilename, err)
	}
	if _, err := fw.Write(xmlBytes); err != nil {
		return nil, fmt.Errorf("zip: escribir XML: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	return buf.Bytes(), nil
}

// DIANFilenames nombres del XML interno y del ZIP: {NIT}{PREFIJO}{consecutivo}, sin DV.
// El mismo consecutivo produce siempre el mismo nombre; la DIAN lo usa para detectar reenvíos.
// Ejemplo: 900123456SETP1
func DIANFilenames(issuerNIT, prefix string, consecutive int64) (xmlName, zipName string) {
	nit := strings.TrimSpace(issuerNIT)
	if idx := strings.Index(nit, "-"); idx != -1 {
		nit = nit[:idx]
	}
	base := pkgdian.OnlyDigits(nit) + strings.TrimSpace(prefix) + strconv.FormatInt(consecutive, 10)
	return base + ".xml", base + ".zip"
}
