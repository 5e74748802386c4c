// checkcert diagnostica el certificado de firma DIAN configurado (DIAN_CERT_PATH,
// DIAN_CERT_KEY_PATH, DIAN_CERT_PASSWORD): lo carga, muestra su resumen y prueba una firma.
//
// Uso: go run ./cmd/checkcert [ruta-certificado]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/facturacion-clinica/internal/infrastructure/dian/signer"
	"github.com/jhoicas/facturacion-clinica/pkg/config"
)

const pruebaFirma = `<Invoice xmlns:ext="urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"><ext:UBLExtensions><ext:UBLExtension><ext:ExtensionContent/></ext:UBLExtension><ext:UBLExtension><ext:ExtensionContent/></ext:UBLExtension></ext:UBLExtensions></Invoice>`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración", err)
	}
	certPath := cfg.DIAN.CertPath
	if len(os.Args) > 1 {
		certPath = os.Args[1]
	}
	if certPath == "" {
		fail("certificado", fmt.Errorf("defina DIAN_CERT_PATH o pase la ruta como argumento"))
	}

	fmt.Printf("Leyendo: %s\n", certPath)
	cert, err := signer.Load(certPath, cfg.DIAN.CertKeyPath, cfg.DIAN.CertPassword)
	if err != nil {
		fail("cargar certificado", err)
	}
	info, err := signer.Describe(cert)
	if err != nil {
		fail("leer certificado", err)
	}

	fmt.Printf("Sujeto:   %s\n", info.Subject)
	fmt.Printf("Emisor:   %s\n", info.Issuer)
	fmt.Printf("Serial:   %s\n", info.Serial)
	fmt.Printf("Vigencia: %s → %s\n", info.NotBefore.Format(time.DateOnly), info.NotAfter.Format(time.DateOnly))
	if !info.RSA {
		fail("llave", fmt.Errorf("la DIAN exige llave RSA"))
	}
	fmt.Printf("Llave:    RSA %d bits\n", info.KeyBits)

	now := time.Now()
	switch {
	case now.After(info.NotAfter):
		fail("vigencia", fmt.Errorf("el certificado venció el %s", info.NotAfter.Format(time.DateOnly)))
	case now.Before(info.NotBefore):
		fail("vigencia", fmt.Errorf("el certificado aún no es válido"))
	case info.NotAfter.Sub(now) < 30*24*time.Hour:
		fmt.Printf("AVISO: vence en %d días\n", int(info.NotAfter.Sub(now).Hours()/24))
	}

	s, err := signer.New(cert)
	if err != nil {
		fail("firmador", err)
	}
	if _, err := s.Sign([]byte(pruebaFirma)); err != nil {
		fail("firma de prueba", err)
	}
	fmt.Println("OK: certificado válido para firmar facturas electrónicas")
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "ERROR (%s): %v\n", step, err)
	os.Exit(1)
}
