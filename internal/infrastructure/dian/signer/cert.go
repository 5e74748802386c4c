package signer

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/pkcs12"
)

// Load carga el certificado de firma: .p12/.pfx con contraseña o par PEM (certificado + llave,
// o un solo archivo con ambos si keyPath está vacío).
func Load(certPath, keyPath, password string) (tls.Certificate, error) {
	if certPath == "" {
		return tls.Certificate{}, fmt.Errorf("signer: ruta del certificado vacía")
	}
	switch strings.ToLower(filepath.Ext(certPath)) {
	case ".p12", ".pfx":
		data, err := os.ReadFile(certPath)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("signer: leer p12: %w", err)
		}
		priv, cert, err := pkcs12.Decode(data, password)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("signer: decodificar p12: %w", err)
		}
		return tls.Certificate{Certificate: [][]byte{cert.Raw}, PrivateKey: priv, Leaf: cert}, nil
	default:
		if keyPath == "" {
			keyPath = certPath
		}
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("signer: cargar PEM: %w", err)
		}
		return cert, nil
	}
}

// Info resumen del certificado para diagnóstico.
type Info struct {
	Subject   string
	Issuer    string
	Serial    string
	NotBefore time.Time
	NotAfter  time.Time
	RSA       bool
	KeyBits   int
}

// Describe extrae el resumen del certificado hoja.
func Describe(cert tls.Certificate) (Info, error) {
	leaf, err := leafOf(cert)
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Subject:   leaf.Subject.String(),
		Issuer:    leaf.Issuer.String(),
		Serial:    leaf.SerialNumber.String(),
		NotBefore: leaf.NotBefore,
		NotAfter:  leaf.NotAfter,
	}
	if key, ok := cert.PrivateKey.(*rsa.PrivateKey); ok {
		info.RSA = true
		info.KeyBits = key.N.BitLen()
	}
	return info, nil
}

func leafOf(cert tls.Certificate) (*x509.Certificate, error) {
	if cert.Leaf != nil {
		return cert.Leaf, nil
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("signer: certificado sin contenido")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("signer: parsear certificado: %w", err)
	}
	return leaf, nil
}

// certDigest SHA-256 (Base64) del DER del certificado, para xades:CertDigest.
func certDigest(leaf *x509.Certificate) string {
	h := sha256.Sum256(leaf.Raw)
	return base64.StdEncoding.EncodeToString(h[:])
}
