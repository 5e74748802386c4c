package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const facturaSinFirma = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2" xmlns:ext="urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2" xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"><ext:UBLExtensions><ext:UBLExtension><ext:ExtensionContent><Dato>1</Dato></ext:ExtensionContent></ext:UBLExtension><ext:UBLExtension><ext:ExtensionContent></ext:ExtensionContent></ext:UBLExtension></ext:UBLExtensions><cbc:ID>SETP990000001</cbc:ID></Invoice>`

func certificadoDePrueba(t *testing.T) tls.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tpl := &x509.Certificate{
		SerialNumber: big.NewInt(4242),
		Subject:      pkix.Name{CommonName: "IPS de prueba"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tpl, tpl, &key.PublicKey, key)
	require.NoError(t, err)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func TestSign_InyectaFirmaEnSegundoExtensionContent(t *testing.T) {
	cert := certificadoDePrueba(t)
	s, err := New(cert)
	require.NoError(t, err)

	out, err := s.Sign([]byte(facturaSinFirma))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	slots := doc.Root().FindElements("./ext:UBLExtensions/ext:UBLExtension/ext:ExtensionContent")
	require.Len(t, slots, 2)
	assert.Nil(t, slots[0].FindElement("./ds:Signature"))
	sig := slots[1].FindElement("./ds:Signature")
	require.NotNil(t, sig)
	assert.NotNil(t, sig.FindElement(".//xades:SigningTime"))
	assert.Len(t, sig.FindElements("./ds:SignedInfo/ds:Reference"), 2)

	info, err := Describe(cert)
	require.NoError(t, err)
	assert.Equal(t, "4242", info.Serial)
	assert.Equal(t, 2048, info.KeyBits)
}

func TestSign_FirmaVerificableConLlavePublica(t *testing.T) {
	cert := certificadoDePrueba(t)
	s, err := New(cert)
	require.NoError(t, err)

	out, err := s.Sign([]byte(facturaSinFirma))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	si := doc.Root().FindElement(".//ds:SignedInfo")
	require.NotNil(t, si)
	canon, err := canonicalElement(si, map[string]string{"ds": NamespaceDS})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(doc.Root().FindElement(".//ds:SignatureValue").Text())
	require.NoError(t, err)
	hash := sha256.Sum256(canon)
	pub := cert.PrivateKey.(*rsa.PrivateKey).Public().(*rsa.PublicKey)
	assert.NoError(t, rsa.VerifyPKCS1v15(pub, crypto.SHA256, hash[:], raw))
}

func TestSign_SinRanuraDeFirma(t *testing.T) {
	s, err := New(certificadoDePrueba(t))
	require.NoError(t, err)
	_, err = s.Sign([]byte(`<Invoice xmlns:ext="urn:x"><ext:UBLExtensions/></Invoice>`))
	assert.Error(t, err)
}

func TestNew_RechazaLlaveNoRSA(t *testing.T) {
	_, err := New(tls.Certificate{})
	assert.Error(t, err)
}
