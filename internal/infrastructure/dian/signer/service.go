// Package signer implementa la firma XAdES-EPES de la factura UBL 2.1 (Anexo Técnico 1.9).
// La firma se inyecta en el segundo ext:ExtensionContent, que el constructor XML deja vacío.
package signer

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/facturacion-clinica/pkg/dian"
)

// XAdESSigner firma con un certificado RSA fijo.
type XAdESSigner struct {
	key  *rsa.PrivateKey
	leaf *x509.Certificate
	now  func() time.Time
}

var _ dian.Signer = (*XAdESSigner)(nil)

// New valida que el certificado traiga llave RSA y construye el firmador.
func New(cert tls.Certificate) (*XAdESSigner, error) {
	key, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signer: el certificado debe incluir llave privada RSA")
	}
	leaf, err := leafOf(cert)
	if err != nil {
		return nil, err
	}
	return &XAdESSigner{key: key, leaf: leaf, now: time.Now}, nil
}

// Sign firma el documento completo (Reference URI="") y las propiedades firmadas XAdES.
func (s *XAdESSigner) Sign(xmlBytes []byte) ([]byte, error) {
	if len(xmlBytes) == 0 {
		return nil, fmt.Errorf("signer: XML vacío")
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("signer: parsear XML: %w", err)
	}
	slot, err := signatureSlot(doc)
	if err != nil {
		return nil, err
	}

	docCanon, err := canonicalize(xmlBytes)
	if err != nil {
		return nil, fmt.Errorf("signer: canonicalizar documento: %w", err)
	}
	signedProps := s.signedProperties()
	propsCanon, err := canonicalElement(signedProps, map[string]string{"ds": NamespaceDS, "xades": NamespaceXAdES})
	if err != nil {
		return nil, fmt.Errorf("signer: canonicalizar SignedProperties: %w", err)
	}

	signedInfo := buildSignedInfo(digestB64(docCanon), digestB64(propsCanon))
	infoCanon, err := canonicalElement(signedInfo, map[string]string{"ds": NamespaceDS})
	if err != nil {
		return nil, fmt.Errorf("signer: canonicalizar SignedInfo: %w", err)
	}
	hash := sha256.Sum256(infoCanon)
	value, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, hash[:])
	if err != nil {
		return nil, fmt.Errorf("signer: firmar SignedInfo: %w", err)
	}

	sig := etree.NewElement("ds:Signature")
	sig.CreateAttr("xmlns:ds", NamespaceDS)
	sig.CreateAttr("Id", SignatureID)
	sig.AddChild(signedInfo)
	sig.CreateElement("ds:SignatureValue").SetText(base64.StdEncoding.EncodeToString(value))
	sig.CreateElement("ds:KeyInfo").CreateElement("ds:X509Data").
		CreateElement("ds:X509Certificate").SetText(base64.StdEncoding.EncodeToString(s.leaf.Raw))
	qp := sig.CreateElement("ds:Object").CreateElement("xades:QualifyingProperties")
	qp.CreateAttr("xmlns:xades", NamespaceXAdES)
	qp.CreateAttr("Target", "#"+SignatureID)
	qp.AddChild(signedProps)

	slot.AddChild(sig)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("signer: serializar XML: %w", err)
	}
	return out, nil
}

func (s *XAdESSigner) signedProperties() *etree.Element {
	props := etree.NewElement("xades:SignedProperties")
	props.CreateAttr("Id", SignedPropsID)
	ssp := props.CreateElement("xades:SignedSignatureProperties")
	ssp.CreateElement("xades:SigningTime").SetText(s.now().UTC().Format("2006-01-02T15:04:05.000Z"))

	certEl := ssp.CreateElement("xades:SigningCertificate").CreateElement("xades:Cert")
	cd := certEl.CreateElement("xades:CertDigest")
	cd.CreateElement("ds:DigestMethod").CreateAttr("Algorithm", AlgSHA256)
	cd.CreateElement("ds:DigestValue").SetText(certDigest(s.leaf))
	is := certEl.CreateElement("xades:IssuerSerial")
	is.CreateElement("ds:X509IssuerName").SetText(s.leaf.Issuer.String())
	is.CreateElement("ds:X509SerialNumber").SetText(s.leaf.SerialNumber.String())

	pid := ssp.CreateElement("xades:SignaturePolicyIdentifier").CreateElement("xades:SignaturePolicyId")
	pid.CreateElement("xades:SigPolicyId").CreateElement("xades:Identifier").SetText(SignaturePolicyURLV2)
	ph := pid.CreateElement("xades:SigPolicyHash")
	ph.CreateElement("ds:DigestMethod").CreateAttr("Algorithm", AlgSHA256)
	ph.CreateElement("ds:DigestValue").SetText(SigPolicyHashDigest)

	ssp.CreateElement("xades:SignerRole").CreateElement("xades:ClaimedRoles").
		CreateElement("xades:ClaimedRole").SetText("supplier")
	return props
}

func buildSignedInfo(docDigest, propsDigest string) *etree.Element {
	si := etree.NewElement("ds:SignedInfo")
	si.CreateElement("ds:CanonicalizationMethod").CreateAttr("Algorithm", AlgC14N)
	si.CreateElement("ds:SignatureMethod").CreateAttr("Algorithm", AlgRSASHA256)

	ref := si.CreateElement("ds:Reference")
	ref.CreateAttr("URI", InvoiceElementRef)
	ref.CreateElement("ds:Transforms").CreateElement("ds:Transform").CreateAttr("Algorithm", TransformEnveloped)
	ref.CreateElement("ds:DigestMethod").CreateAttr("Algorithm", AlgSHA256)
	ref.CreateElement("ds:DigestValue").SetText(docDigest)

	props := si.CreateElement("ds:Reference")
	props.CreateAttr("Type", TypeSignedProps)
	props.CreateAttr("URI", "#"+SignedPropsID)
	props.CreateElement("ds:DigestMethod").CreateAttr("Algorithm", AlgSHA256)
	props.CreateElement("ds:DigestValue").SetText(propsDigest)
	return si
}

// signatureSlot segundo ext:ExtensionContent del documento.
func signatureSlot(doc *etree.Document) (*etree.Element, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("signer: documento sin raíz")
	}
	slots := root.FindElements("./ext:UBLExtensions/ext:UBLExtension/ext:ExtensionContent")
	if len(slots) < 2 {
		return nil, fmt.Errorf("signer: no se encontró el segundo ext:ExtensionContent para la firma")
	}
	return slots[1], nil
}

// canonicalElement C14N de un nodo suelto, declarando los namespaces que hereda en el documento.
func canonicalElement(el *etree.Element, namespaces map[string]string) ([]byte, error) {
	cp := el.Copy()
	for prefix, uri := range namespaces {
		cp.CreateAttr("xmlns:"+prefix, uri)
	}
	doc := etree.NewDocument()
	doc.SetRoot(cp)
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}
	return canonicalize(raw)
}

// canonicalize C14N inclusivo; la declaración XML no forma parte de la forma canónica.
func canonicalize(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("<?xml")) {
		if end := bytes.Index(data, []byte("?>")); end >= 0 {
			data = bytes.TrimSpace(data[end+2:])
		}
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

func digestB64(data []byte) string {
	h := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(h[:])
}
