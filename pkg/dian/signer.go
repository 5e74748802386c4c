package dian

// Signer firma el XML UBL de la factura (XAdES-EPES) y devuelve el documento con
// ds:Signature inyectada en el ExtensionContent reservado. El certificado se fija
// al construir la implementación.
type Signer interface {
	Sign(xmlBytes []byte) ([]byte, error)
}
