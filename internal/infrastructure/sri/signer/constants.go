// Constantes para firma XAdES-BES de comprobantes electrónicos SRI.

package signer

// Namespaces y algoritmos XMLDSig / XAdES. El SRI valida firmas XAdES-BES con
// RSA-SHA1; no exige política de firma (a diferencia de XAdES-EPES).
const (
	NamespaceDS    = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceXAdES = "http://uri.etsi.org/01903/v1.3.2#"
	AlgC14N        = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA1     = "http://www.w3.org/2000/09/xmldsig#rsa-sha1"
	AlgSHA1        = "http://www.w3.org/2000/09/xmldsig#sha1"

	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"

	// TypeSignedProperties tipo de la Reference a las propiedades firmadas.
	TypeSignedProperties = "http://uri.etsi.org/01903#SignedProperties"
)

// ComprobanteElementID id del elemento raíz al que apunta la Reference
// (coincide con el atributo id de <factura>/<notaCredito>).
const ComprobanteElementID = "comprobante"
