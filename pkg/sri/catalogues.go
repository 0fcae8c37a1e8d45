// Package sri contiene catálogos y primitivas de comprobantes electrónicos SRI (Ecuador),
// según la Ficha Técnica de Comprobantes Electrónicos (esquema offline).
package sri

// =============================================================================
// Tabla 3 - Tipos de comprobante (codDoc)
// =============================================================================

const (
	DocTypeFactura       = "01" // Factura
	DocTypeNotaCredito   = "04" // Nota de crédito
	DocTypeNotaDebito    = "05" // Nota de débito
	DocTypeGuiaRemision  = "06" // Guía de remisión
	DocTypeRetencion     = "07" // Comprobante de retención
)

// ValidDocTypeCodes códigos de comprobante válidos para emisión.
var ValidDocTypeCodes = map[string]bool{
	DocTypeFactura: true, DocTypeNotaCredito: true, DocTypeNotaDebito: true,
	DocTypeGuiaRemision: true, DocTypeRetencion: true,
}

// =============================================================================
// Tabla 4 - Ambiente
// =============================================================================

const (
	EnvironmentPruebas    = "1" // Pruebas (celcer.sri.gob.ec)
	EnvironmentProduccion = "2" // Producción (cel.sri.gob.ec)
)

// =============================================================================
// Tabla 5 - Tipo de emisión
// =============================================================================

const (
	EmissionNormal = "1" // Emisión normal (único tipo vigente en esquema offline)
)

// =============================================================================
// Tabla 6 - Tipos de identificación del comprador (tipoIdentificacionComprador)
// =============================================================================

const (
	IdentificationTypeRUC            = "04" // RUC (13 dígitos)
	IdentificationTypeCedula         = "05" // Cédula
	IdentificationTypePasaporte      = "06" // Pasaporte
	IdentificationTypeConsumidorFinal = "07" // Venta a consumidor final
	IdentificationTypeExterior       = "08" // Identificación del exterior
)

// ValidIdentificationTypeCodes códigos de identificación de comprador válidos.
var ValidIdentificationTypeCodes = map[string]bool{
	IdentificationTypeRUC: true, IdentificationTypeCedula: true,
	IdentificationTypePasaporte: true, IdentificationTypeConsumidorFinal: true,
	IdentificationTypeExterior: true,
}

// =============================================================================
// Tablas 16/17 - Impuesto IVA (codigo / codigoPorcentaje)
// =============================================================================

const (
	TaxCodeIVA = "2" // IVA (tag <codigo> de totalImpuesto)

	IVARate0   = "0" // 0%
	IVARate12  = "2" // 12%
	IVARate14  = "3" // 14%
	IVARate15  = "4" // 15% (vigente desde abril 2024)
	IVANoObjeto = "6" // No objeto de impuesto
	IVAExento   = "7" // Exento de IVA
)
