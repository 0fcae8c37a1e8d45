package sri

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	pkgsri "github.com/kevinvillajim/bcommerce-billing/pkg/sri"
)

// Versión de esquema de comprobantes del SRI.
const schemaVersion = "1.1.0"

// ComprobanteElementID id del elemento raíz; la Reference de la firma XAdES
// apunta a "#comprobante".
const ComprobanteElementID = "comprobante"

// XMLBuilderService construye el XML del comprobante (factura o nota de crédito)
// según los esquemas XSD del SRI, sin firma.
type XMLBuilderService struct{}

// NewXMLBuilderService crea el servicio.
func NewXMLBuilderService() *XMLBuilderService {
	return &XMLBuilderService{}
}

// Build genera el []byte del comprobante según el tipo del documento.
func (s *XMLBuilderService) Build(buildCtx *DocumentBuildContext) ([]byte, error) {
	if buildCtx == nil || buildCtx.Document == nil {
		return nil, fmt.Errorf("sri: falta el documento en el contexto")
	}
	if buildCtx.AccessKey == "" {
		return nil, fmt.Errorf("sri: falta la clave de acceso")
	}
	if len(buildCtx.Lines) == 0 {
		return nil, fmt.Errorf("sri: el comprobante requiere al menos una línea")
	}

	switch buildCtx.Document.Type {
	case entity.DocumentTypeInvoice:
		return s.buildInvoice(buildCtx)
	case entity.DocumentTypeCreditNote:
		return s.buildCreditNote(buildCtx)
	}
	return nil, fmt.Errorf("sri: tipo de documento desconocido %q", buildCtx.Document.Type)
}

func (s *XMLBuilderService) buildInvoice(buildCtx *DocumentBuildContext) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("factura")
	root.CreateAttr("id", ComprobanteElementID)
	root.CreateAttr("version", schemaVersion)

	s.writeInfoTributaria(root, buildCtx, pkgsri.DocTypeFactura)

	fiscal := buildCtx.Document
	info := root.CreateElement("infoFactura")
	addText(info, "fechaEmision", fiscal.IssueDate.Format("02/01/2006"))
	addText(info, "dirEstablecimiento", buildCtx.Issuer.DirMatriz)
	addText(info, "obligadoContabilidad", "NO")
	addText(info, "tipoIdentificacionComprador", fiscal.Buyer.IdentificationType)
	addText(info, "razonSocialComprador", fiscal.Buyer.Name)
	addText(info, "identificacionComprador", fiscal.Buyer.Identification)
	if fiscal.Buyer.Address != "" {
		addText(info, "direccionComprador", fiscal.Buyer.Address)
	}
	addText(info, "totalSinImpuestos", money(fiscal.Subtotal))
	addText(info, "totalDescuento", money(totalDiscount(buildCtx.Lines)))

	totalCon := info.CreateElement("totalConImpuestos")
	s.writeTotalImpuesto(totalCon, fiscal)

	addText(info, "propina", "0.00")
	addText(info, "importeTotal", money(fiscal.Total))
	addText(info, "moneda", "DOLAR")

	s.writeDetalles(root, buildCtx)
	s.writeInfoAdicional(root, fiscal)

	doc.Indent(2)
	return doc.WriteToBytes()
}

func (s *XMLBuilderService) buildCreditNote(buildCtx *DocumentBuildContext) ([]byte, error) {
	fiscal := buildCtx.Document
	if fiscal.ModifiedDocument == nil {
		return nil, fmt.Errorf("sri: nota de crédito sin documento sustento")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("notaCredito")
	root.CreateAttr("id", ComprobanteElementID)
	root.CreateAttr("version", schemaVersion)

	s.writeInfoTributaria(root, buildCtx, pkgsri.DocTypeNotaCredito)

	info := root.CreateElement("infoNotaCredito")
	addText(info, "fechaEmision", fiscal.IssueDate.Format("02/01/2006"))
	addText(info, "dirEstablecimiento", buildCtx.Issuer.DirMatriz)
	addText(info, "tipoIdentificacionComprador", fiscal.Buyer.IdentificationType)
	addText(info, "razonSocialComprador", fiscal.Buyer.Name)
	addText(info, "identificacionComprador", fiscal.Buyer.Identification)
	addText(info, "obligadoContabilidad", "NO")
	addText(info, "codDocModificado", fiscal.ModifiedDocument.DocType)
	addText(info, "numDocModificado", fiscal.ModifiedDocument.Number)
	addText(info, "fechaEmisionDocSustento", fiscal.ModifiedDocument.IssueDate.Format("02/01/2006"))
	addText(info, "totalSinImpuestos", money(fiscal.Subtotal))
	addText(info, "valorModificacion", money(fiscal.Total))
	addText(info, "moneda", "DOLAR")

	totalCon := info.CreateElement("totalConImpuestos")
	s.writeTotalImpuesto(totalCon, fiscal)

	addText(info, "motivo", fiscal.Reason)

	s.writeDetalles(root, buildCtx)
	s.writeInfoAdicional(root, fiscal)

	doc.Indent(2)
	return doc.WriteToBytes()
}

// writeInfoTributaria bloque común a todos los comprobantes.
func (s *XMLBuilderService) writeInfoTributaria(root *etree.Element, buildCtx *DocumentBuildContext, codDoc string) {
	issuer := buildCtx.Issuer
	info := root.CreateElement("infoTributaria")
	addText(info, "ambiente", issuer.Environment)
	addText(info, "tipoEmision", pkgsri.EmissionNormal)
	addText(info, "razonSocial", issuer.RazonSocial)
	if issuer.NombreComercial != "" {
		addText(info, "nombreComercial", issuer.NombreComercial)
	}
	addText(info, "ruc", issuer.RUC)
	addText(info, "claveAcceso", buildCtx.AccessKey)
	addText(info, "codDoc", codDoc)
	addText(info, "estab", issuer.Establishment)
	addText(info, "ptoEmi", issuer.EmissionPoint)
	addText(info, "secuencial", buildCtx.Sequential)
	addText(info, "dirMatriz", issuer.DirMatriz)
}

// writeTotalImpuesto resumen de IVA del comprobante. El núcleo maneja una sola
// tarifa por comprobante; la base imponible es el subtotal completo.
func (s *XMLBuilderService) writeTotalImpuesto(parent *etree.Element, fiscal *entity.FiscalDocument) {
	imp := parent.CreateElement("totalImpuesto")
	addText(imp, "codigo", pkgsri.TaxCodeIVA)
	addText(imp, "codigoPorcentaje", pkgsri.IVARate15)
	addText(imp, "baseImponible", money(fiscal.Subtotal))
	addText(imp, "valor", money(fiscal.TaxAmount))
}

func (s *XMLBuilderService) writeDetalles(root *etree.Element, buildCtx *DocumentBuildContext) {
	detalles := root.CreateElement("detalles")
	for _, line := range buildCtx.Lines {
		det := detalles.CreateElement("detalle")
		addText(det, "codigoPrincipal", line.Code)
		addText(det, "descripcion", line.Description)
		addText(det, "cantidad", line.Quantity.StringFixed(6))
		addText(det, "precioUnitario", line.UnitPrice.StringFixed(6))
		addText(det, "descuento", money(line.Discount))
		lineSubtotal := line.LineSubtotal()
		addText(det, "precioTotalSinImpuesto", money(lineSubtotal))

		impuestos := det.CreateElement("impuestos")
		imp := impuestos.CreateElement("impuesto")
		addText(imp, "codigo", pkgsri.TaxCodeIVA)
		addText(imp, "codigoPorcentaje", line.TaxCode)
		addText(imp, "tarifa", buildCtx.TaxRate)
		addText(imp, "baseImponible", money(lineSubtotal))
		addText(imp, "valor", money(lineTax(lineSubtotal, buildCtx.TaxRate)))
	}
}

// writeInfoAdicional campos adicionales del comprador (correo para notificación).
func (s *XMLBuilderService) writeInfoAdicional(root *etree.Element, fiscal *entity.FiscalDocument) {
	if fiscal.Buyer.Email == "" && fiscal.Buyer.Phone == "" {
		return
	}
	info := root.CreateElement("infoAdicional")
	if fiscal.Buyer.Email != "" {
		campo := info.CreateElement("campoAdicional")
		campo.CreateAttr("nombre", "email")
		campo.SetText(fiscal.Buyer.Email)
	}
	if fiscal.Buyer.Phone != "" {
		campo := info.CreateElement("campoAdicional")
		campo.CreateAttr("nombre", "telefono")
		campo.SetText(fiscal.Buyer.Phone)
	}
}

// ── helpers privados ──────────────────────────────────────────────────────────

func addText(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}

// money formatea a 2 decimales, el formato que exigen los XSD para montos.
func money(v decimal.Decimal) string {
	return v.Round(2).StringFixed(2)
}

func totalDiscount(lines []*entity.DocumentLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Discount)
	}
	return total
}

func lineTax(base decimal.Decimal, ratePercent string) decimal.Decimal {
	rate, err := decimal.NewFromString(ratePercent)
	if err != nil {
		return decimal.Zero
	}
	return base.Mul(rate).Div(decimal.NewFromInt(100))
}
