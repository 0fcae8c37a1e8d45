// Package pdf implementa la generación del RIDE, la representación impresa del
// documento electrónico autorizado por el SRI (Ficha Técnica de Comprobantes
// Electrónicos, esquema offline).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RUC  │  FACTURA No. + Fecha         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección matriz / Ambiente / Emisión              │
//	│  ADQUIRIENTE: Nombre + Identificación + contacto            │
//	│  (Notas de crédito: doc. modificado + motivo)               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Dcto | Subtotal       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal sin impuestos / IVA / VALOR TOTAL        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER SRI: Clave de acceso (barras) + N° autorización     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/barcode"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/kevinvillajim/bcommerce-billing/internal/application/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	infrasri "github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri"
	pkgsri "github.com/kevinvillajim/bcommerce-billing/pkg/sri"
)

var _ appbilling.DocumentPDFGenerator = (*RIDEGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// RIDEGenerator implementa billing.DocumentPDFGenerator usando Maroto v2.
type RIDEGenerator struct{}

// NewRIDEGenerator construye el generador.
func NewRIDEGenerator() *RIDEGenerator { return &RIDEGenerator{} }

// GenerateDocumentPDF genera el RIDE y devuelve sus bytes.
func (g *RIDEGenerator) GenerateDocumentPDF(
	_ context.Context,
	doc *entity.FiscalDocument,
	lines []*entity.DocumentLine,
	issuer infrasri.IssuerData,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(documentTitle(doc), true).
		WithAuthor(issuer.RazonSocial, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc, issuer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(issuer))
	m.AddRows(adquirienteRow(doc.Buyer))
	if doc.IsCreditNote() {
		m.AddRows(sustentoRow(doc))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range sriFooterRows(doc) {
		m.AddRows(r)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

func documentTitle(doc *entity.FiscalDocument) string {
	if doc.IsCreditNote() {
		return "NOTA DE CRÉDITO"
	}
	return "FACTURA"
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: razón social + RUC (izq) y tipo + número + fecha (der).
func headerRow(doc *entity.FiscalDocument, issuer infrasri.IssuerData) core.Row {
	fecha := doc.IssueDate.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(issuer.RazonSocial, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RUC: "+issuer.RUC, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(documentTitle(doc), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("No. "+doc.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha de emisión: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// emisorRow: datos del emisor.
func emisorRow(issuer infrasri.IssuerData) core.Row {
	ambiente := "PRUEBAS"
	if issuer.Environment == pkgsri.EnvironmentProduccion {
		ambiente = "PRODUCCIÓN"
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección matriz: %s   |   Ambiente: %s   |   Emisión: NORMAL",
				nonEmpty(issuer.DirMatriz, "—"), ambiente,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// adquirienteRow: datos del comprador.
func adquirienteRow(buyer entity.Buyer) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("ADQUIRIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(buyer.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Identificación: %s   |   Email: %s   |   Tel: %s",
				buyer.Identification,
				nonEmpty(buyer.Email, "—"),
				nonEmpty(buyer.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// sustentoRow: documento modificado y motivo (solo notas de crédito).
func sustentoRow(doc *entity.FiscalDocument) core.Row {
	modificado := "—"
	if doc.ModifiedDocument != nil {
		modificado = fmt.Sprintf("Factura %s del %s",
			doc.ModifiedDocument.Number,
			doc.ModifiedDocument.IssueDate.Format("02/01/2006"))
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DOCUMENTO MODIFICADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Motivo: %s", modificado, nonEmpty(doc.Reason, "—")),
				props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Dcto.", 1, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea del comprobante.
func tableDetailRows(lines []*entity.DocumentLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				l.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				l.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$"+l.UnitPrice.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				"$"+l.Discount.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				"$"+l.LineSubtotal().StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(doc *entity.FiscalDocument) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(3),
		col.New(4).Add(
			label("Subtotal sin impuestos:"),
			label("IVA:"),
			grandLabel("VALOR TOTAL:"),
		),
		col.New(3).Add(
			value("$"+doc.Subtotal.StringFixed(2)),
			value("$"+doc.TaxAmount.StringFixed(2)),
			grandValue("$"+doc.Total.StringFixed(2)),
		),
		col.New(2),
	)
}

// sriFooterRows: clave de acceso en código de barras + número de autorización.
func sriFooterRows(doc *entity.FiscalDocument) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("INFORMACIÓN SRI", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if doc.AccessKey != "" {
		rows = append(rows,
			row.New(5).Add(col.New(12).Add(
				text.New("Clave de acceso:", props.Text{
					Style: fontstyle.Bold, Size: 7, Top: 1,
				}),
			)),
			row.New(16).Add(
				col.New(8).Add(code.NewBar(doc.AccessKey, props.Barcode{
					Type:    barcode.Code128,
					Percent: 90,
					Center:  true,
				})),
				col.New(4),
			),
			row.New(4).Add(col.New(12).Add(
				text.New(doc.AccessKey, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
			)),
		)
	}

	if doc.AuthorizationNumber != "" {
		rows = append(rows,
			row.New(5).Add(col.New(12).Add(
				text.New("Número de autorización:", props.Text{
					Style: fontstyle.Bold, Size: 7, Top: 1,
				}),
			)),
			row.New(4).Add(col.New(12).Add(
				text.New(doc.AuthorizationNumber, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
			)),
		)
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Documento electrónico emitido conforme a la Ficha Técnica de Comprobantes "+
				"Electrónicos del SRI (esquema offline). Conserve este documento como soporte tributario.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
