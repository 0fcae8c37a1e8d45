package billing

import (
	"context"
	"strings"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
	infrasri "github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye
// los repositorios de pedidos y documentos fiscales.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		docRepo repository.FiscalDocumentRepository,
	) error) error
}

// DocumentPDFGenerator puerto de generación del RIDE (representación impresa
// del documento electrónico).
type DocumentPDFGenerator interface {
	GenerateDocumentPDF(
		ctx context.Context,
		doc *entity.FiscalDocument,
		lines []*entity.DocumentLine,
		issuer infrasri.IssuerData,
	) ([]byte, error)
}

// SRIConfig para los casos de uso de emisión (emisor, ambiente y certificado).
type SRIConfig struct {
	AppEnv       string // dev | test | prod
	Issuer       infrasri.IssuerData
	CertPath     string
	CertKeyPath  string
	CertPassword string
}

// joinAuthorityMessages aplana los mensajes del SRI a un solo string persistible.
func joinAuthorityMessages(msgs []infrasri.AuthorityMessage) string {
	if len(msgs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		s := m.Message
		if m.Identifier != "" {
			s = m.Identifier + ": " + s
		}
		if m.AdditionalInfo != "" {
			s += " (" + m.AdditionalInfo + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}

// sequentialFromNumber extrae el secuencial de 9 dígitos del número completo
// estab-ptoEmi-secuencial.
func sequentialFromNumber(number string) string {
	parts := strings.Split(number, "-")
	return parts[len(parts)-1]
}
