package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainbilling "github.com/kevinvillajim/bcommerce-billing/internal/domain/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
)

var _ repository.FiscalDocumentRepository = (*FiscalDocumentRepo)(nil)

// FiscalDocumentRepo implementación de FiscalDocumentRepository (usable con pool o tx).
// Los documentos nunca se eliminan: no hay Delete.
type FiscalDocumentRepo struct {
	q Querier
}

// NewFiscalDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFiscalDocumentRepository(q Querier) *FiscalDocumentRepo {
	return &FiscalDocumentRepo{q: q}
}

const documentColumns = `
	id, order_id, type, number, issue_date,
	buyer_identification, buyer_identification_type, buyer_name,
	buyer_address, buyer_email, buyer_phone,
	subtotal, tax_amount, total,
	status, access_key, authorization_number, authority_message,
	retry_count, last_retry_at,
	modified_doc_type, modified_doc_number, modified_doc_issue_date, reason,
	created_at, updated_at`

// Create persiste la cabecera del documento fiscal.
func (r *FiscalDocumentRepo) Create(ctx context.Context, doc *entity.FiscalDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	var modType, modNumber *string
	var modDate *time.Time
	if doc.ModifiedDocument != nil {
		modType = nullIfEmpty(doc.ModifiedDocument.DocType)
		modNumber = nullIfEmpty(doc.ModifiedDocument.Number)
		d := doc.ModifiedDocument.IssueDate
		modDate = &d
	}

	query := `
		INSERT INTO fiscal_documents (
			id, order_id, type, number, issue_date,
			buyer_identification, buyer_identification_type, buyer_name,
			buyer_address, buyer_email, buyer_phone,
			subtotal, tax_amount, total,
			status, access_key, authorization_number, authority_message,
			retry_count, last_retry_at,
			modified_doc_type, modified_doc_number, modified_doc_issue_date, reason,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.OrderID, string(doc.Type), doc.Number, doc.IssueDate,
		doc.Buyer.Identification, doc.Buyer.IdentificationType, doc.Buyer.Name,
		nullIfEmpty(doc.Buyer.Address), nullIfEmpty(doc.Buyer.Email), nullIfEmpty(doc.Buyer.Phone),
		doc.Subtotal, doc.TaxAmount, doc.Total,
		doc.Status, nullIfEmpty(doc.AccessKey), nullIfEmpty(doc.AuthorizationNumber), nullIfEmpty(doc.AuthorityMessage),
		doc.RetryCount, doc.LastRetryAt,
		modType, modNumber, modDate, nullIfEmpty(doc.Reason),
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document number or access key already exists: %w", err)
		}
		return fmt.Errorf("insert fiscal document: %w", err)
	}
	return nil
}

// CreateLine persiste una línea del comprobante.
func (r *FiscalDocumentRepo) CreateLine(ctx context.Context, line *entity.DocumentLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO fiscal_document_lines (id, document_id, code, description, quantity, unit_price, discount, tax_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.DocumentID, line.Code, line.Description,
		line.Quantity, line.UnitPrice, line.Discount, line.TaxCode,
	)
	if err != nil {
		return fmt.Errorf("insert document line: %w", err)
	}
	return nil
}

// Update actualiza los campos mutables del ciclo SRI. La clave de acceso y el
// número de autorización nunca se borran una vez asignados (COALESCE).
func (r *FiscalDocumentRepo) Update(ctx context.Context, doc *entity.FiscalDocument) error {
	query := `
		UPDATE fiscal_documents
		SET status               = $2,
		    access_key           = COALESCE($3, access_key),
		    authorization_number = COALESCE($4, authorization_number),
		    authority_message    = $5,
		    retry_count          = $6,
		    last_retry_at        = $7,
		    updated_at           = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		doc.ID,
		doc.Status,
		nullIfEmpty(doc.AccessKey),
		nullIfEmpty(doc.AuthorizationNumber),
		nullIfEmpty(doc.AuthorityMessage),
		doc.RetryCount,
		doc.LastRetryAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update fiscal document: %w", err)
	}
	return nil
}

// GetByID obtiene un documento completo por ID.
func (r *FiscalDocumentRepo) GetByID(ctx context.Context, id string) (*entity.FiscalDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM fiscal_documents WHERE id = $1`
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal document: %w", err)
	}
	return doc, nil
}

// GetByAccessKey obtiene un documento por su clave de acceso SRI.
func (r *FiscalDocumentRepo) GetByAccessKey(ctx context.Context, accessKey string) (*entity.FiscalDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM fiscal_documents WHERE access_key = $1`
	doc, err := scanDocument(r.q.QueryRow(ctx, query, accessKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal document by access key: %w", err)
	}
	return doc, nil
}

// GetLinesByDocumentID obtiene todas las líneas de un documento.
func (r *FiscalDocumentRepo) GetLinesByDocumentID(ctx context.Context, documentID string) ([]*entity.DocumentLine, error) {
	query := `
		SELECT id, document_id, code, description, quantity, unit_price, discount, tax_code
		FROM fiscal_document_lines WHERE document_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.DocumentLine
	for rows.Next() {
		var l entity.DocumentLine
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.Code, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.Discount, &l.TaxCode); err != nil {
			return nil, fmt.Errorf("scan document line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetStatusFields devuelve solo los campos de estado (consulta ligera para polling).
func (r *FiscalDocumentRepo) GetStatusFields(ctx context.Context, id string) (*entity.FiscalDocument, error) {
	const query = `
		SELECT id, order_id, type, number, status,
		       COALESCE(access_key, ''), COALESCE(authorization_number, ''), COALESCE(authority_message, ''),
		       retry_count, last_retry_at, updated_at
		FROM fiscal_documents WHERE id = $1`
	var doc entity.FiscalDocument
	var docType string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.OrderID, &docType, &doc.Number, &doc.Status,
		&doc.AccessKey, &doc.AuthorizationNumber, &doc.AuthorityMessage,
		&doc.RetryCount, &doc.LastRetryAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal document status: %w", err)
	}
	doc.Type = entity.DocumentType(docType)
	return &doc, nil
}

// NextSequential reserva el siguiente secuencial para el tipo de documento.
// El UPSERT toma un row lock sobre la fila del contador: dos emisiones
// concurrentes nunca obtienen el mismo número.
func (r *FiscalDocumentRepo) NextSequential(ctx context.Context, docType entity.DocumentType) (int64, error) {
	const query = `
		INSERT INTO document_sequences (doc_type, current_value)
		VALUES ($1, 1)
		ON CONFLICT (doc_type)
		DO UPDATE SET current_value = document_sequences.current_value + 1
		RETURNING current_value`
	var seq int64
	if err := r.q.QueryRow(ctx, query, string(docType)).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequential for %s: %w", docType, err)
	}
	return seq, nil
}

// Stats agregados para el dashboard: conteo por estado, tasa de éxito sobre
// documentos con estado final y los más recientes.
func (r *FiscalDocumentRepo) Stats(ctx context.Context, recentLimit int) (*repository.DocumentStats, error) {
	stats := &repository.DocumentStats{}

	rows, err := r.q.Query(ctx, `
		SELECT status, COUNT(*) FROM fiscal_documents GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("count documents by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc repository.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.CountsByStatus = append(stats.CountsByStatus, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const rateQuery = `
		SELECT COALESCE(
			COUNT(*) FILTER (WHERE status = $1)::float8
			/ NULLIF(COUNT(*) FILTER (WHERE status = ANY($2)), 0),
		0)
		FROM fiscal_documents`
	finalStatuses := []string{
		string(domainbilling.StatusAuthorized),
		string(domainbilling.StatusDefinitivelyFailed),
	}
	if err := r.q.QueryRow(ctx, rateQuery,
		string(domainbilling.StatusAuthorized), finalStatuses,
	).Scan(&stats.SuccessRate); err != nil {
		return nil, fmt.Errorf("success rate: %w", err)
	}

	recent, err := r.listDocuments(ctx,
		`SELECT `+documentColumns+` FROM fiscal_documents ORDER BY created_at DESC LIMIT $1`,
		recentLimit)
	if err != nil {
		return nil, err
	}
	stats.Recent = recent
	return stats, nil
}

// ListRecent documentos creados desde una fecha, más recientes primero.
func (r *FiscalDocumentRepo) ListRecent(ctx context.Context, since time.Time, limit int) ([]*entity.FiscalDocument, error) {
	return r.listDocuments(ctx,
		`SELECT `+documentColumns+` FROM fiscal_documents WHERE created_at >= $1 ORDER BY created_at DESC LIMIT $2`,
		since, limit)
}

func (r *FiscalDocumentRepo) listDocuments(ctx context.Context, query string, args ...any) ([]*entity.FiscalDocument, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fiscal documents: %w", err)
	}
	defer rows.Close()
	var list []*entity.FiscalDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fiscal document: %w", err)
		}
		list = append(list, doc)
	}
	return list, rows.Err()
}

func scanDocument(row pgxScanner) (*entity.FiscalDocument, error) {
	var doc entity.FiscalDocument
	var docType string
	var buyerAddress, buyerEmail, buyerPhone *string
	var accessKey, authNumber, authMessage *string
	var modType, modNumber, reason *string
	var modDate *time.Time

	err := row.Scan(
		&doc.ID, &doc.OrderID, &docType, &doc.Number, &doc.IssueDate,
		&doc.Buyer.Identification, &doc.Buyer.IdentificationType, &doc.Buyer.Name,
		&buyerAddress, &buyerEmail, &buyerPhone,
		&doc.Subtotal, &doc.TaxAmount, &doc.Total,
		&doc.Status, &accessKey, &authNumber, &authMessage,
		&doc.RetryCount, &doc.LastRetryAt,
		&modType, &modNumber, &modDate, &reason,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Type = entity.DocumentType(docType)
	doc.Buyer.Address = derefStr(buyerAddress)
	doc.Buyer.Email = derefStr(buyerEmail)
	doc.Buyer.Phone = derefStr(buyerPhone)
	doc.AccessKey = derefStr(accessKey)
	doc.AuthorizationNumber = derefStr(authNumber)
	doc.AuthorityMessage = derefStr(authMessage)
	doc.Reason = derefStr(reason)
	if modNumber != nil {
		ref := &entity.ModifiedDocumentRef{
			DocType: derefStr(modType),
			Number:  *modNumber,
		}
		if modDate != nil {
			ref.IssueDate = *modDate
		}
		doc.ModifiedDocument = ref
	}
	return &doc, nil
}
