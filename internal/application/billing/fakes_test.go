package billing_test

import (
	"context"
	"sync"
	"time"

	appbilling "github.com/kevinvillajim/bcommerce-billing/internal/application/billing"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
	infrasri "github.com/kevinvillajim/bcommerce-billing/internal/infrastructure/sri"
)

// Fakes en memoria para los casos de uso. Implementan los puertos de dominio
// sin red ni base de datos.

type fakeDocRepo struct {
	mu    sync.Mutex
	docs  map[string]*entity.FiscalDocument
	lines map[string][]*entity.DocumentLine
	seq   int64
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{
		docs:  make(map[string]*entity.FiscalDocument),
		lines: make(map[string][]*entity.DocumentLine),
	}
}

func (r *fakeDocRepo) Create(_ context.Context, doc *entity.FiscalDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocRepo) CreateLine(_ context.Context, line *entity.DocumentLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[line.DocumentID] = append(r.lines[line.DocumentID], line)
	return nil
}

func (r *fakeDocRepo) Update(_ context.Context, doc *entity.FiscalDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocRepo) GetByID(_ context.Context, id string) (*entity.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocRepo) GetByAccessKey(_ context.Context, accessKey string) (*entity.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.AccessKey == accessKey {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeDocRepo) GetLinesByDocumentID(_ context.Context, documentID string) ([]*entity.DocumentLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lines[documentID], nil
}

func (r *fakeDocRepo) GetStatusFields(ctx context.Context, id string) (*entity.FiscalDocument, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeDocRepo) NextSequential(_ context.Context, _ entity.DocumentType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *fakeDocRepo) Stats(_ context.Context, _ int) (*repository.DocumentStats, error) {
	return &repository.DocumentStats{}, nil
}

func (r *fakeDocRepo) ListRecent(_ context.Context, _ time.Time, _ int) ([]*entity.FiscalDocument, error) {
	return nil, nil
}

var _ repository.FiscalDocumentRepository = (*fakeDocRepo)(nil)

type fakeOrderRepo struct {
	orders map[string]*entity.Order
	lines  map[string][]*entity.OrderLine
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*entity.Order),
		lines:  make(map[string][]*entity.OrderLine),
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) CreateLine(_ context.Context, line *entity.OrderLine) error {
	r.lines[line.OrderID] = append(r.lines[line.OrderID], line)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) GetLinesByOrderID(_ context.Context, orderID string) ([]*entity.OrderLine, error) {
	return r.lines[orderID], nil
}

func (r *fakeOrderRepo) UpdateTotals(_ context.Context, order *entity.Order) error {
	r.orders[order.ID] = order
	return nil
}

var _ repository.OrderRepository = (*fakeOrderRepo)(nil)

// fakeTxRunner ejecuta la función directamente, sin transacción real.
type fakeTxRunner struct {
	orderRepo repository.OrderRepository
	docRepo   repository.FiscalDocumentRepository
}

func (t *fakeTxRunner) RunBilling(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	docRepo repository.FiscalDocumentRepository,
) error) error {
	return fn(t.orderRepo, t.docRepo)
}

var _ appbilling.BillingTxRunner = (*fakeTxRunner)(nil)

// fakeQuerier devuelve respuestas programadas y cuenta las llamadas de red.
type fakeQuerier struct {
	mu     sync.Mutex
	result *infrasri.AuthorizationResult
	err    error
	calls  int
}

func (q *fakeQuerier) QueryAuthorization(_ context.Context, _, _ string) (*infrasri.AuthorizationResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if q.err != nil {
		return nil, q.err
	}
	return q.result, nil
}

var _ infrasri.AuthorityQuerier = (*fakeQuerier)(nil)

// fakeSubmitter cuenta los envíos; nunca debe ser llamado en los tests que
// verifican que no hay tráfico de red.
type fakeSubmitter struct {
	mu     sync.Mutex
	result *infrasri.ReceptionResult
	err    error
	calls  int
}

func (s *fakeSubmitter) SubmitDocument(_ context.Context, _ []byte, _ string) (*infrasri.ReceptionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

var _ infrasri.AuthoritySubmitter = (*fakeSubmitter)(nil)
