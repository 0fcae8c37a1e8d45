package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
	"github.com/kevinvillajim/bcommerce-billing/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la cabecera del pedido.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	query := `
		INSERT INTO orders (id, seller_id, buyer_id, shipping_cost, coupon_discount, volume_discount,
		                    tax_rate, reported_total, subtotal, tax_amount, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.SellerID, order.BuyerID,
		order.ShippingCost, order.CouponDiscount, order.VolumeDiscount,
		order.TaxRate, order.ReportedTotal, order.Subtotal, order.TaxAmount, order.Total,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order already exists: %w", err)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateLine persiste una línea del pedido.
func (r *OrderRepo) CreateLine(ctx context.Context, line *entity.OrderLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO order_lines (id, order_id, product_code, description, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.OrderID, line.ProductCode, line.Description,
		line.Quantity, line.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido por ID (sin líneas; usar GetLinesByOrderID).
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `
		SELECT id, seller_id, buyer_id, shipping_cost, coupon_discount, volume_discount,
		       tax_rate, reported_total, subtotal, tax_amount, total, created_at, updated_at
		FROM orders WHERE id = $1`
	var o entity.Order
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.SellerID, &o.BuyerID,
		&o.ShippingCost, &o.CouponDiscount, &o.VolumeDiscount,
		&o.TaxRate, &o.ReportedTotal, &o.Subtotal, &o.TaxAmount, &o.Total,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// GetLinesByOrderID obtiene todas las líneas de un pedido.
func (r *OrderRepo) GetLinesByOrderID(ctx context.Context, orderID string) ([]*entity.OrderLine, error) {
	query := `
		SELECT id, order_id, product_code, description, quantity, unit_price
		FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductCode, &l.Description, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// UpdateTotals persiste una corrección de totales del pedido.
func (r *OrderRepo) UpdateTotals(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders
		SET subtotal = $2, tax_amount = $3, total = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.Subtotal, order.TaxAmount, order.Total, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update order totals: %w", err)
	}
	return nil
}
