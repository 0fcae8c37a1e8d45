package repository

import (
	"context"

	"github.com/kevinvillajim/bcommerce-billing/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia de pedidos.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateLine(ctx context.Context, line *entity.OrderLine) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetLinesByOrderID(ctx context.Context, orderID string) ([]*entity.OrderLine, error)
	// UpdateTotals persiste una corrección de totales solo cuando el llamador
	// decide propagarla; la reconciliación en lectura no escribe nada.
	UpdateTotals(ctx context.Context, order *entity.Order) error
}
