package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type OrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *string
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)

	//明細とステータス履歴込み・作成日時の降順
	ListWithDetails(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)

	Create(ctx context.Context, order model.Order) (model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error)
}

// ステータス履歴は追記専用。更新・削除のAPIは持たない。
type OrderStatusEventRepository interface {
	Append(ctx context.Context, event model.OrderStatusEvent) error
	ListByOrderID(ctx context.Context, orderID string) ([]model.OrderStatusEvent, error)
}
